package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	imageFlag  string
	configFlag string
)

var rootCmd = &cobra.Command{
	Use:   "ntfsgo",
	Short: "Interact with a single-file NTFS-style filesystem image",
	Long: `ntfsgo formats, inspects and manipulates a single-file filesystem
image: a boot record, a master file table, a cluster allocation bitmap
and a data region of fixed-size clusters.

Running with no subcommand drops into an interactive shell over the
image named by --image.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig()
		if err != nil {
			return err
		}

		runShell(cfg)

		return nil
	},
}

var formatCmd = &cobra.Command{
	Use:   "format <size>[K|M|G]",
	Short: "Format a fresh image at --image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig()
		if err != nil {
			return err
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

		e := newEngine(cfg, logger)

		reply := cmdFormat(e, args)
		fmt.Println(reply)

		if reply != "OK" {
			return fmt.Errorf("format failed")
		}

		return nil
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run the consistency checker against --image and print warnings",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig()
		if err != nil {
			return err
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

		e := newEngine(cfg, logger)
		e.tryOpen()

		reply := cmdCheck(e, nil)
		fmt.Println(reply)

		if reply != "OK" {
			return fmt.Errorf("check reported warnings")
		}

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&imageFlag, "image", "", "path to the image file (overrides config)")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "path to an ntfsgo.yaml config file")

	rootCmd.AddCommand(formatCmd, checkCmd)
}

func resolveConfig() (cliConfig, error) {
	cfg, err := loadConfig(configFlag)
	if err != nil {
		return cfg, err
	}

	if imageFlag != "" {
		cfg.ImagePath = imageFlag
	}

	return cfg, nil
}
