package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/pilat/ntfsgo"
)

type cmdFunc func(e *engine, args []string) string

var dispatch = map[string]cmdFunc{
	"opened":     cmdOpened,
	"format":     cmdFormat,
	"pwd":        cmdPwd,
	"cd":         cmdCd,
	"ls":         cmdLs,
	"info":       cmdInfo,
	"cat":        cmdCat,
	"mkdir":      cmdMkdir,
	"rmdir":      cmdRmdir,
	"incp":       cmdIncp,
	"outcp":      cmdOutcp,
	"rm":         cmdRm,
	"mv":         cmdMv,
	"cp":         cmdCp,
	"bootrecord": cmdBootRecord,
	"mft":        cmdMft,
	"bitmap":     cmdBitmap,
	"check":      cmdCheck,
}

// runShell drives a bufio.Scanner REPL over stdin, dispatching the first
// whitespace-separated token of each line through dispatch.
func runShell(cfg cliConfig) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	e := newEngine(cfg, logger)
	e.tryOpen()

	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")

		if !scanner.Scan() {
			return
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		name := strings.ToLower(fields[0])
		args := fields[1:]

		if name == "exit" {
			return
		}

		fn, ok := dispatch[name]
		if !ok {
			fmt.Println("UNKNOWN COMMAND")
			continue
		}

		fmt.Println(fn(e, args))
	}
}

func cmdOpened(e *engine, _ []string) string {
	if e.opened() {
		return "YES"
	}

	return "NO"
}

func cmdFormat(e *engine, args []string) string {
	if len(args) != 1 {
		return errReply(ntfsgo.ErrWrongArguments)
	}

	size, err := parseSize(args[0])
	if err != nil {
		return fmt.Sprintf("ERROR: %v", err)
	}

	if e.opened() {
		_ = e.img.Close()
		e.img, e.mgr, e.tree = nil, nil, nil
	}

	img, err := ntfsgo.Format(e.path, size, e.signature, e.description)
	if err != nil {
		return "CANNOT CREATE FILE"
	}

	e.attach(img)

	return "OK"
}

func cmdPwd(e *engine, _ []string) string {
	if err := e.requireOpen(); err != nil {
		return errReply(err)
	}

	p, err := e.tree.Pwd()
	if err != nil {
		return errReply(err)
	}

	return p
}

func cmdCd(e *engine, args []string) string {
	if err := e.requireOpen(); err != nil {
		return errReply(err)
	}

	if len(args) != 1 {
		return errReply(ntfsgo.ErrWrongArguments)
	}

	if err := e.tree.Cd(args[0]); err != nil {
		return errReply(err)
	}

	return ""
}

func cmdLs(e *engine, args []string) string {
	if err := e.requireOpen(); err != nil {
		return errReply(err)
	}

	p := ""
	if len(args) > 0 {
		p = args[0]
	}

	kids, err := e.tree.Ls(p)
	if err != nil {
		return errReply(err)
	}

	var b strings.Builder

	for _, k := range kids {
		mark := "-"
		if k.IsDirectory() {
			mark = "+"
		}

		fmt.Fprintf(&b, "%s %s\n", mark, k.Name())
	}

	return strings.TrimRight(b.String(), "\n")
}

func cmdInfo(e *engine, args []string) string {
	if err := e.requireOpen(); err != nil {
		return errReply(err)
	}

	if len(args) != 1 {
		return errReply(ntfsgo.ErrWrongArguments)
	}

	node, err := e.tree.Resolve(args[0])
	if err != nil {
		if errors.Is(err, ntfsgo.ErrPathNotFound) {
			return "FILE NOT FOUND"
		}

		return errReply(err)
	}

	return strings.TrimRight(formatNodeInfo(node), "\n")
}

func cmdCat(e *engine, args []string) string {
	if err := e.requireOpen(); err != nil {
		return errReply(err)
	}

	if len(args) != 1 {
		return errReply(ntfsgo.ErrWrongArguments)
	}

	var buf bytes.Buffer
	if err := e.tree.Cat(args[0], &buf); err != nil {
		if errors.Is(err, ntfsgo.ErrPathNotFound) {
			return "FILE NOT FOUND"
		}

		return errReply(err)
	}

	return buf.String()
}

func cmdMkdir(e *engine, args []string) string {
	if err := e.requireOpen(); err != nil {
		return errReply(err)
	}

	if len(args) != 1 {
		return errReply(ntfsgo.ErrWrongArguments)
	}

	if err := e.tree.Mkdir(args[0]); err != nil {
		return errReply(err)
	}

	return "OK"
}

func cmdRmdir(e *engine, args []string) string {
	if err := e.requireOpen(); err != nil {
		return errReply(err)
	}

	if len(args) != 1 {
		return errReply(ntfsgo.ErrWrongArguments)
	}

	if err := e.tree.Rmdir(args[0]); err != nil {
		return errReply(err)
	}

	return "OK"
}

func cmdIncp(e *engine, args []string) string {
	if err := e.requireOpen(); err != nil {
		return errReply(err)
	}

	if len(args) != 2 {
		return errReply(ntfsgo.ErrWrongArguments)
	}

	data, size, err := incp(args[0])
	if err != nil {
		return "FILE NOT FOUND"
	}

	if err := e.tree.Mkfile(args[1], bytes.NewReader(data), int32(size)); err != nil {
		return errReply(err)
	}

	return "OK"
}

func cmdOutcp(e *engine, args []string) string {
	if err := e.requireOpen(); err != nil {
		return errReply(err)
	}

	if len(args) != 2 {
		return errReply(ntfsgo.ErrWrongArguments)
	}

	var buf bytes.Buffer
	if err := e.tree.Cat(args[0], &buf); err != nil {
		return errReply(err)
	}

	if err := outcp(args[1], buf.Bytes()); err != nil {
		return fmt.Sprintf("ERROR: %v", err)
	}

	return "OK"
}

func cmdRm(e *engine, args []string) string {
	if err := e.requireOpen(); err != nil {
		return errReply(err)
	}

	if len(args) != 1 {
		return errReply(ntfsgo.ErrWrongArguments)
	}

	if err := e.tree.Rm(args[0]); err != nil {
		if errors.Is(err, ntfsgo.ErrPathNotFound) {
			return "FILE NOT FOUND"
		}

		return errReply(err)
	}

	return "OK"
}

func cmdMv(e *engine, args []string) string {
	if err := e.requireOpen(); err != nil {
		return errReply(err)
	}

	if len(args) != 2 {
		return errReply(ntfsgo.ErrWrongArguments)
	}

	if err := e.tree.Mv(args[0], args[1]); err != nil {
		return errReply(err)
	}

	return "OK"
}

func cmdCp(e *engine, args []string) string {
	if err := e.requireOpen(); err != nil {
		return errReply(err)
	}

	if len(args) != 2 {
		return errReply(ntfsgo.ErrWrongArguments)
	}

	if err := e.tree.Cp(args[0], args[1]); err != nil {
		return errReply(err)
	}

	return "OK"
}

func cmdBootRecord(e *engine, _ []string) string {
	if err := e.requireOpen(); err != nil {
		return errReply(err)
	}

	return strings.TrimRight(ntfsgo.FormatBootRecord(e.img), "\n")
}

func cmdMft(e *engine, args []string) string {
	if err := e.requireOpen(); err != nil {
		return errReply(err)
	}

	all := len(args) > 0 && args[0] == "all"

	return strings.TrimRight(ntfsgo.FormatMft(e.img, all), "\n")
}

func cmdBitmap(e *engine, _ []string) string {
	if err := e.requireOpen(); err != nil {
		return errReply(err)
	}

	return strings.TrimRight(ntfsgo.FormatBitmap(e.img), "\n")
}

func cmdCheck(e *engine, _ []string) string {
	if err := e.requireOpen(); err != nil {
		return errReply(err)
	}

	warnings, ok := e.checker().Run()
	if ok {
		return "OK"
	}

	var b strings.Builder

	io.WriteString(&b, "WARN\n")

	for _, w := range warnings {
		fmt.Fprintln(&b, w)
	}

	return strings.TrimRight(b.String(), "\n")
}
