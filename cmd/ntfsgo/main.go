// Command ntfsgo formats, inspects and interacts with single-file
// filesystem images.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
