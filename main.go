package main

import (
	"fmt"
	"os"

	"github.com/kingsdigitallab/zoonyper/cmd"
	"github.com/kingsdigitallab/zoonyper/internal/conf"
)

func main() {
	rootCmd := cmd.RootCommand(conf.Setting())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
