package main

import (
	"github.com/spf13/cobra"

	"github.com/mesdx/hdrenum/internal/cli"
)

func main() {
	rootCmd := cli.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		cobra.CheckErr(err)
	}
}
