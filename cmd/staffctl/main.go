package main

import (
	"fmt"
	"os"

	"github.com/Domenick1991/carestaff/internal/cli"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "staffctl",
		Short: "Administrative tasks for the carestaff service",
	}

	rootCmd.AddCommand(cli.MigrateCmd(cli.DefaultLoader))
	rootCmd.AddCommand(cli.TokenCmd(cli.DefaultLoader))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
