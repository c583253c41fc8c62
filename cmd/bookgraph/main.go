package main

import (
	"log"

	"github.com/spf13/cobra"
)

func main() {
	err := realMain()
	if err != nil {
		log.Fatal(err)
	}
}

func realMain() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "bookgraph",
		Short:         "GraphQL API over an in-memory library of authors and books",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(
		newServeCmd(),
		newQueryCmd(),
		newSchemaCmd(),
	)

	return rootCmd
}
