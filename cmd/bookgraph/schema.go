package main

import (
	"github.com/spf13/cobra"
	"github.com/vektah/gqlparser/v2/formatter"
	"github.com/vvakame/bookgraph/internal/graph"
)

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the schema in SDL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := graph.LoadSchema()
			if err != nil {
				return err
			}
			formatter.NewFormatter(cmd.OutOrStdout()).FormatSchema(schema)
			return nil
		},
	}
}
