package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vvakame/bookgraph/internal/gqlfun"
	"github.com/vvakame/bookgraph/server"
)

type queryOptions struct {
	configFile    string
	variables     string
	operationName string
}

func newQueryCmd() *cobra.Command {
	opts := &queryOptions{}
	cmd := &cobra.Command{
		Use:   "query [document]",
		Short: "Execute a GraphQL document against a fresh store and print the response",
		Long:  "Execute a GraphQL document against a fresh store and print the response.\nThe document is read from stdin when omitted or given as '-'.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			document, err := readDocument(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			variables := map[string]interface{}{}
			if opts.variables != "" {
				dec := json.NewDecoder(strings.NewReader(opts.variables))
				dec.UseNumber()
				err = dec.Decode(&variables)
				if err != nil {
					return fmt.Errorf("failed to parse variables: %w", err)
				}
			}

			cfg, err := server.LoadConfig(opts.configFile)
			if err != nil {
				return err
			}
			exec, err := server.NewExecutableSchema(cfg)
			if err != nil {
				return err
			}

			resp := gqlfun.Execute(cmd.Context(), exec.ExecutableSchema(), &gqlfun.Params{
				Query:         document,
				OperationName: opts.operationName,
				Variables:     variables,
			})

			b, err := json.Marshal(resp)
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			err = json.Indent(&buf, b, "", "  ")
			if err != nil {
				return err
			}
			buf.WriteString("\n")

			_, err = buf.WriteTo(cmd.OutOrStdout())
			return err
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "Path to a YAML config file.")
	flags.StringVar(&opts.variables, "variables", "", "Variables as a JSON object.")
	flags.StringVar(&opts.operationName, "operation", "", "Name of the operation to execute.")

	return cmd
}

func readDocument(stdin io.Reader, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	b, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read document: %w", err)
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return "", fmt.Errorf("empty document")
	}

	return string(b), nil
}
