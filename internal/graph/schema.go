package graph

import (
	_ "embed"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
)

//go:embed schema.graphqls
var sdl string

func SDL() string {
	return sdl
}

func LoadSchema() (*ast.Schema, error) {
	schema, gErr := gqlparser.LoadSchema(&ast.Source{
		Name:  "schema.graphqls",
		Input: sdl,
	})
	if gErr != nil {
		return nil, gErr
	}

	return schema, nil
}
