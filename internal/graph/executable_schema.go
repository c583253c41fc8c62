package graph

import (
	"context"
	"fmt"

	"github.com/99designs/gqlgen/graphql"
	"github.com/vvakame/bookgraph/internal/execute"
	"github.com/vvakame/bookgraph/internal/graph/model"
	"github.com/vvakame/bookgraph/internal/store"
)

type Config struct {
	Store  *store.Store
	Quirks Quirks
}

type Executable struct {
	executableSchema graphql.ExecutableSchema
	resolver         *Resolver
}

func (exec *Executable) ExecutableSchema() graphql.ExecutableSchema {
	return exec.executableSchema
}

func (exec *Executable) Name() string {
	return "bookgraph"
}

func (exec *Executable) Store() *store.Store {
	return exec.resolver.store
}

func NewExecutableSchema(cfg Config) (*Executable, error) {
	schema, err := LoadSchema()
	if err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}

	s := cfg.Store
	if s == nil {
		s = store.NewSeeded()
	}
	r := NewResolver(s, cfg.Quirks)

	es := execute.NewExecutableSchema(execute.Config{
		Schema:    schema,
		Resolvers: r.resolverMap(),
	})

	return &Executable{
		executableSchema: es,
		resolver:         r,
	}, nil
}

// resolverMap binds the schema fields that need more than a struct field lookup.
// Scalar fields of Book and Author are served by execute.DefaultFieldResolver through json tags.
func (r *Resolver) resolverMap() execute.ResolverMap {
	return execute.ResolverMap{
		"Query": {
			"book": func(ctx context.Context, _ interface{}, args map[string]interface{}) (interface{}, error) {
				id, err := optionalIntArg(args, "id")
				if err != nil {
					return nil, err
				}
				return r.Query().Book(ctx, id)
			},
			"books": func(ctx context.Context, _ interface{}, _ map[string]interface{}) (interface{}, error) {
				return r.Query().Books(ctx)
			},
			"authors": func(ctx context.Context, _ interface{}, _ map[string]interface{}) (interface{}, error) {
				return r.Query().Authors(ctx)
			},
			"author": func(ctx context.Context, _ interface{}, args map[string]interface{}) (interface{}, error) {
				id, err := optionalIntArg(args, "id")
				if err != nil {
					return nil, err
				}
				return r.Query().Author(ctx, id)
			},
		},
		"Mutation": {
			"addBook": func(ctx context.Context, _ interface{}, args map[string]interface{}) (interface{}, error) {
				name, err := stringArg(args, "name")
				if err != nil {
					return nil, err
				}
				authorID, err := intArg(args, "authorId")
				if err != nil {
					return nil, err
				}
				return r.Mutation().AddBook(ctx, name, authorID)
			},
			"addAuthor": func(ctx context.Context, _ interface{}, args map[string]interface{}) (interface{}, error) {
				name, err := stringArg(args, "name")
				if err != nil {
					return nil, err
				}
				return r.Mutation().AddAuthor(ctx, name)
			},
		},
		"Book": {
			"author": func(ctx context.Context, source interface{}, _ map[string]interface{}) (interface{}, error) {
				obj, ok := source.(*model.Book)
				if !ok {
					return nil, fmt.Errorf("unexpected Book source: %T", source)
				}
				return r.Book().Author(ctx, obj)
			},
		},
		"Author": {
			"books": func(ctx context.Context, source interface{}, _ map[string]interface{}) (interface{}, error) {
				obj, ok := source.(*model.Author)
				if !ok {
					return nil, fmt.Errorf("unexpected Author source: %T", source)
				}
				return r.Author().Books(ctx, obj)
			},
		},
	}
}
