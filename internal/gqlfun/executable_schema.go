package gqlfun

import (
	"context"
	"errors"

	"github.com/99designs/gqlgen/graphql"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/parser"
	"github.com/vektah/gqlparser/v2/validator"
)

type Params struct {
	Query         string
	OperationName string
	Variables     map[string]interface{}
}

// CreateOperationContext parses, validates and coerces params the way the gqlgen executor does
// for an HTTP request.
func CreateOperationContext(ctx context.Context, schema *ast.Schema, params *Params) (*graphql.OperationContext, gqlerror.List) {
	queryDoc, parseErr := parser.ParseQuery(&ast.Source{
		Input:   params.Query,
		BuiltIn: false,
	})
	if parseErr != nil {
		return nil, toErrorList(parseErr)
	}
	gErrs := validator.Validate(schema, queryDoc)
	if len(gErrs) != 0 {
		return nil, gErrs
	}

	operation := queryDoc.Operations.ForName(params.OperationName)
	if operation == nil {
		if params.OperationName != "" {
			return nil, gqlerror.List{gqlerror.Errorf(`unknown operation named "%s"`, params.OperationName)}
		}
		return nil, gqlerror.List{gqlerror.Errorf("must provide an operation")}
	}

	variables, varErr := validator.VariableValues(schema, operation, params.Variables)
	if varErr != nil {
		return nil, toErrorList(varErr)
	}

	oc := &graphql.OperationContext{
		RawQuery:             params.Query,
		Variables:            variables,
		OperationName:        params.OperationName,
		Doc:                  queryDoc,
		Operation:            operation,
		DisableIntrospection: false,
		RecoverFunc:          graphql.DefaultRecover,
		ResolverMiddleware: func(ctx context.Context, next graphql.Resolver) (res interface{}, err error) {
			return next(ctx)
		},
		Stats: graphql.Stats{},
	}

	return oc, nil
}

// Execute runs params against es without any transport. Field errors are returned together
// with the partial data.
func Execute(ctx context.Context, es graphql.ExecutableSchema, params *Params) *graphql.Response {
	oc, gErrs := CreateOperationContext(ctx, es.Schema(), params)
	if len(gErrs) != 0 {
		return &graphql.Response{Errors: gErrs}
	}
	ctx = graphql.WithOperationContext(ctx, oc)
	ctx = graphql.WithResponseContext(ctx, graphql.DefaultErrorPresenter, graphql.DefaultRecover)

	rh := es.Exec(ctx)
	resp := rh(ctx)
	if resp == nil {
		resp = &graphql.Response{}
	}
	resp.Errors = append(resp.Errors, graphql.GetErrors(ctx)...)

	return resp
}

func toErrorList(err error) gqlerror.List {
	var list gqlerror.List
	if errors.As(err, &list) {
		return list
	}
	var gErr *gqlerror.Error
	if errors.As(err, &gErr) {
		return gqlerror.List{gErr}
	}
	return gqlerror.List{gqlerror.Errorf("%s", err.Error())}
}
