package execute

import (
	"github.com/99designs/gqlgen/graphql/introspection"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

// resolveIntrospection serves the __schema and __type meta fields of the query root.
// The returned gqlgen wrappers are then walked by DefaultFieldResolver.
func resolveIntrospection(exeContext *ExecutionContext, fieldName string, args map[string]interface{}) (interface{}, error) {
	if exeContext.OperationContext.DisableIntrospection {
		return nil, gqlerror.Errorf("introspection disabled")
	}

	switch fieldName {
	case "__schema":
		return introspection.WrapSchema(exeContext.Schema), nil
	case "__type":
		name, _ := args["name"].(string)
		def := exeContext.Schema.Types[name]
		if def == nil {
			return nil, nil
		}
		return introspection.WrapTypeFromDef(exeContext.Schema, def), nil
	}

	return nil, nil
}
