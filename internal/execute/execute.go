package execute

import (
	"bytes"
	"context"
	"math"
	"reflect"

	"github.com/99designs/gqlgen/graphql"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

// FieldResolver produces the raw value of the field described by the FieldContext in ctx.
// source is the completed parent value, nil for root fields.
type FieldResolver func(ctx context.Context, source interface{}, args map[string]interface{}) (interface{}, error)

// ResolverMap holds field resolvers keyed by object type name and then field name.
type ResolverMap map[string]map[string]FieldResolver

func (m ResolverMap) lookup(typeName, fieldName string) FieldResolver {
	if m == nil {
		return nil
	}
	return m[typeName][fieldName]
}

type ExecutionContext struct {
	Schema           *ast.Schema
	OperationContext *graphql.OperationContext
	Operation        *ast.OperationDefinition
	RootValue        interface{}
	Resolvers        ResolverMap
	FieldResolver    FieldResolver
}

type ExecutionArgs struct {
	Schema        *ast.Schema
	RootValue     interface{}   // optional
	Resolvers     ResolverMap   // optional
	FieldResolver FieldResolver // optional
}

// Execute runs the operation held by the OperationContext of ctx.
// Field errors are reported through the response context of ctx (graphql.AddError),
// so ctx must carry both contexts.
func Execute(ctx context.Context, args *ExecutionArgs) *graphql.Response {
	exeContext, gErr := buildExecutionContext(ctx, args)
	if gErr != nil {
		graphql.AddError(ctx, gErr)
		return &graphql.Response{}
	}

	data, err := executeOperation(ctx, exeContext)
	if err != nil {
		// a root field that must not be null failed, so the whole data becomes null.
		graphql.AddError(ctx, err)
		data = graphql.Null
	}

	return buildResponse(data)
}

func buildResponse(data graphql.Marshaler) *graphql.Response {
	var buf bytes.Buffer
	data.MarshalGQL(&buf)

	return &graphql.Response{
		Data: buf.Bytes(),
	}
}

func buildExecutionContext(ctx context.Context, args *ExecutionArgs) (*ExecutionContext, *gqlerror.Error) {
	if !graphql.HasOperationContext(ctx) {
		return nil, gqlerror.Errorf("must provide operation context")
	}
	oc := graphql.GetOperationContext(ctx)
	if oc.Doc == nil {
		return nil, gqlerror.Errorf("must provide document")
	}

	operation := oc.Operation
	if operation == nil {
		operation = oc.Doc.Operations.ForName(oc.OperationName)
	}
	if operation == nil {
		if oc.OperationName != "" {
			return nil, gqlerror.Errorf(`unknown operation named "%s"`, oc.OperationName)
		}
		return nil, gqlerror.Errorf("must provide an operation")
	}

	fieldResolver := args.FieldResolver
	if fieldResolver == nil {
		fieldResolver = DefaultFieldResolver
	}

	return &ExecutionContext{
		Schema:           args.Schema,
		OperationContext: oc,
		Operation:        operation,
		RootValue:        args.RootValue,
		Resolvers:        args.Resolvers,
		FieldResolver:    fieldResolver,
	}, nil
}

func executeOperation(ctx context.Context, exeContext *ExecutionContext) (graphql.Marshaler, error) {
	operation := exeContext.Operation

	var typ *ast.Definition
	switch operation.Operation {
	case ast.Query:
		typ = exeContext.Schema.Query
		if typ == nil {
			return nil, gqlerror.ErrorPosf(operation.Position, "schema does not define the required query root type")
		}
	case ast.Mutation:
		typ = exeContext.Schema.Mutation
		if typ == nil {
			return nil, gqlerror.ErrorPosf(operation.Position, "schema is not configured for mutations")
		}
	case ast.Subscription:
		return nil, gqlerror.ErrorPosf(operation.Position, "subscriptions are not supported")
	default:
		return nil, gqlerror.ErrorPosf(operation.Position, "can only have query and mutation operations")
	}

	fields := graphql.CollectFields(exeContext.OperationContext, operation.SelectionSet, []string{typ.Name})
	ctx = graphql.WithFieldContext(ctx, &graphql.FieldContext{
		Object: typ.Name,
	})

	// Resolvers never block, so query fields are executed in document order just like
	// mutation fields are. This also keeps the error order stable.
	return executeFields(ctx, exeContext, typ, exeContext.RootValue, fields)
}

// executeFields returns an error only when a non-null field could not be completed;
// the caller must then null itself (or propagate further).
func executeFields(ctx context.Context, exeContext *ExecutionContext, parentType *ast.Definition, source interface{}, fields []graphql.CollectedField) (graphql.Marshaler, error) {
	out := graphql.NewFieldSet(fields)
	for i, field := range fields {
		value, err := executeField(ctx, exeContext, parentType, source, field)
		if err != nil {
			return graphql.Null, err
		}
		out.Values[i] = value
	}

	return out, nil
}

func executeField(ctx context.Context, exeContext *ExecutionContext, parentType *ast.Definition, source interface{}, field graphql.CollectedField) (ret graphql.Marshaler, err error) {
	fieldDef := field.Definition
	fc := &graphql.FieldContext{
		Object:     parentType.Name,
		Field:      field,
		IsMethod:   true,
		IsResolver: exeContext.Resolvers.lookup(parentType.Name, field.Name) != nil,
	}
	ctx = graphql.WithFieldContext(ctx, fc)

	if fieldDef == nil {
		graphql.AddError(ctx, gqlerror.ErrorPathf(fc.Path(), `cannot query field "%s" on type "%s"`, field.Name, parentType.Name))
		return graphql.Null, nil
	}
	fc.Args = field.ArgumentMap(exeContext.OperationContext.Variables)

	defer func() {
		if r := recover(); r != nil {
			ret, err = handleFieldError(ctx, fieldDef.Type, graphql.ErrorOnPath(ctx, exeContext.OperationContext.Recover(ctx, r)))
		}
	}()

	result, err := resolveField(ctx, exeContext, parentType, source, field.Name, fc.Args)
	if err != nil {
		return handleFieldError(ctx, fieldDef.Type, graphql.ErrorOnPath(ctx, err))
	}
	fc.Result = result

	completed, err := completeValue(ctx, exeContext, fieldDef.Type, field, result)
	if err != nil {
		return handleFieldError(ctx, fieldDef.Type, err)
	}

	return completed, nil
}

// handleFieldError reports err and nulls the position unless returnType forbids null,
// in which case err is handed to the parent.
func handleFieldError(ctx context.Context, returnType *ast.Type, err error) (graphql.Marshaler, error) {
	if returnType.NonNull {
		return graphql.Null, err
	}
	graphql.AddError(ctx, err)
	return graphql.Null, nil
}

func resolveField(ctx context.Context, exeContext *ExecutionContext, parentType *ast.Definition, source interface{}, fieldName string, args map[string]interface{}) (interface{}, error) {
	if fieldName == "__typename" {
		return parentType.Name, nil
	}
	if parentType == exeContext.Schema.Query {
		switch fieldName {
		case "__schema", "__type":
			return resolveIntrospection(exeContext, fieldName, args)
		}
	}

	resolveFn := exeContext.Resolvers.lookup(parentType.Name, fieldName)
	if resolveFn == nil {
		resolveFn = exeContext.FieldResolver
	}

	next := func(ctx context.Context) (interface{}, error) {
		return resolveFn(ctx, source, args)
	}
	if mw := exeContext.OperationContext.ResolverMiddleware; mw != nil {
		return mw(ctx, next)
	}
	return next(ctx)
}

func completeValue(ctx context.Context, exeContext *ExecutionContext, returnType *ast.Type, field graphql.CollectedField, result interface{}) (graphql.Marshaler, error) {
	fc := graphql.GetFieldContext(ctx)

	if err, ok := result.(error); ok && err != nil {
		return graphql.Null, graphql.ErrorOnPath(ctx, err)
	}

	if returnType.NonNull {
		// a nil slice is an empty list here, as in gqlgen generated marshalers.
		if returnType.Elem != nil && isNilSlice(result) {
			return graphql.Array{}, nil
		}
		copied := *returnType
		copied.NonNull = false
		completed, err := completeValue(ctx, exeContext, &copied, field, result)
		if err != nil {
			return graphql.Null, err
		}
		if completed == graphql.Null {
			return graphql.Null, gqlerror.ErrorPathf(fc.Path(), "Cannot return null for non-nullable field %s.", fieldCoordinate(fc))
		}
		return completed, nil
	}

	if isNil(result) {
		return graphql.Null, nil
	}

	if returnType.Elem != nil {
		return completeListValue(ctx, exeContext, returnType, field, result)
	}

	def := exeContext.Schema.Types[returnType.NamedType]
	if def == nil {
		return graphql.Null, gqlerror.ErrorPathf(fc.Path(), "unknown type %s", returnType.NamedType)
	}
	switch def.Kind {
	case ast.Scalar, ast.Enum:
		return completeLeafValue(ctx, def, result)
	case ast.Object:
		return completeObjectValue(ctx, exeContext, def, field, result)
	}

	return graphql.Null, gqlerror.ErrorPathf(fc.Path(), "cannot complete value of unexpected output type: %s", returnType.String())
}

func completeListValue(ctx context.Context, exeContext *ExecutionContext, returnType *ast.Type, field graphql.CollectedField, result interface{}) (graphql.Marshaler, error) {
	fc := graphql.GetFieldContext(ctx)

	resultRV := reflect.ValueOf(result)
	if resultRV.Kind() != reflect.Slice && resultRV.Kind() != reflect.Array {
		return graphql.Null, gqlerror.ErrorPathf(fc.Path(), `Expected Iterable, but did not find one for field "%s".`, fieldCoordinate(fc))
	}

	itemType := returnType.Elem
	ret := make(graphql.Array, resultRV.Len())
	for index := 0; index < resultRV.Len(); index++ {
		itemRV := resultRV.Index(index)
		if itemRV.Kind() == reflect.Struct && itemRV.CanAddr() {
			itemRV = itemRV.Addr()
		}
		item := itemRV.Interface()

		ctx := graphql.WithFieldContext(ctx, &graphql.FieldContext{
			Index:  &index,
			Result: item,
		})

		completedItem, err := completeValue(ctx, exeContext, itemType, field, item)
		if err != nil {
			completedItem, err = handleFieldError(ctx, itemType, err)
			if err != nil {
				return graphql.Null, err
			}
		}
		ret[index] = completedItem
	}

	return ret, nil
}

func completeLeafValue(ctx context.Context, def *ast.Definition, result interface{}) (graphql.Marshaler, error) {
	fc := graphql.GetFieldContext(ctx)

	rv := reflect.ValueOf(result)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return graphql.Null, nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Bool:
		return graphql.MarshalBoolean(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if def.Name == "Float" {
			return graphql.MarshalFloat(float64(rv.Int())), nil
		}
		if def.Name == "Int" && (rv.Int() < math.MinInt32 || rv.Int() > math.MaxInt32) {
			return graphql.Null, gqlerror.ErrorPathf(fc.Path(), "Int cannot represent non 32-bit signed integer value: %d", rv.Int())
		}
		return graphql.MarshalInt64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if def.Name == "Float" {
			return graphql.MarshalFloat(float64(rv.Uint())), nil
		}
		if def.Name == "Int" && rv.Uint() > math.MaxInt32 {
			return graphql.Null, gqlerror.ErrorPathf(fc.Path(), "Int cannot represent non 32-bit signed integer value: %d", rv.Uint())
		}
		return graphql.MarshalInt64(int64(rv.Uint())), nil
	case reflect.Float32, reflect.Float64:
		if def.Name != "Int" {
			return graphql.MarshalFloat(rv.Float()), nil
		}
		f := rv.Float()
		if f != math.Trunc(f) || math.IsInf(f, 0) {
			return graphql.Null, gqlerror.ErrorPathf(fc.Path(), "Int cannot represent non-integer value: %v", f)
		}
		if f < math.MinInt32 || f > math.MaxInt32 {
			return graphql.Null, gqlerror.ErrorPathf(fc.Path(), "Int cannot represent non 32-bit signed integer value: %v", f)
		}
		return graphql.MarshalInt64(int64(f)), nil
	case reflect.String:
		return graphql.MarshalString(rv.String()), nil
	}

	return graphql.Null, gqlerror.ErrorPathf(fc.Path(), "%s cannot represent value of type %T", def.Name, result)
}

func completeObjectValue(ctx context.Context, exeContext *ExecutionContext, def *ast.Definition, field graphql.CollectedField, result interface{}) (graphql.Marshaler, error) {
	subFields := graphql.CollectFields(exeContext.OperationContext, field.Selections, []string{def.Name})

	return executeFields(ctx, exeContext, def, result, subFields)
}

// fieldCoordinate returns "Type.field" of the nearest field context, skipping list items.
func fieldCoordinate(fc *graphql.FieldContext) string {
	for it := fc; it != nil; it = it.Parent {
		if it.Field.Field != nil {
			return it.Object + "." + it.Field.Name
		}
	}
	return ""
}

func isNilSlice(v interface{}) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Slice && rv.IsNil()
}

func isNil(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
