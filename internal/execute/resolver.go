package execute

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/99designs/gqlgen/graphql"
)

var _ FieldResolver = DefaultFieldResolver

// DefaultFieldResolver resolves a field from its parent value when no resolver is registered.
//
// A map source yields the entry named after the field. Any other source is searched for an
// exported method named after the field (its parameters are filled from the field arguments
// in declaration order), then for a struct field whose json tag or name matches.
func DefaultFieldResolver(ctx context.Context, source interface{}, args map[string]interface{}) (interface{}, error) {
	fc := graphql.GetFieldContext(ctx)
	if fc == nil {
		return nil, fmt.Errorf("ctx doesn't have FieldContext")
	}
	name := fc.Field.Name

	if m, ok := source.(map[string]interface{}); ok {
		return m[name], nil
	}

	rv := reflect.ValueOf(source)
	if !rv.IsValid() {
		return nil, nil
	}

	if method := rv.MethodByName(exportedName(name)); method.IsValid() {
		var argNames []string
		if fc.Field.Definition != nil {
			for _, argDef := range fc.Field.Definition.Arguments {
				argNames = append(argNames, argDef.Name)
			}
		}
		return callMethod(method, argNames, args)
	}

	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, nil
	}

	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if tag == name || (tag == "" && sf.Name == exportedName(name)) {
			return rv.Field(i).Interface(), nil
		}
	}

	return nil, nil
}

func callMethod(method reflect.Value, argNames []string, args map[string]interface{}) (interface{}, error) {
	mt := method.Type()
	if mt.NumIn() > len(argNames) {
		return nil, fmt.Errorf("method takes %d arguments but the field declares %d", mt.NumIn(), len(argNames))
	}

	in := make([]reflect.Value, mt.NumIn())
	for i := range in {
		paramType := mt.In(i)
		v := args[argNames[i]]
		if v == nil {
			in[i] = reflect.Zero(paramType)
			continue
		}
		rv := reflect.ValueOf(v)
		if !rv.Type().ConvertibleTo(paramType) {
			return nil, fmt.Errorf("argument %s: cannot use %T as %s", argNames[i], v, paramType)
		}
		in[i] = rv.Convert(paramType)
	}

	out := method.Call(in)
	switch len(out) {
	case 1:
		return out[0].Interface(), nil
	case 2:
		if err, ok := out[1].Interface().(error); ok && err != nil {
			return nil, err
		}
		return out[0].Interface(), nil
	}

	return nil, fmt.Errorf("method returns %d values", len(out))
}

func exportedName(name string) string {
	if name == "" {
		return ""
	}
	r := []rune(name)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
