package graph

import (
	"fmt"

	"github.com/99designs/gqlgen/graphql"
)

func optionalIntArg(args map[string]interface{}, name string) (*int, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return nil, nil
	}
	i, err := graphql.UnmarshalInt(v)
	if err != nil {
		return nil, fmt.Errorf("invalid argument %s: %w", name, err)
	}

	return &i, nil
}

func intArg(args map[string]interface{}, name string) (int, error) {
	i, err := optionalIntArg(args, name)
	if err != nil {
		return 0, err
	}
	if i == nil {
		return 0, fmt.Errorf("argument %s is required", name)
	}

	return *i, nil
}

func stringArg(args map[string]interface{}, name string) (string, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return "", fmt.Errorf("argument %s is required", name)
	}
	s, err := graphql.UnmarshalString(v)
	if err != nil {
		return "", fmt.Errorf("invalid argument %s: %w", name, err)
	}

	return s, nil
}
