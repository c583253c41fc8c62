package execute

import (
	"context"
	"errors"
	"testing"

	"github.com/99designs/gqlgen/graphql"
	"github.com/MakeNowJust/heredoc/v2"
	testlogr "github.com/go-logr/logr/testing"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vvakame/bookgraph/internal/gqlfun"
	"github.com/vvakame/bookgraph/internal/log"
	"github.com/vvakame/bookgraph/internal/testutils"
)

type testUser struct {
	ID       int     `json:"id"`
	Name     string  // matched by field name
	Nickname *string `json:"nickname"`
}

func (u *testUser) Greet(greeting string) string {
	return greeting + ", " + u.Name
}

func strptr(s string) *string {
	return &s
}

var testSDL = heredoc.Doc(`
	type Query {
		hello: String
		number: Int
		nonNull: String!
		fail: String
		boom: String
		user(id: Int!): User
		users: [User!]
		single: [User]
		forbidden: String
		big: Int
		fraction: Int
		ratio: Float
		noUsers: [User!]!
		nilUsers: [User]
	}

	type Mutation {
		inc: Int!
	}

	type User {
		id: Int!
		name: String
		nickname: String!
		friends: [User]
		greet(greeting: String): String
	}
`)

func newTestSchema(t *testing.T) *Schema {
	t.Helper()

	schema, gErr := gqlparser.LoadSchema(&ast.Source{
		Name:  "schema.graphqls",
		Input: testSDL,
	})
	if gErr != nil {
		t.Fatal(gErr)
	}

	alice := &testUser{ID: 1, Name: "Alice", Nickname: strptr("ali")}
	bob := &testUser{ID: 2, Name: "Bob"}
	users := []*testUser{alice, bob}

	var counter int

	return NewExecutableSchema(Config{
		Schema: schema,
		RootValue: map[string]interface{}{
			"hello":    "world",
			"number":   42.0,
			"users":    users,
			"big":      int64(1) << 40,
			"fraction": 1.5,
			"ratio":    3,
			"noUsers":  []*testUser(nil),
			"nilUsers": []*testUser(nil),
		},
		Resolvers: ResolverMap{
			"Query": {
				"fail": func(ctx context.Context, source interface{}, args map[string]interface{}) (interface{}, error) {
					return nil, errors.New("failure")
				},
				"boom": func(ctx context.Context, source interface{}, args map[string]interface{}) (interface{}, error) {
					panic("boom")
				},
				"user": func(ctx context.Context, source interface{}, args map[string]interface{}) (interface{}, error) {
					id, err := graphql.UnmarshalInt(args["id"])
					if err != nil {
						return nil, err
					}
					for _, user := range users {
						if user.ID == id {
							return user, nil
						}
					}
					return nil, nil
				},
				"forbidden": func(ctx context.Context, source interface{}, args map[string]interface{}) (interface{}, error) {
					return nil, &gqlerror.Error{
						Message:    "not allowed",
						Extensions: map[string]interface{}{"code": "FORBIDDEN"},
					}
				},
				"single": func(ctx context.Context, source interface{}, args map[string]interface{}) (interface{}, error) {
					return alice, nil
				},
			},
			"Mutation": {
				"inc": func(ctx context.Context, source interface{}, args map[string]interface{}) (interface{}, error) {
					counter++
					return counter, nil
				},
			},
			"User": {
				"friends": func(ctx context.Context, source interface{}, args map[string]interface{}) (interface{}, error) {
					if source.(*testUser).ID == 1 {
						return []*testUser{nil, bob}, nil
					}
					return []*testUser{}, nil
				},
			},
		},
	})
}

func execQuery(t *testing.T, es graphql.ExecutableSchema, query string, variables map[string]interface{}) *graphql.Response {
	t.Helper()

	ctx := context.Background()
	ctx = log.WithLogger(ctx, testlogr.NewTestLogger(t))

	resp := gqlfun.Execute(ctx, es, &gqlfun.Params{
		Query:     query,
		Variables: variables,
	})
	t.Log(string(resp.Data))
	for _, gErr := range resp.Errors {
		t.Log(gErr.Error())
	}

	return resp
}

func checkSingleError(t *testing.T, resp *graphql.Response, message string, path ast.Path) {
	t.Helper()

	if len(resp.Errors) != 1 {
		t.Fatalf("unexpected errors length: %d, %v", len(resp.Errors), resp.Errors)
	}
	if v := resp.Errors[0].Message; v != message {
		t.Errorf("unexpected message: %s", v)
	}
	if v := resp.Errors[0].Path.String(); v != path.String() {
		t.Errorf("unexpected path: %s", v)
	}
}

func TestExecute(t *testing.T) {
	es := newTestSchema(t)

	t.Run("plain fields", func(t *testing.T) {
		resp := execQuery(t, es, `{ hello number users { id name } }`, nil)
		if len(resp.Errors) != 0 {
			t.Fatal(resp.Errors)
		}
		testutils.AssertJSON(t, []byte(`{"hello":"world","number":42,"users":[{"id":1,"name":"Alice"},{"id":2,"name":"Bob"}]}`), resp.Data)
	})

	t.Run("aliases and fragments", func(t *testing.T) {
		resp := execQuery(t, es, heredoc.Doc(`
			query {
				a: hello
				...F
				users {
					__typename
					... on User { id }
				}
			}
			fragment F on Query {
				b: hello
			}
		`), nil)
		if len(resp.Errors) != 0 {
			t.Fatal(resp.Errors)
		}
		testutils.AssertJSON(t, []byte(`{"a":"world","b":"world","users":[{"__typename":"User","id":1},{"__typename":"User","id":2}]}`), resp.Data)
	})

	t.Run("skip directive", func(t *testing.T) {
		resp := execQuery(t, es, `query ($s: Boolean!) { hello @skip(if: $s) number }`, map[string]interface{}{"s": true})
		if len(resp.Errors) != 0 {
			t.Fatal(resp.Errors)
		}
		testutils.AssertJSON(t, []byte(`{"number":42}`), resp.Data)
	})

	t.Run("method with arguments", func(t *testing.T) {
		resp := execQuery(t, es, `{ user(id: 1) { greet(greeting: "Hi") } nobody: user(id: 3) { id } }`, nil)
		if len(resp.Errors) != 0 {
			t.Fatal(resp.Errors)
		}
		testutils.AssertJSON(t, []byte(`{"user":{"greet":"Hi, Alice"},"nobody":null}`), resp.Data)
	})

	t.Run("null list items", func(t *testing.T) {
		resp := execQuery(t, es, `{ user(id: 1) { friends { name } } }`, nil)
		if len(resp.Errors) != 0 {
			t.Fatal(resp.Errors)
		}
		testutils.AssertJSON(t, []byte(`{"user":{"friends":[null,{"name":"Bob"}]}}`), resp.Data)
	})

	t.Run("non-null field nulls the nearest nullable parent", func(t *testing.T) {
		resp := execQuery(t, es, `{ hello users { id nickname } }`, nil)
		checkSingleError(t, resp, "Cannot return null for non-nullable field User.nickname.", ast.Path{ast.PathName("users"), ast.PathIndex(1), ast.PathName("nickname")})
		testutils.AssertJSON(t, []byte(`{"hello":"world","users":null}`), resp.Data)
	})

	t.Run("non-null root field nulls data", func(t *testing.T) {
		resp := execQuery(t, es, `{ hello nonNull }`, nil)
		checkSingleError(t, resp, "Cannot return null for non-nullable field Query.nonNull.", ast.Path{ast.PathName("nonNull")})
		if string(resp.Data) != "null" {
			t.Errorf("unexpected data: %s", string(resp.Data))
		}
	})

	t.Run("resolver error", func(t *testing.T) {
		resp := execQuery(t, es, `{ fail hello }`, nil)
		checkSingleError(t, resp, "failure", ast.Path{ast.PathName("fail")})
		testutils.AssertJSON(t, []byte(`{"fail":null,"hello":"world"}`), resp.Data)
	})

	t.Run("resolver panic", func(t *testing.T) {
		resp := execQuery(t, es, `{ boom hello }`, nil)
		checkSingleError(t, resp, "internal system error", ast.Path{ast.PathName("boom")})
		testutils.AssertJSON(t, []byte(`{"boom":null,"hello":"world"}`), resp.Data)
	})

	t.Run("resolver gqlerror keeps message and extensions", func(t *testing.T) {
		resp := execQuery(t, es, `{ forbidden hello }`, nil)
		checkSingleError(t, resp, "not allowed", ast.Path{ast.PathName("forbidden")})
		if v := resp.Errors[0].Extensions["code"]; v != "FORBIDDEN" {
			t.Errorf("unexpected code: %v", v)
		}
		testutils.AssertJSON(t, []byte(`{"forbidden":null,"hello":"world"}`), resp.Data)
	})

	t.Run("nil slice for non-null list", func(t *testing.T) {
		resp := execQuery(t, es, `{ noUsers { id } nilUsers { id } }`, nil)
		if len(resp.Errors) != 0 {
			t.Fatal(resp.Errors)
		}
		testutils.AssertJSON(t, []byte(`{"noUsers":[],"nilUsers":null}`), resp.Data)
	})

	t.Run("Int out of range", func(t *testing.T) {
		resp := execQuery(t, es, `{ big }`, nil)
		checkSingleError(t, resp, "Int cannot represent non 32-bit signed integer value: 1099511627776", ast.Path{ast.PathName("big")})
		testutils.AssertJSON(t, []byte(`{"big":null}`), resp.Data)
	})

	t.Run("Int from non-integer", func(t *testing.T) {
		resp := execQuery(t, es, `{ fraction ratio }`, nil)
		checkSingleError(t, resp, "Int cannot represent non-integer value: 1.5", ast.Path{ast.PathName("fraction")})
		testutils.AssertJSON(t, []byte(`{"fraction":null,"ratio":3}`), resp.Data)
	})

	t.Run("object for list type", func(t *testing.T) {
		resp := execQuery(t, es, `{ single { id } }`, nil)
		checkSingleError(t, resp, `Expected Iterable, but did not find one for field "Query.single".`, ast.Path{ast.PathName("single")})
		testutils.AssertJSON(t, []byte(`{"single":null}`), resp.Data)
	})

	t.Run("serial mutation", func(t *testing.T) {
		resp := execQuery(t, es, `mutation { a: inc b: inc c: inc }`, nil)
		if len(resp.Errors) != 0 {
			t.Fatal(resp.Errors)
		}
		testutils.AssertJSON(t, []byte(`{"a":1,"b":2,"c":3}`), resp.Data)
	})
}

func TestExecute_introspection(t *testing.T) {
	es := newTestSchema(t)

	resp := execQuery(t, es, `{ __type(name: "User") { name kind fields { name type { kind ofType { name } } } } }`, nil)
	if len(resp.Errors) != 0 {
		t.Fatal(resp.Errors)
	}
	testutils.AssertJSON(t, []byte(heredoc.Doc(`
		{
			"__type": {
				"name": "User",
				"kind": "OBJECT",
				"fields": [
					{"name": "id", "type": {"kind": "NON_NULL", "ofType": {"name": "Int"}}},
					{"name": "name", "type": {"kind": "SCALAR", "ofType": null}},
					{"name": "nickname", "type": {"kind": "NON_NULL", "ofType": {"name": "String"}}},
					{"name": "friends", "type": {"kind": "LIST", "ofType": {"name": "User"}}},
					{"name": "greet", "type": {"kind": "SCALAR", "ofType": null}}
				]
			}
		}
	`)), resp.Data)

	resp = execQuery(t, es, `{ __type(name: "User") { fields { name args { name type { name } } } } }`, nil)
	if len(resp.Errors) != 0 {
		t.Fatal(resp.Errors)
	}
	testutils.AssertJSON(t, []byte(heredoc.Doc(`
		{
			"__type": {
				"fields": [
					{"name": "id", "args": []},
					{"name": "name", "args": []},
					{"name": "nickname", "args": []},
					{"name": "friends", "args": []},
					{"name": "greet", "args": [{"name": "greeting", "type": {"name": "String"}}]}
				]
			}
		}
	`)), resp.Data)

	resp = execQuery(t, es, `{ __schema { queryType { name } mutationType { name } } missing: __type(name: "Missing") { name } }`, nil)
	if len(resp.Errors) != 0 {
		t.Fatal(resp.Errors)
	}
	testutils.AssertJSON(t, []byte(`{"__schema":{"queryType":{"name":"Query"},"mutationType":{"name":"Mutation"}},"missing":null}`), resp.Data)
}

func TestExecute_disableIntrospection(t *testing.T) {
	es := newTestSchema(t)

	ctx := context.Background()
	oc, gErrs := gqlfun.CreateOperationContext(ctx, es.Schema(), &gqlfun.Params{
		Query: `{ __type(name: "User") { name } }`,
	})
	if len(gErrs) != 0 {
		t.Fatal(gErrs)
	}
	oc.DisableIntrospection = true

	ctx = graphql.WithOperationContext(ctx, oc)
	ctx = graphql.WithResponseContext(ctx, graphql.DefaultErrorPresenter, graphql.DefaultRecover)

	resp := Execute(ctx, &ExecutionArgs{
		Schema: es.Schema(),
	})
	gErrs = graphql.GetErrors(ctx)
	if len(gErrs) != 1 {
		t.Fatalf("unexpected errors: %v", gErrs)
	}
	if v := gErrs[0].Message; v != "introspection disabled" {
		t.Errorf("unexpected message: %s", v)
	}
	testutils.AssertJSON(t, []byte(`{"__type":null}`), resp.Data)
}

func TestExecute_resolverMiddleware(t *testing.T) {
	es := newTestSchema(t)

	ctx := context.Background()
	oc, gErrs := gqlfun.CreateOperationContext(ctx, es.Schema(), &gqlfun.Params{
		Query: `{ hello users { id } }`,
	})
	if len(gErrs) != 0 {
		t.Fatal(gErrs)
	}
	var visited []string
	oc.ResolverMiddleware = func(ctx context.Context, next graphql.Resolver) (interface{}, error) {
		fc := graphql.GetFieldContext(ctx)
		visited = append(visited, fc.Object+"."+fc.Field.Name)
		return next(ctx)
	}

	ctx = graphql.WithOperationContext(ctx, oc)
	ctx = graphql.WithResponseContext(ctx, graphql.DefaultErrorPresenter, graphql.DefaultRecover)

	rh := es.Exec(ctx)
	resp := rh(ctx)
	if gErrs := graphql.GetErrors(ctx); len(gErrs) != 0 {
		t.Fatal(gErrs)
	}
	testutils.AssertJSON(t, []byte(`{"hello":"world","users":[{"id":1},{"id":2}]}`), resp.Data)

	expect := []string{"Query.hello", "Query.users", "User.id", "User.id"}
	if len(visited) != len(expect) {
		t.Fatalf("unexpected visits: %v", visited)
	}
	for i := range expect {
		if visited[i] != expect[i] {
			t.Errorf("visited[%d]: %s", i, visited[i])
		}
	}

	if rh(ctx) != nil {
		t.Error("a query must be served by a single response")
	}
}
