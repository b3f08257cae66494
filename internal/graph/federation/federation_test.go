package federation

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/tidwall/gjson"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/streamcat/lolomo/internal/apperrors"
)

const testSDL = `
type Query {
  thing(id: Int!): Thing
}

type Thing @key(fields: "id") {
  id: Int!
}

type Other @key(fields: "id") {
  id: Int!
}
`

func TestSchema_IsValidGraphQL(t *testing.T) {
	t.Parallel()
	full := Schema(testSDL, "Thing", "Other")

	schema, err := gqlparser.LoadSchema(&ast.Source{Name: "subgraph.graphql", Input: full})
	if err != nil {
		t.Fatalf("LoadSchema() error: %v", err)
	}

	entity := schema.Types["_Entity"]
	if entity == nil || entity.Kind != ast.Union {
		t.Fatalf("_Entity = %+v, want union", entity)
	}
	if got := strings.Join(entity.Types, ","); got != "Thing,Other" {
		t.Errorf("_Entity members = %s, want Thing,Other", got)
	}
	for _, field := range []string{"thing", "_entities"} {
		if schema.Query.Fields.ForName(field) == nil {
			t.Errorf("Query has no field %q", field)
		}
	}
	if schema.Directives["key"] == nil {
		t.Error("@key directive is not declared")
	}
	// graphql-go declares _Service itself and rejects a second declaration.
	if schema.Types["_Service"] != nil {
		t.Error("_Service must not be declared by the subgraph schema")
	}
}

type thingResolver struct{}

func (*thingResolver) ID() int32 { return 1 }

type entityResolver struct{}

func (*entityResolver) ToThing() (*thingResolver, bool) { return &thingResolver{}, true }
func (*entityResolver) ToOther() (*thingResolver, bool) { return nil, false }

type rootResolver struct{}

func (*rootResolver) Thing(args struct{ ID int32 }) *thingResolver { return &thingResolver{} }

func (*rootResolver) Entities(args struct{ Representations []Representation }) []*entityResolver {
	result := make([]*entityResolver, len(args.Representations))
	for i := range result {
		result[i] = &entityResolver{}
	}
	return result
}

func TestSchema_ServesServiceSDL(t *testing.T) {
	t.Parallel()
	full := Schema(testSDL, "Thing", "Other")

	schema, err := graphql.ParseSchema(full, &rootResolver{})
	if err != nil {
		t.Fatalf("ParseSchema() error: %v", err)
	}

	resp := schema.Exec(context.Background(), `{ _service { sdl } }`, "", nil)
	if len(resp.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", resp.Errors)
	}
	if got := gjson.GetBytes(resp.Data, "_service.sdl").String(); got != full {
		t.Errorf("_service.sdl = %q, want the parsed schema", got)
	}

	resp = schema.Exec(context.Background(),
		`query($r: [_Any!]!) { _entities(representations: $r) { ... on Thing { id } } }`, "",
		map[string]interface{}{"r": []interface{}{map[string]interface{}{"__typename": "Thing", "id": 1}}})
	if len(resp.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", resp.Errors)
	}
	if got := gjson.GetBytes(resp.Data, "_entities.0.id").Int(); got != 1 {
		t.Errorf("_entities.0.id = %d, want 1", got)
	}
}

func TestRepresentation_UnmarshalGraphQL(t *testing.T) {
	t.Parallel()
	var r Representation
	if !r.ImplementsGraphQLType("_Any") || r.ImplementsGraphQLType("String") {
		t.Error("Representation must implement only _Any")
	}

	if err := r.UnmarshalGraphQL(map[string]interface{}{"__typename": "Show", "showId": 1.0}); err != nil {
		t.Fatalf("UnmarshalGraphQL() error: %v", err)
	}
	if r.Typename() != "Show" {
		t.Errorf("Typename() = %q, want Show", r.Typename())
	}

	if err := r.UnmarshalGraphQL("Show:1"); err == nil {
		t.Error("UnmarshalGraphQL(string) expected error")
	}
}

func TestIntKey(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		value   interface{}
		want    int
		wantErr bool
	}{
		{"float64", 4.0, 4, false},
		{"int32", int32(8), 8, false},
		{"json.Number", json.Number("15"), 15, false},
		{"string", " 16 ", 16, false},
		{"fraction", 4.2, 0, true},
		{"bool", true, 0, true},
		{"nil", nil, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := IntKey(map[string]interface{}{"id": tt.value}, "Thing", "id")
			if (err != nil) != tt.wantErr {
				t.Fatalf("IntKey() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var invalid *apperrors.ErrInvalidRepresentation
				if !errors.As(err, &invalid) || invalid.Field != "id" || invalid.Typename != "Thing" {
					t.Errorf("error = %#v", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("IntKey() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCheckTypename(t *testing.T) {
	t.Parallel()
	if err := CheckTypename(Representation{"__typename": "Show"}, "Show"); err != nil {
		t.Errorf("matching typename: %v", err)
	}
	if err := CheckTypename(Representation{"showId": 1}, "Show"); err != nil {
		t.Errorf("missing typename: %v", err)
	}
	err := CheckTypename(Representation{"__typename": "Movie"}, "Show")
	if !errors.Is(err, &apperrors.ErrInvalidRepresentation{}) {
		t.Errorf("other typename error = %v, want *apperrors.ErrInvalidRepresentation", err)
	}
}
