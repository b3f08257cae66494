// Package federation holds the pieces every subgraph needs to take part in a
// federated graph: the _Any scalar, the _entities query and the schema
// preamble declaring the federation directives. The _Service type and the
// _service field come with graphql-go, which answers _service { sdl } with
// the parsed schema string.
package federation

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/streamcat/lolomo/internal/apperrors"
)

const preamble = `
scalar _Any
scalar _FieldSet

directive @key(fields: _FieldSet!) on OBJECT | INTERFACE
directive @external on FIELD_DEFINITION
directive @requires(fields: _FieldSet!) on FIELD_DEFINITION
directive @provides(fields: _FieldSet!) on FIELD_DEFINITION
directive @extends on OBJECT | INTERFACE
`

const queryExtension = `
extend type Query {
  _entities(representations: [_Any!]!): [_Entity]!
}
`

// Schema returns the executable schema for a subgraph: sdl followed by the
// federation declarations and the _Entity union over entityTypes. This is
// also the SDL the subgraph publishes.
func Schema(sdl string, entityTypes ...string) string {
	var b strings.Builder
	b.WriteString(sdl)
	b.WriteString(preamble)
	fmt.Fprintf(&b, "\nunion _Entity = %s\n", strings.Join(entityTypes, " | "))
	b.WriteString(queryExtension)
	return b.String()
}

// Representation is an entity reference received through _entities.
type Representation map[string]interface{}

// ImplementsGraphQLType maps Representation to the _Any scalar.
func (Representation) ImplementsGraphQLType(name string) bool {
	return name == "_Any"
}

// UnmarshalGraphQL accepts the object form of a representation.
func (r *Representation) UnmarshalGraphQL(input interface{}) error {
	m, ok := input.(map[string]interface{})
	if !ok {
		return fmt.Errorf("representation must be an object, got %T", input)
	}
	*r = Representation(m)
	return nil
}

// Typename returns the __typename of the representation, or "".
func (r Representation) Typename() string {
	name, _ := r["__typename"].(string)
	return name
}

// IntKey reads an integer key field from a representation. JSON numbers,
// GraphQL ints and numeric strings are accepted.
func IntKey(rep map[string]interface{}, typename, field string) (int, error) {
	raw, ok := rep[field]
	if !ok || raw == nil {
		return 0, invalid(typename, field, "is missing")
	}

	switch v := raw.(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return 0, invalid(typename, field, fmt.Sprintf("is not an integer: %v", v))
		}
		return int(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, invalid(typename, field, fmt.Sprintf("is not an integer: %s", v))
		}
		return int(n), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, invalid(typename, field, fmt.Sprintf("is not an integer: %q", v))
		}
		return n, nil
	default:
		return 0, invalid(typename, field, fmt.Sprintf("has unsupported type %T", raw))
	}
}

// CheckTypename fails when rep names a type other than want. A missing
// __typename is accepted.
func CheckTypename(rep Representation, want string) error {
	if name := rep.Typename(); name != "" && name != want {
		return &apperrors.ErrInvalidRepresentation{
			Typename: want,
			Field:    "__typename",
			Reason:   fmt.Sprintf("names unknown entity type %q", name),
		}
	}
	return nil
}

func invalid(typename, field, reason string) *apperrors.ErrInvalidRepresentation {
	return &apperrors.ErrInvalidRepresentation{
		Typename: typename,
		Field:    field,
		Reason:   reason,
	}
}
