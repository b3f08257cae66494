// Package reviews is the review subgraph. It extends the Show entity owned by
// the lolomo subgraph with its reviews.
package reviews

import (
	_ "embed"
	"fmt"

	graphql "github.com/graph-gophers/graphql-go"

	"github.com/streamcat/lolomo/internal/graph/federation"
)

// SDL is the subgraph schema without the federation declarations.
//
//go:embed schema.graphql
var SDL string

func NewSchema(opts ...graphql.SchemaOpt) (*graphql.Schema, error) {
	schema, err := graphql.ParseSchema(federation.Schema(SDL, "Show"), NewResolver(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse reviews schema: %w", err)
	}
	return schema, nil
}
