// Package lolomo is the show-listing subgraph. It owns the Show entity.
package lolomo

import (
	_ "embed"
	"fmt"

	graphql "github.com/graph-gophers/graphql-go"

	"github.com/streamcat/lolomo/internal/artwork"
	"github.com/streamcat/lolomo/internal/catalog"
	"github.com/streamcat/lolomo/internal/graph/federation"
)

// SDL is the subgraph schema without the federation declarations.
//
//go:embed schema.graphql
var SDL string

// NewSchema parses the subgraph schema and binds it to the catalog.
func NewSchema(c *catalog.Catalog, gen *artwork.Generator, opts ...graphql.SchemaOpt) (*graphql.Schema, error) {
	schema, err := graphql.ParseSchema(federation.Schema(SDL, "Show"), NewResolver(c, gen), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse lolomo schema: %w", err)
	}
	return schema, nil
}
