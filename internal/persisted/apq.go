package persisted

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/streamcat/lolomo/internal/apperrors"
	"github.com/streamcat/lolomo/internal/config"
)

// protocolVersion is the only persistedQuery extension version understood.
const protocolVersion = 1

// Extension is the "persistedQuery" entry of a request's extensions.
type Extension struct {
	Version    int    `json:"version"`
	SHA256Hash string `json:"sha256Hash"`
}

// Hash returns the lower-case hex SHA-256 of query.
func Hash(query string) string {
	sum := sha256.Sum256([]byte(query))
	return hex.EncodeToString(sum[:])
}

// Resolver implements the automatic persisted query handshake on top of a
// Store.
type Resolver struct {
	store  Store
	logger zerolog.Logger
}

func NewResolver(store Store) *Resolver {
	return &Resolver{store: store, logger: config.GetLogger()}
}

// Resolve returns the document to execute.
//
// Without an extension the query is returned as is. With a hash only, the
// registered document is returned or *apperrors.ErrPersistedQueryNotFound so
// the client retries with the full text. With both, the hash is verified and
// the document registered once it parses.
func (r *Resolver) Resolve(ctx context.Context, query string, ext *Extension) (string, error) {
	if ext == nil {
		return query, nil
	}
	if ext.Version != protocolVersion {
		return "", &apperrors.ErrPersistedQueryMalformed{Reason: fmt.Sprintf("unsupported version %d", ext.Version)}
	}
	hash := strings.ToLower(ext.SHA256Hash)
	if b, err := hex.DecodeString(hash); err != nil || len(b) != sha256.Size {
		return "", &apperrors.ErrPersistedQueryMalformed{Reason: "sha256Hash is not a hex SHA-256 digest"}
	}

	if query == "" {
		doc, ok := r.store.Get(ctx, hash)
		if !ok {
			r.logger.Debug().Str("hash", hash).Msg("Persisted query not found")
			return "", &apperrors.ErrPersistedQueryNotFound{Hash: hash}
		}
		return doc, nil
	}

	if computed := Hash(query); computed != hash {
		return "", &apperrors.ErrPersistedQueryMismatch{Hash: hash, Computed: computed}
	}

	// Documents that do not parse are executed once so the client sees the
	// syntax error, but never registered.
	if _, err := parser.ParseQuery(&ast.Source{Name: hash, Input: query}); err != nil {
		r.logger.Debug().Str("hash", hash).Err(err).Msg("Not registering unparsable query")
		return query, nil
	}
	if err := r.store.Put(ctx, hash, query); err != nil {
		// Registration is best effort: the request itself still succeeds.
		r.logger.Warn().Err(err).Str("hash", hash).Msg("Failed to register persisted query")
		return query, nil
	}
	r.logger.Debug().Str("hash", hash).Msg("Registered persisted query")
	return query, nil
}
