package persisted

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/streamcat/lolomo/internal/apperrors"
)

const lolomoQuery = `{ lolomo { name shows { title } } }`

func newTestResolver(t *testing.T) (*Resolver, Store) {
	t.Helper()
	s := newTestMemoryStore(t, 10, time.Hour, nil)
	return NewResolver(s), s
}

func TestHash(t *testing.T) {
	// sha256("") is a well-known constant.
	if got := Hash(""); got != "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855" {
		t.Errorf("Hash(\"\") = %s", got)
	}
	if len(Hash(lolomoQuery)) != 64 {
		t.Errorf("Hash length = %d, want 64", len(Hash(lolomoQuery)))
	}
}

func TestResolve_NoExtension(t *testing.T) {
	r, s := newTestResolver(t)
	got, err := r.Resolve(context.Background(), lolomoQuery, nil)
	if err != nil || got != lolomoQuery {
		t.Errorf("Resolve() = %q, %v", got, err)
	}
	if s.Len(context.Background()) != 0 {
		t.Error("plain queries must not be registered")
	}
}

func TestResolve_Handshake(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestResolver(t)
	ext := &Extension{Version: 1, SHA256Hash: Hash(lolomoQuery)}

	// First the client sends only the hash.
	_, err := r.Resolve(ctx, "", ext)
	var notFound *apperrors.ErrPersistedQueryNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("hash-only Resolve() error = %v, want ErrPersistedQueryNotFound", err)
	}

	// It retries with the full text, which registers it.
	got, err := r.Resolve(ctx, lolomoQuery, ext)
	if err != nil || got != lolomoQuery {
		t.Fatalf("register Resolve() = %q, %v", got, err)
	}

	// Later requests only carry the hash.
	got, err = r.Resolve(ctx, "", ext)
	if err != nil || got != lolomoQuery {
		t.Errorf("lookup Resolve() = %q, %v", got, err)
	}

	// Upper-case hex is accepted.
	upper := &Extension{Version: 1, SHA256Hash: strings.ToUpper(ext.SHA256Hash)}
	if got, err := r.Resolve(ctx, "", upper); err != nil || got != lolomoQuery {
		t.Errorf("upper-case lookup = %q, %v", got, err)
	}
}

func TestResolve_Errors(t *testing.T) {
	ctx := context.Background()
	r, s := newTestResolver(t)

	tests := []struct {
		name  string
		query string
		ext   *Extension
		want  error
	}{
		{"hash mismatch", lolomoQuery, &Extension{Version: 1, SHA256Hash: Hash("{ other }")}, &apperrors.ErrPersistedQueryMismatch{}},
		{"unsupported version", lolomoQuery, &Extension{Version: 2, SHA256Hash: Hash(lolomoQuery)}, &apperrors.ErrPersistedQueryMalformed{}},
		{"not hex", "", &Extension{Version: 1, SHA256Hash: "not-a-hash"}, &apperrors.ErrPersistedQueryMalformed{}},
		{"short hash", "", &Extension{Version: 1, SHA256Hash: "abcd"}, &apperrors.ErrPersistedQueryMalformed{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Resolve(ctx, tt.query, tt.ext)
			if !errors.Is(err, tt.want) {
				t.Errorf("Resolve() error = %v, want %T", err, tt.want)
			}
		})
	}
	if s.Len(ctx) != 0 {
		t.Errorf("rejected requests registered %d documents", s.Len(ctx))
	}
}

func TestResolve_UnparsableQueryNotRegistered(t *testing.T) {
	ctx := context.Background()
	r, s := newTestResolver(t)
	bad := `{ lolomo { name `

	got, err := r.Resolve(ctx, bad, &Extension{Version: 1, SHA256Hash: Hash(bad)})
	if err != nil || got != bad {
		t.Errorf("Resolve() = %q, %v; want the query back for execution", got, err)
	}
	if s.Len(ctx) != 0 {
		t.Error("unparsable query was registered")
	}
}
