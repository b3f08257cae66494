package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	graphql "github.com/graph-gophers/graphql-go"
	gqlerrors "github.com/graph-gophers/graphql-go/errors"
	"github.com/rs/zerolog"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/streamcat/lolomo/internal/config"
	"github.com/streamcat/lolomo/internal/metrics"
	"github.com/streamcat/lolomo/internal/persisted"
)

// maxBodyBytes caps the size of a POSTed GraphQL request.
const maxBodyBytes = 1 << 20

// Request statuses recorded in graphql_requests_total.
const (
	statusOK       = "ok"
	statusFailed   = "error"
	statusRejected = "rejected"
)

// Request is a GraphQL-over-HTTP request.
type Request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
	Extensions    struct {
		PersistedQuery *persisted.Extension `json:"persistedQuery"`
	} `json:"extensions"`
}

// Handler executes GraphQL requests against one subgraph schema.
type Handler struct {
	schema  *graphql.Schema
	service string
	apq     *persisted.Resolver
	logger  zerolog.Logger
}

// NewHandler creates a handler for schema. store may be nil to disable
// persisted queries.
func NewHandler(service string, schema *graphql.Schema, store persisted.Store) *Handler {
	h := &Handler{
		schema:  schema,
		service: service,
		logger:  config.GetLogger(),
	}
	if store != nil {
		h.apq = persisted.NewResolver(store)
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req, err := decodeRequest(w, r)
	if err != nil {
		var httpErr *httpError
		code := http.StatusBadRequest
		if errors.As(err, &httpErr) {
			code = httpErr.code
			if code == http.StatusMethodNotAllowed {
				w.Header().Set("Allow", "GET, POST")
			}
		}
		h.logger.Debug().Err(err).Str("method", r.Method).Msg("Rejected GraphQL request")
		h.record(statusRejected, start)
		writeJSON(w, code, errorResponse(err.Error(), nil))
		return
	}

	query, err := h.resolveQuery(r.Context(), req)
	if err != nil {
		h.record(statusRejected, start)
		writeJSON(w, http.StatusOK, persistedQueryResponse(err))
		return
	}

	resp := h.schema.Exec(r.Context(), query, req.OperationName, req.Variables)

	status := statusOK
	if len(resp.Errors) > 0 {
		status = statusFailed
	}
	h.record(status, start)
	// operationName re-parses the document.
	if e := h.logger.Debug(); e.Enabled() {
		e.Str("service", h.service).
			Str("operation", operationName(query, req.OperationName)).
			Int("errors", len(resp.Errors)).
			Dur("duration", time.Since(start)).
			Msg("GraphQL request")
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) resolveQuery(ctx context.Context, req *Request) (string, error) {
	if h.apq == nil {
		return req.Query, nil
	}
	return h.apq.Resolve(ctx, req.Query, req.Extensions.PersistedQuery)
}

func (h *Handler) record(status string, start time.Time) {
	metrics.GraphQLRequestsTotal.WithLabelValues(h.service, status).Inc()
	metrics.GraphQLRequestDuration.WithLabelValues(h.service).Observe(time.Since(start).Seconds())
}

type httpError struct {
	code int
	err  error
}

func (e *httpError) Error() string { return e.err.Error() }
func (e *httpError) Unwrap() error { return e.err }

// decodeRequest reads a request from a POST JSON body or GET query string.
func decodeRequest(w http.ResponseWriter, r *http.Request) (*Request, error) {
	var req Request

	switch r.Method {
	case http.MethodPost:
		body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := json.NewDecoder(body).Decode(&req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return nil, &httpError{http.StatusRequestEntityTooLarge, err}
			}
			if errors.Is(err, io.EOF) {
				return nil, &httpError{http.StatusBadRequest, errors.New("empty request body")}
			}
			return nil, &httpError{http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err)}
		}

	case http.MethodGet:
		params := r.URL.Query()
		req.Query = params.Get("query")
		req.OperationName = params.Get("operationName")
		if v := params.Get("variables"); v != "" {
			if err := json.Unmarshal([]byte(v), &req.Variables); err != nil {
				return nil, &httpError{http.StatusBadRequest, fmt.Errorf("invalid variables: %w", err)}
			}
		}
		if v := params.Get("extensions"); v != "" {
			if err := json.Unmarshal([]byte(v), &req.Extensions); err != nil {
				return nil, &httpError{http.StatusBadRequest, fmt.Errorf("invalid extensions: %w", err)}
			}
		}

	default:
		return nil, &httpError{http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed", r.Method)}
	}

	if req.Query == "" && req.Extensions.PersistedQuery == nil {
		return nil, &httpError{http.StatusBadRequest, errors.New("missing query")}
	}
	return &req, nil
}

// operationName names the executed operation for logs: the requested name,
// else the name of the single operation in the document.
func operationName(query, requested string) string {
	if requested != "" {
		return requested
	}
	doc, err := parser.ParseQuery(&ast.Source{Input: query})
	if err != nil || len(doc.Operations) != 1 {
		return ""
	}
	return doc.Operations[0].Name
}

// coder is implemented by errors that carry a client-facing code.
type coder interface {
	Code() string
}

func persistedQueryResponse(err error) *graphql.Response {
	var c coder
	if errors.As(err, &c) {
		return errorResponse(err.Error(), map[string]interface{}{"code": c.Code()})
	}
	return errorResponse(err.Error(), nil)
}

func errorResponse(message string, extensions map[string]interface{}) *graphql.Response {
	return &graphql.Response{
		Errors: []*gqlerrors.QueryError{{Message: message, Extensions: extensions}},
	}
}

func writeJSON(w http.ResponseWriter, status int, resp *graphql.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger := config.GetLogger()
		logger.Error().Err(err).Msg("Failed to write GraphQL response")
	}
}
