package apperrors

import "fmt"

// Error codes reported in the "extensions.code" field of GraphQL errors.
const (
	CodeNotFound                = "NOT_FOUND"
	CodeBadRepresentation       = "BAD_REPRESENTATION"
	CodePersistedQueryNotFound  = "PERSISTED_QUERY_NOT_FOUND"
	CodePersistedQueryMismatch  = "PERSISTED_QUERY_HASH_MISMATCH"
	CodePersistedQueryMalformed = "PERSISTED_QUERY_MALFORMED"
)

// ErrNotFound represents an error when a requested resource is not found.
type ErrNotFound struct {
	Resource string
	ID       interface{}
}

// Error implements the error interface.
func (e *ErrNotFound) Error() string {
	if e.ID != nil {
		return fmt.Sprintf("%s with ID %v not found", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is allows for error checking with errors.Is().
func (e *ErrNotFound) Is(target error) bool {
	_, ok := target.(*ErrNotFound)
	return ok
}

// Extensions is picked up by the GraphQL executor and copied into the error response.
func (e *ErrNotFound) Extensions() map[string]interface{} {
	return map[string]interface{}{
		"code":     CodeNotFound,
		"resource": e.Resource,
	}
}

// NewNotFoundError creates a new ErrNotFound.
func NewNotFoundError(resource string, id interface{}) *ErrNotFound {
	return &ErrNotFound{
		Resource: resource,
		ID:       id,
	}
}

// NewShowNotFoundError creates a specific error for when a show id is not in the catalog.
func NewShowNotFoundError(showID int) *ErrNotFound {
	return &ErrNotFound{
		Resource: "show",
		ID:       showID,
	}
}

// ErrCatalogLoad is returned when the show catalog cannot be read or decoded.
// It is fatal: the service must not start serving without a complete catalog.
type ErrCatalogLoad struct {
	Source string
	Err    error
}

// Error implements the error interface.
func (e *ErrCatalogLoad) Error() string {
	return fmt.Sprintf("failed to load shows from %s: %v", e.Source, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ErrCatalogLoad) Unwrap() error {
	return e.Err
}

// Is allows for error checking with errors.Is().
func (e *ErrCatalogLoad) Is(target error) bool {
	_, ok := target.(*ErrCatalogLoad)
	return ok
}

// ErrInvalidRepresentation is returned when a federated entity representation
// lacks a usable key field.
type ErrInvalidRepresentation struct {
	Typename string
	Field    string
	Reason   string
}

// Error implements the error interface.
func (e *ErrInvalidRepresentation) Error() string {
	return fmt.Sprintf("invalid %s representation: field %q %s", e.Typename, e.Field, e.Reason)
}

// Is allows for error checking with errors.Is().
func (e *ErrInvalidRepresentation) Is(target error) bool {
	_, ok := target.(*ErrInvalidRepresentation)
	return ok
}

// Extensions is picked up by the GraphQL executor and copied into the error response.
func (e *ErrInvalidRepresentation) Extensions() map[string]interface{} {
	return map[string]interface{}{
		"code":     CodeBadRepresentation,
		"typename": e.Typename,
	}
}

// ErrPersistedQueryNotFound is returned when a client sends only the hash of a
// query the server has not registered yet. Clients retry with the full query.
type ErrPersistedQueryNotFound struct {
	Hash string
}

// Error implements the error interface. The message is fixed by the APQ protocol.
func (e *ErrPersistedQueryNotFound) Error() string {
	return "PersistedQueryNotFound"
}

// Is allows for error checking with errors.Is().
func (e *ErrPersistedQueryNotFound) Is(target error) bool {
	_, ok := target.(*ErrPersistedQueryNotFound)
	return ok
}

// Code returns the error code reported to the client.
func (e *ErrPersistedQueryNotFound) Code() string {
	return CodePersistedQueryNotFound
}

// ErrPersistedQueryMismatch is returned when the provided hash does not match
// the SHA-256 of the provided query.
type ErrPersistedQueryMismatch struct {
	Hash     string
	Computed string
}

// Error implements the error interface.
func (e *ErrPersistedQueryMismatch) Error() string {
	return fmt.Sprintf("provided sha256Hash %s does not match query (computed %s)", e.Hash, e.Computed)
}

// Is allows for error checking with errors.Is().
func (e *ErrPersistedQueryMismatch) Is(target error) bool {
	_, ok := target.(*ErrPersistedQueryMismatch)
	return ok
}

// Code returns the error code reported to the client.
func (e *ErrPersistedQueryMismatch) Code() string {
	return CodePersistedQueryMismatch
}

// ErrPersistedQueryMalformed is returned for a persistedQuery extension the
// server cannot use, such as an unsupported version or a hash that is not hex
// SHA-256.
type ErrPersistedQueryMalformed struct {
	Reason string
}

// Error implements the error interface.
func (e *ErrPersistedQueryMalformed) Error() string {
	return "malformed persisted query: " + e.Reason
}

// Is allows for error checking with errors.Is().
func (e *ErrPersistedQueryMalformed) Is(target error) bool {
	_, ok := target.(*ErrPersistedQueryMalformed)
	return ok
}

// Code returns the error code reported to the client.
func (e *ErrPersistedQueryMalformed) Code() string {
	return CodePersistedQueryMalformed
}
