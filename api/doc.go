// Package api provides the HTTP layer of the library backend.
//
// It translates HTTP requests into library store calls and maps the store's
// error taxonomy onto status codes: not-found errors become 404, precondition
// and validation failures become 400, and everything else becomes 500. The
// layer holds no business logic; the loan lifecycle invariants live entirely
// in the engine it calls into.
package api
