// Package httputil provides the JSON request and response helpers and the
// middleware shared by the zombograph HTTP endpoints.
//
// # Response Helpers
//
//	httputil.WriteSuccess(w, data)
//	httputil.WriteText(w, http.StatusOK, sdl)
//	httputil.WriteValidationError(w, "allProducts.search.minScore", "must not be negative")
//
// # Request Parsing
//
//	var req QueryRequest
//	if !httputil.ParseJSONOrError(w, r, &req) {
//		return // Error response already written
//	}
//
// # Middleware
//
//	httputil.Chain(
//		httputil.RequestIDMiddleware,
//		httputil.LoggingMiddleware(logger),
//		httputil.ContentTypeMiddleware,
//		httputil.MaxBytesMiddleware(1<<20),
//	)
//
// # Related Packages
//
//   - pkg/server: Registers the handlers
//   - pkg/observability: Request id and logger context helpers
package httputil
