package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/platinummonkey/zombograph/pkg/build"
	"github.com/platinummonkey/zombograph/pkg/execute"
	"github.com/platinummonkey/zombograph/pkg/httputil"
	"github.com/platinummonkey/zombograph/pkg/observability"
	"github.com/platinummonkey/zombograph/pkg/schema"
)

const maxQueryBytes = 1 << 20

// QueryRequest is the body of POST /query
type QueryRequest struct {
	Selections []execute.Selection `json:"selections"`
}

// QueryResponse is the reply to a successful query
type QueryResponse struct {
	Data    map[string]interface{} `json:"data"`
	BuildID string                 `json:"build_id"`
}

// BuildInfo describes the live generation
type BuildInfo struct {
	ID       string         `json:"id"`
	BuiltAt  time.Time      `json:"built_at"`
	Duration string         `json:"duration"`
	Notices  []build.Notice `json:"notices"`
}

// Handler returns the HTTP API:
//
//	GET  /schema   SDL of the live schema
//	GET  /build    id, time and notices of the live build
//	POST /query    execute a selection set
//	POST /rebuild  re-read the catalogs and rebuild (refresh=false reuses the cached snapshot)
//	GET  /metrics  Prometheus exposition, when metrics are enabled
//	GET  /health, /health/live, /health/ready
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	router.Use(observability.RecoveryMiddleware(s.log), httputil.RequestIDMiddleware, httputil.LoggingMiddleware(s.log))
	if s.metrics != nil {
		router.Use(observability.HTTPMetricsMiddleware(s.metrics, routeTemplate))
	}

	router.HandleFunc("/schema", s.getSchema).Methods(http.MethodGet)
	router.HandleFunc("/build", s.getBuild).Methods(http.MethodGet)
	router.Handle("/query", httputil.Chain(
		httputil.ContentTypeMiddleware,
		httputil.MaxBytesMiddleware(maxQueryBytes),
	)(http.HandlerFunc(s.query))).Methods(http.MethodPost)
	router.HandleFunc("/rebuild", s.postRebuild).Methods(http.MethodPost)

	if s.registry != nil {
		router.Handle("/metrics", observability.MetricsHandler(s.registry)).Methods(http.MethodGet)
	}
	observability.RegisterHealthRoutes(router, observability.NewHealthChecker(s.db, s, s.version))

	return otelhttp.NewHandler(router, "zombograph")
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

// getSchema handles GET /schema
func (s *Server) getSchema(w http.ResponseWriter, r *http.Request) {
	live := s.Live()
	if live == nil {
		httputil.WriteServiceUnavailable(w, "schema not built")
		return
	}
	httputil.WriteText(w, http.StatusOK, live.SDL)
}

// getBuild handles GET /build
func (s *Server) getBuild(w http.ResponseWriter, r *http.Request) {
	live := s.Live()
	if live == nil {
		httputil.WriteServiceUnavailable(w, "schema not built")
		return
	}
	notices := live.Notices
	if notices == nil {
		notices = []build.Notice{}
	}
	_ = httputil.WriteSuccess(w, BuildInfo{
		ID:       live.ID,
		BuiltAt:  live.BuiltAt,
		Duration: live.Duration.String(),
		Notices:  notices,
	})
}

// query handles POST /query
func (s *Server) query(w http.ResponseWriter, r *http.Request) {
	live := s.Live()
	if live == nil {
		httputil.WriteServiceUnavailable(w, "schema not built")
		return
	}

	var req QueryRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if len(req.Selections) == 0 {
		httputil.WriteBadRequest(w, "at least one selection is required")
		return
	}

	data, err := live.Executor.Execute(r.Context(), req.Selections)
	if err != nil {
		var verr *schema.ValidationError
		switch {
		case errors.As(err, &verr):
			httputil.WriteValidationError(w, verr.Path, verr.Message)
		case errors.Is(err, execute.ErrNotCollection):
			httputil.WriteBadRequest(w, err.Error())
		default:
			observability.FromContext(r.Context()).WithError(err).Error("Query failed")
			httputil.WriteInternalError(w, err)
		}
		return
	}

	_ = httputil.WriteSuccess(w, QueryResponse{Data: data, BuildID: live.ID})
}

// postRebuild handles POST /rebuild. refresh=false rebuilds from the cached
// snapshot instead of re-reading the catalogs.
func (s *Server) postRebuild(w http.ResponseWriter, r *http.Request) {
	refresh, err := httputil.ParseQueryBool(r, "refresh", true)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	rebuild := s.Rebuild
	if refresh {
		rebuild = s.Refresh
	}
	if err := rebuild(r.Context()); err != nil {
		observability.FromContext(r.Context()).WithError(err).Error("Rebuild failed")
		httputil.WriteInternalError(w, err)
		return
	}
	_ = httputil.WriteSuccess(w, map[string]string{"build_id": s.BuildID()})
}
