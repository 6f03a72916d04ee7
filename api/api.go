// Copyright (c) 2025 The Granary developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/granarylabs/granary/api/events"
	"github.com/granarylabs/granary/api/pools"
	"github.com/granarylabs/granary/builtin/farm"
	"github.com/granarylabs/granary/eventdb"
	"github.com/granarylabs/granary/log"
	"github.com/granarylabs/granary/metrics"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins  string
	EventsLimit     uint64
	EnableReqLogger bool
	EnableMetrics   bool
}

// New return api router
func New(
	farmSvc *farm.Farm,
	eventDB *eventdb.EventDB,
	now func() uint64,
	commit func() error,
	opts Options,
) http.HandlerFunc {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	pools.New(farmSvc, now, commit).
		Mount(router, "/pools")
	if eventDB != nil {
		events.New(eventDB, opts.EventsLimit).
			Mount(router, "/events")
	}
	if opts.EnableMetrics {
		router.PathPrefix("/metrics").Handler(metrics.HTTPHandler())
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
	)(handler)

	if opts.EnableReqLogger {
		handler = requestLogger(handler)
	}
	handler = metricsMiddleware(handler)

	return handler.ServeHTTP
}

// statusRecorder captures the response code for logging and metering.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		rec := &statusRecorder{w, http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, req)
		logger.Info("API request",
			"method", req.Method,
			"url", req.URL.String(),
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

var (
	metricHTTPReqCounter  = metrics.LazyLoadCounterVec("api_request_count", []string{"code", "method"})
	metricHTTPReqDuration = metrics.LazyLoadHistogram("api_duration_ms", metrics.BucketHTTPReqs)
)

func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		rec := &statusRecorder{w, http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, req)
		metricHTTPReqCounter().AddWithLabel(1, map[string]string{
			"code":   strconv.Itoa(rec.status),
			"method": req.Method,
		})
		metricHTTPReqDuration().Observe(time.Since(start).Milliseconds())
	})
}
