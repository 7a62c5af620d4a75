package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/arena-maps/internal/auth"
	"github.com/annel0/arena-maps/internal/logging"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newIssuer(t *testing.T) *auth.Issuer {
	is, err := auth.NewIssuer("")
	require.NoError(t, err)
	return is
}

func TestJWTAndRequireAdmin(t *testing.T) {
	is := newIssuer(t)
	r := gin.New()
	r.GET("/admin", JWT(is), RequireAdmin(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(SubjectKey))
	})

	adminToken, err := is.Generate("root", true, time.Hour)
	require.NoError(t, err)
	userToken, err := is.Generate("guest", false, time.Hour)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer abc.def.ghi", http.StatusUnauthorized},
		{"not admin", "Bearer " + userToken, http.StatusForbidden},
		{"admin", "Bearer " + adminToken, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestPrometheusMiddleware(t *testing.T) {
	reg := prometheus.NewRegistry()
	pm := NewPrometheusMiddleware("test_api", reg)

	r := gin.New()
	r.Use(pm.Handler())
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/fail", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })
	pm.RegisterMetricsEndpoint(r, reg)

	for _, p := range []string{"/ok", "/fail", "/fail", "/nowhere"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(pm.reqErrors.WithLabelValues("GET", "/fail", "500")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pm.reqErrors.WithLabelValues("GET", "unmatched", "404")))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "test_api_http_request_duration_seconds")
}

func TestRequestLoggerSetsTraceID(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWriterLogger("http", &buf, logging.INFO)

	r := gin.New()
	r.Use(NewRequestLogger(logger).Handler())
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(TraceIDKey))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	traceID := w.Body.String()
	assert.NotEmpty(t, traceID)
	assert.Equal(t, traceID, w.Header().Get("X-Trace-Id"))
	assert.Contains(t, buf.String(), "/ping")
	assert.Contains(t, buf.String(), traceID)
}
