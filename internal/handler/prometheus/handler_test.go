package prometheus

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareRecordsRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := New("registry")

	r := gin.New()
	r.Use(h.Middleware())
	r.GET("/api/patients/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/metrics", h.Handler())

	for _, id := range []string{"a", "b", "c"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/patients/"+id, nil))
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(h.requestTotal.WithLabelValues("GET", "/api/patients/:id", "404")))
	assert.Equal(t, 3.0, testutil.ToFloat64(h.errorTotal.WithLabelValues("GET", "/api/patients/:id", "404")))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "registry_http_requests_total")
}
