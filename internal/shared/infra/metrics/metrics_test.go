package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_ObserveHelpers(t *testing.T) {
	m := New("hexashop")

	m.ObserveListing("json", "success")
	m.ObserveListing("json", "success")
	m.ObserveMutation("product", "create", nil)
	m.ObserveMutation("product", "create", errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ListingsTotal.WithLabelValues("json", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MutationsTotal.WithLabelValues("product", "create", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MutationsTotal.WithLabelValues("product", "create", "error")))

	m.LiveConnected(1)
	m.LiveConnected(1)
	m.LiveConnected(-1)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LiveSubscribers))
}

func TestMetrics_NilReceiverIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveListing("html", "error")
		m.ObserveLiveEvent("productAdded")
	})
}

func TestMetrics_MiddlewareAndHandler(t *testing.T) {
	// Arrange
	gin.SetMode(gin.TestMode)
	m := New("hexashop")
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/ping/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	// Act
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping/42", nil))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	// Assert
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `hexashop_http_requests_total{code="204",method="GET",route="/ping/:id"} 1`), body)
}
