package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Counts(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordLogin(true)
	c.RecordLogin(false)
	c.RecordLogin(false)
	c.RecordLikeToggle(true)
	c.RecordNotification("welcome", false)
	c.RecordHTTPRequest(http.MethodGet, "/api/blogs", http.StatusOK, 20*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.logins.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.logins.WithLabelValues("failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.likeToggles.WithLabelValues("liked")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.notifications.WithLabelValues("welcome", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.httpRequests.WithLabelValues("GET", "/api/blogs", "200")))
}

func TestHandler_ServesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordRegistration()

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "blog_registrations_total 1")
}
