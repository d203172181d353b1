package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorders(t *testing.T) {
	m := New("idm", prometheus.NewRegistry())

	m.RecordRegistration("OWNER", nil)
	m.RecordRegistration("DOCTOR", errors.New("conflict"))
	m.RecordLogin(nil)
	m.RecordLogin(errors.New("bad password"))
	m.RecordRefresh(nil)
	m.RecordOtpVerification(errors.New("mismatch"))
	m.RecordOtpResend(nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Registrations.WithLabelValues("OWNER", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Registrations.WithLabelValues("DOCTOR", OutcomeFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Logins.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Logins.WithLabelValues(OutcomeFailure)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.TokensIssued.WithLabelValues("access")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TokensIssued.WithLabelValues("refresh")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OtpVerifications.WithLabelValues(OutcomeFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OtpResends.WithLabelValues(OutcomeSuccess)))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordLogin(nil)
		m.RecordRegistration("OWNER", nil)
		m.RecordRefresh(nil)
		m.RecordOtpVerification(nil)
		m.RecordOtpResend(nil)
	})

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	assert.NotNil(t, m.Middleware(next))
}

func TestMiddlewareAndHandler(t *testing.T) {
	m := New("idm", prometheus.NewRegistry())

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Handle("/metrics", m.Handler())

	for _, id := range []string{"1", "2"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/"+id, nil))
		require.Equal(t, http.StatusNotFound, w.Code)
	}
	assert.Equal(t, 2.0, testutil.ToFloat64(m.APIRequestCounter.WithLabelValues(http.MethodGet, "/users/{id}", "404")))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `idm_api_requests_total{method="GET",path="/users/{id}",status="404"} 2`)
}
