// Package metrics exposes Prometheus counters for the identity flows and the
// HTTP layer serving them.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics holds the collectors. A nil *Metrics records nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	Registrations     *prometheus.CounterVec
	Logins            *prometheus.CounterVec
	OtpVerifications  *prometheus.CounterVec
	OtpResends        *prometheus.CounterVec
	TokensIssued      *prometheus.CounterVec
	TokenRefreshes    *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
	APIRequestCounter *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(namespace string, reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		gatherer: reg,
		Registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Total number of registration attempts",
		}, []string{"role", "outcome"}),
		Logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Total number of login attempts",
		}, []string{"outcome"}),
		OtpVerifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "otp_verifications_total",
			Help:      "Total number of OTP verification attempts",
		}, []string{"outcome"}),
		OtpResends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "otp_resends_total",
			Help:      "Total number of OTP resend requests",
		}, []string{"outcome"}),
		TokensIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_issued_total",
			Help:      "Total number of tokens issued",
		}, []string{"token_type"}),
		TokenRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_refreshes_total",
			Help:      "Total number of refresh token exchanges",
		}, []string{"outcome"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		APIRequestCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Total number of API requests",
		}, []string{"method", "path", "status"}),
	}

	reg.MustRegister(
		m.Registrations,
		m.Logins,
		m.OtpVerifications,
		m.OtpResends,
		m.TokensIssued,
		m.TokenRefreshes,
		m.RequestDuration,
		m.APIRequestCounter,
	)
	return m
}

func outcome(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}

func (m *Metrics) RecordRegistration(role string, err error) {
	if m == nil {
		return
	}
	m.Registrations.WithLabelValues(role, outcome(err)).Inc()
}

func (m *Metrics) RecordLogin(err error) {
	if m == nil {
		return
	}
	m.Logins.WithLabelValues(outcome(err)).Inc()
	if err == nil {
		m.TokensIssued.WithLabelValues("access").Inc()
		m.TokensIssued.WithLabelValues("refresh").Inc()
	}
}

func (m *Metrics) RecordOtpVerification(err error) {
	if m == nil {
		return
	}
	m.OtpVerifications.WithLabelValues(outcome(err)).Inc()
}

func (m *Metrics) RecordOtpResend(err error) {
	if m == nil {
		return
	}
	m.OtpResends.WithLabelValues(outcome(err)).Inc()
}

func (m *Metrics) RecordRefresh(err error) {
	if m == nil {
		return
	}
	m.TokenRefreshes.WithLabelValues(outcome(err)).Inc()
	if err == nil {
		m.TokensIssued.WithLabelValues("access").Inc()
	}
}

// Middleware tracks request count and duration, labelled by route pattern so
// that path parameters do not explode the label space.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		labels := []string{r.Method, path, strconv.Itoa(status)}
		m.APIRequestCounter.WithLabelValues(labels...).Inc()
		m.RequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
	})
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
