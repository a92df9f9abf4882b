// Package observability owns the bot's Prometheus collectors.
package observability

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/m3rciful/fitbot/core/logger"
)

const namespace = "fitbot"

var (
	callbacksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "menu",
		Name:      "callbacks_total",
		Help:      "Menu callbacks processed, by token kind and result.",
	}, []string{"kind", "result"})
	gateChecksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "gate",
		Name:      "checks_total",
		Help:      "Channel membership checks, by result (member, not_member, error, timeout).",
	}, []string{"result"})
	gateCheckSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "gate",
		Name:      "check_duration_seconds",
		Help:      "Latency of channel membership checks.",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5},
	})
	registrationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "users",
		Name:      "registrations_total",
		Help:      "Start command registrations, by result (new, existing, failed).",
	}, []string{"result"})
	knownUsers = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "users",
		Name:      "known",
		Help:      "Distinct users known to the registry.",
	})
	deliveriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "catalog",
		Name:      "deliveries_total",
		Help:      "Guide deliveries, by asset kind and result (sent, unavailable).",
	}, []string{"kind", "result"})
	sendsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "sender",
		Name:      "jobs_total",
		Help:      "Asynchronous Telegram send jobs, by action and result.",
	}, []string{"action", "result"})
)

func init() {
	prometheus.MustRegister(
		callbacksTotal,
		gateChecksTotal,
		gateCheckSeconds,
		registrationsTotal,
		knownUsers,
		deliveriesTotal,
		sendsTotal,
	)
}

// RecordCallback counts a processed menu callback.
func RecordCallback(kind, result string) {
	callbacksTotal.WithLabelValues(kind, result).Inc()
}

// RecordGateCheck counts a membership check and observes its latency.
func RecordGateCheck(result string, took time.Duration) {
	gateChecksTotal.WithLabelValues(result).Inc()
	gateCheckSeconds.Observe(took.Seconds())
}

// RecordRegistration counts a registration attempt and updates the known users gauge.
func RecordRegistration(result string, total int) {
	registrationsTotal.WithLabelValues(result).Inc()
	knownUsers.Set(float64(total))
}

// SetKnownUsers sets the known users gauge, e.g. after loading the store.
func SetKnownUsers(total int) {
	knownUsers.Set(float64(total))
}

// RecordDelivery counts a guide delivery attempt.
func RecordDelivery(kind, result string) {
	deliveriesTotal.WithLabelValues(kind, result).Inc()
}

// RecordSend counts the final result of an outbound send job.
func RecordSend(action string, err error) {
	result := "ok"
	if err != nil {
		result = "fail"
	}
	sendsTotal.WithLabelValues(action, result).Inc()
}

// Server serves /metrics until Shutdown.
type Server struct {
	srv *http.Server
}

// StartServer begins serving the default registry on addr. An empty addr
// returns a nil server; Shutdown on nil is a no-op.
func StartServer(addr string) *Server {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	s := &Server{srv: &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}}
	go func() {
		logger.Info(context.Background(), logger.CompApp, "metrics.listen", slog.String("listen", addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(context.Background(), logger.CompApp, "metrics.serve", slog.String("err", err.Error()))
		}
	}()
	return s
}

// Shutdown stops the metrics server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
