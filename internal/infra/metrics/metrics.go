package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	ReportsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reports_total",
		Help: "Количество принятых жалоб по причинам",
	}, []string{"reason"})

	AutoQuarantineTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auto_quarantine_total",
		Help: "Количество постов, отправленных в карантин автоматически",
	})

	ValidationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "validations_total",
		Help: "Количество голосов проверки фактов по типам",
	}, []string{"type"})

	SyncItemsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_items_total",
		Help: "Количество обработанных записей внешних источников",
	}, []string{"source", "outcome"})

	NetworkRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "network_request_duration_seconds",
		Help:    "Длительность сетевых запросов",
		Buckets: prometheus.DefBuckets,
	}, []string{"component", "operation", "target", "status"})

	NetworkRequestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "network_request_total",
		Help: "Количество сетевых запросов",
	}, []string{"component", "operation", "target", "status"})
)

// MustRegister регистрирует метрики.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		ReportsTotal,
		AutoQuarantineTotal,
		ValidationsTotal,
		SyncItemsTotal,
		NetworkRequestDuration,
		NetworkRequestTotal,
	)
}

// StartServer запускает HTTP сервер с эндпоинтом /metrics.
func StartServer(ctx context.Context, logger zerolog.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownTimeout); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: graceful shutdown failed")
		}
	}()

	go func() {
		logger.Info().Str("addr", addr).Msg("metrics: server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: server stopped")
		}
	}()
}

// ObserveNetworkRequest записывает длительность и статус сетевого запроса.
func ObserveNetworkRequest(component, operation, target string, start time.Time, err error) {
	if component == "" {
		component = "unknown"
	}
	if operation == "" {
		operation = "unknown"
	}
	if target == "" {
		target = "unknown"
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	duration := time.Since(start).Seconds()
	NetworkRequestDuration.WithLabelValues(component, operation, target, status).Observe(duration)
	NetworkRequestTotal.WithLabelValues(component, operation, target, status).Inc()
}

// IncReport увеличивает счётчик жалоб.
func IncReport(reason string) {
	ReportsTotal.WithLabelValues(reason).Inc()
}

// IncAutoQuarantine увеличивает счётчик автоматических карантинов.
func IncAutoQuarantine() {
	AutoQuarantineTotal.Inc()
}

// IncValidation увеличивает счётчик голосов проверки фактов.
func IncValidation(validationType string) {
	ValidationsTotal.WithLabelValues(validationType).Inc()
}

// IncSyncItem увеличивает счётчик записей синхронизации.
func IncSyncItem(source, outcome string) {
	SyncItemsTotal.WithLabelValues(source, outcome).Inc()
}
