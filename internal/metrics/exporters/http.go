// Package exporters exposes the metrics over HTTP.
package exporters

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPHandler serves everything registered through promauto, which is where
// the LED, task and guard metrics live.
func HTTPHandler(logger *slog.Logger) http.Handler {
	return HandlerFor(prometheus.DefaultGatherer, logger)
}

// HandlerFor serves the metrics of g. A collector that fails is logged and
// skipped; the remaining metrics are still served so one bad collector
// never blanks the LED dashboards. OpenMetrics is offered to scrapers that
// ask for it.
func HandlerFor(g prometheus.Gatherer, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{
		ErrorLog:          errorLog{logger: logger},
		ErrorHandling:     promhttp.ContinueOnError,
		EnableOpenMetrics: true,
	})
}

// errorLog adapts slog to promhttp.Logger.
type errorLog struct {
	logger *slog.Logger
}

func (e errorLog) Println(v ...any) {
	e.logger.Warn("Metrics gathering failed", "error", fmt.Sprint(v...))
}
