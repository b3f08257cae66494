package metrics

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/streamcat/lolomo/internal/config"
)

// Path is where the metrics server exposes the default registry.
const Path = "/metrics"

// NewHTTPServer creates the metrics server on server.address and
// metrics.port. It serves the default registry, in OpenMetrics format when
// the scraper asks for it.
func NewHTTPServer(cfg *config.Config) *http.Server {
	handler := promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorLog:          errorLogger{},
	})

	mux := http.NewServeMux()
	mux.Handle(Path, promhttp.InstrumentMetricHandler(prometheus.DefaultRegisterer, handler))
	return &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Address, strconv.Itoa(cfg.Metrics.Port)),
		Handler:           mux,
		ReadHeaderTimeout: config.ParseDuration("server.read_timeout", cfg.Server.ReadTimeout, 10*time.Second),
	}
}

// errorLogger routes promhttp gathering errors to the shared logger.
type errorLogger struct{}

func (errorLogger) Println(v ...interface{}) {
	logger := config.GetLogger()
	logger.Error().Str("component", "metrics").Msg(fmt.Sprintln(v...))
}
