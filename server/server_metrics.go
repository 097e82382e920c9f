package server

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/armon/go-metrics"
	"github.com/armon/go-metrics/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
	"gopkg.in/DataDog/dd-trace-go.v1/profiler"

	"github.com/starkedge/mempool/version"
)

const (
	serviceName = "mempool"

	// in-memory sink, dumped on SIGUSR1
	inmemInterval  = 10 * time.Second
	inmemRetention = time.Minute

	defaultDataDogAgentHost = "localhost"
	defaultDataDogAgentPort = "8126"
)

// setupTelemetry routes the go-metrics calls of the pool and the block
// builder to an in-memory sink and to the prometheus registry
func (s *Server) setupTelemetry() error {
	inm := metrics.NewInmemSink(inmemInterval, inmemRetention)
	metrics.DefaultInmemSignal(inm)

	promSink, err := prometheus.NewPrometheusSinkFrom(prometheus.PrometheusOpts{
		Name:       serviceName + "_prometheus_sink",
		Expiration: 0,
	})
	if err != nil {
		return err
	}

	metricsConf := metrics.DefaultConfig(serviceName)
	metricsConf.EnableHostname = false
	metricsConf.EnableRuntimeMetrics = true

	if _, err := metrics.NewGlobal(metricsConf, metrics.FanoutSink{inm, promSink}); err != nil {
		return err
	}

	if pool := s.config.TxPool; pool != nil {
		metrics.SetGauge([]string{"txpool", "max_txs"}, float32(pool.MaxTxs))
		metrics.SetGauge([]string{"txpool", "max_bytes"}, float32(pool.MaxBytes))
	}

	return nil
}

// startPrometheusServer serves /metrics from the default registry
func (s *Server) startPrometheusServer(listenAddr *net.TCPAddr) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              listenAddr.String(),
		Handler:           mux,
		ReadHeaderTimeout: 60 * time.Second,
	}

	go func() {
		s.logger.Info("Prometheus server started", "addr", listenAddr.String())

		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Prometheus HTTP server ListenAndServe", "err", err)
		}
	}()

	return srv
}

// dataDogAgentAddr reads the agent address from DD_AGENT_HOST and
// DD_TRACE_AGENT_PORT
func dataDogAgentAddr(getenv func(string) string) string {
	host, port := defaultDataDogAgentHost, defaultDataDogAgentPort

	if v := getenv("DD_AGENT_HOST"); v != "" {
		host = v
	}

	if v := getenv("DD_TRACE_AGENT_PORT"); v != "" {
		port = v
	}

	return net.JoinHostPort(host, port)
}

// enableDataDogProfiler starts the DataDog profiler and tracer when
// DD_PROFILING_ENABLED is set
func (s *Server) enableDataDogProfiler() error {
	if os.Getenv("DD_PROFILING_ENABLED") == "" {
		s.logger.Debug("DataDog profiler disabled, set DD_PROFILING_ENABLED env var to enable it.")

		return nil
	}

	agentAddr := dataDogAgentAddr(os.Getenv)

	if err := profiler.Start(
		profiler.WithService(serviceName),
		profiler.WithVersion(version.Version),
		profiler.WithProfileTypes(
			profiler.CPUProfile,
			profiler.HeapProfile,
			// the pool is lock bound, contention matters most
			profiler.BlockProfile,
			profiler.MutexProfile,
			profiler.GoroutineProfile,
		),
		profiler.WithAgentAddr(agentAddr),
	); err != nil {
		return fmt.Errorf("could not start datadog profiler: %w", err)
	}

	tracer.Start(
		tracer.WithService(serviceName),
		tracer.WithServiceVersion(version.Version),
		tracer.WithAgentAddr(agentAddr),
	)

	s.profilerEnabled = true
	s.logger.Info("DataDog profiler started", "agent", agentAddr)

	return nil
}

func (s *Server) closeDataDogProfiler() {
	if !s.profilerEnabled {
		return
	}

	s.logger.Debug("closing DataDog profiler")
	profiler.Stop()

	s.logger.Debug("closing DataDog tracer")
	tracer.Stop()
}
