package cmd

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/YuminosukeSato/vfdt/pkg/errors"
	"github.com/YuminosukeSato/vfdt/pkg/log"
	"github.com/YuminosukeSato/vfdt/sklearn/tree"
)

type statsResponse struct {
	ID         string         `json:"id"`
	Iterations int            `json:"iterations"`
	Samples    float64        `json:"samples"`
	Splits     int            `json:"splits"`
	Tree       tree.TreeStats `json:"tree"`
}

// newTelemetryRegistry はプロセス情報と学習メトリクスを持つレジストリを作る
func newTelemetryRegistry() (*prometheus.Registry, *tree.Metrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg, tree.NewMetrics(reg)
}

func makeTelemetryRoutes(reg *prometheus.Registry, ht *tree.HoeffdingTreeClassifier) *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	r.HandleFunc("/tree", newTreeHandler(ht)).Methods(http.MethodGet)
	r.HandleFunc("/stats", newStatsHandler(ht)).Methods(http.MethodGet)
	return r
}

func newTreeHandler(ht *tree.HoeffdingTreeClassifier) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		desc := ht.Description()
		if desc == "" {
			http.Error(w, "model is not fitted yet", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, desc)
	}
}

func newStatsHandler(ht *tree.HoeffdingTreeClassifier) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := statsResponse{
			ID:         ht.ID(),
			Iterations: ht.NIterations(),
			Samples:    ht.SamplesSeen(),
			Splits:     ht.NumSplits(),
			Tree:       ht.Stats(),
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			http.Error(w, "failed to encode response", http.StatusInternalServerError)
		}
	}
}

// telemetryServer serves the metrics and model endpoints while training runs.
type telemetryServer struct {
	srv    *http.Server
	ln     net.Listener
	logger log.Logger
}

func startTelemetryServer(addr string, handler http.Handler) (*telemetryServer, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "listening on %s", addr)
	}
	s := &telemetryServer{
		srv: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
		ln:     ln,
		logger: log.GetLoggerWithName("telemetry"),
	}
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("telemetry server stopped", err)
		}
	}()
	s.logger.Info("serving telemetry", "addr", ln.Addr().String())
	return s, nil
}

// Addr returns the bound address, useful when addr used port 0.
func (s *telemetryServer) Addr() string {
	return s.ln.Addr().String()
}

func (s *telemetryServer) shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "shutting down telemetry server")
	}
	return nil
}
