// Package server exposes serve mode: periodic self-triggered captures
// streamed to websocket clients as transport frames, plus prometheus
// metrics and a health endpoint.
package server

import (
	"bytes"
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vibelab/vibrascope/internal/app"
	"github.com/vibelab/vibrascope/pkg/acquisition"
	"github.com/vibelab/vibrascope/pkg/capture"
	"github.com/vibelab/vibrascope/pkg/transport"
)

// Metrics holds the prometheus collectors for serve mode
type Metrics struct {
	capturesTotal  prometheus.Counter
	captureErrors  prometheus.Counter
	storeRecords   prometheus.Gauge
	storeUsedBytes prometheus.Gauge
	wsClients      prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		capturesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "vibrascope_captures_total",
			Help: "Completed acquisition runs since start",
		}),
		captureErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "vibrascope_capture_errors_total",
			Help: "Acquisition runs that failed",
		}),
		storeRecords: factory.NewGauge(prometheus.GaugeOpts{
			Name: "vibrascope_store_records",
			Help: "Records currently held in the circular log",
		}),
		storeUsedBytes: factory.NewGauge(prometheus.GaugeOpts{
			Name: "vibrascope_store_used_bytes",
			Help: "Bytes occupied by live records",
		}),
		wsClients: factory.NewGauge(prometheus.GaugeOpts{
			Name: "vibrascope_ws_clients",
			Help: "Connected websocket clients",
		}),
	}
}

// Server runs the HTTP surface and the periodic capture loop
type Server struct {
	session  *app.Session
	sampler  acquisition.Sampler
	registry *prometheus.Registry
	metrics  *Metrics
	upgrader websocket.Upgrader
	logger   logging.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// New creates a server over the session. sampler supplies the signal
// for the periodic self-triggered captures.
func New(session *app.Session, sampler acquisition.Sampler) *Server {
	registry := prometheus.NewRegistry()
	return &Server{
		session:  session,
		sampler:  sampler,
		registry: registry,
		metrics:  newMetrics(registry),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		clients: make(map[*websocket.Conn]struct{}),
		logger: logging.WithFields(logging.Fields{
			"component": "server",
		}),
	}
}

// Run serves until ctx is canceled
func (s *Server) Run(ctx context.Context, listen string, interval time.Duration) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})

	httpServer := &http.Server{
		Addr:    listen,
		Handler: mux,
	}

	go s.captureLoop(ctx, interval)

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	s.logger.Info("Server listening", logging.Fields{
		"addr":             listen,
		"capture_interval": interval.String(),
	})

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// captureLoop performs a self-triggered capture every interval and
// streams each completed record to connected clients
func (s *Server) captureLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rec, _, err := s.session.RequestCapture(ctx, s.sampler, nil)
			if err != nil {
				s.metrics.captureErrors.Inc()
				s.logger.Error(err, "Periodic capture failed")
				continue
			}
			s.metrics.capturesTotal.Inc()

			st := s.session.StoreStats()
			s.metrics.storeRecords.Set(float64(st.Count))
			s.metrics.storeUsedBytes.Set(float64(st.UsedBytes))

			s.broadcast(rec)
		}
	}
}

// broadcast sends one record's full frame stream to every client as a
// single text message. Slow or broken clients are dropped.
func (s *Server) broadcast(rec *capture.Record) {
	var buf bytes.Buffer
	if err := transport.NewEncoder(&buf).EncodeRecord(rec); err != nil {
		s.logger.Error(err, "Encoding record for broadcast")
		return
	}
	payload := buf.Bytes()

	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.clients {
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			s.logger.Debug("Dropping websocket client", logging.Fields{
				"remote": conn.RemoteAddr().String(),
				"error":  err.Error(),
			})
			conn.Close()
			delete(s.clients, conn)
			s.metrics.wsClients.Dec()
		}
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error(err, "Websocket upgrade failed")
		return
	}

	s.mu.Lock()
	s.clients[conn] = struct{}{}
	s.mu.Unlock()
	s.metrics.wsClients.Inc()

	s.logger.Debug("Websocket client connected", logging.Fields{
		"remote": conn.RemoteAddr().String(),
	})

	// Reader loop exists only to observe the close handshake.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.mu.Lock()
				if _, ok := s.clients[conn]; ok {
					delete(s.clients, conn)
					s.metrics.wsClients.Dec()
				}
				s.mu.Unlock()
				conn.Close()
				return
			}
		}
	}()
}
