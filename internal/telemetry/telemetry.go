// Package telemetry exposes the channel library's Prometheus metrics:
// frames crossed the wire, handshake latency, and per-direction nonce
// progress. It is off by default — call Enable once before any channel
// activity to register the collectors, and StartServer to expose /metrics.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	mu      sync.Mutex
	enabled bool

	framesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "canary_frames_total",
		Help: "Frames crossing the wire, by direction and carrier kind.",
	}, []string{"direction", "carrier"})

	bytesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "canary_bytes_total",
		Help: "Payload bytes crossing the wire, by direction and carrier kind.",
	}, []string{"direction", "carrier"})

	handshakeDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "canary_handshake_duration_seconds",
		Help:    "Time to complete election plus the Noise_NN exchange.",
		Buckets: prometheus.DefBuckets,
	}, []string{"carrier"})

	handshakeFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "canary_handshake_failures_total",
		Help: "Handshake attempts that did not complete, by failure reason.",
	}, []string{"carrier", "reason"})

	nonce = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "canary_cipher_nonce",
		Help: "Most recently observed per-direction AEAD nonce counter.",
	}, []string{"direction"})
)

// Enable registers the collectors with the default Prometheus registry.
// Calling it more than once is a no-op.
func Enable() {
	mu.Lock()
	defer mu.Unlock()
	if enabled {
		return
	}
	prometheus.MustRegister(framesTotal, bytesTotal, handshakeDuration, handshakeFailures, nonce)
	enabled = true
}

// StartServer runs a /metrics HTTP endpoint on addr until ctx is canceled.
func StartServer(ctx context.Context, addr string) error {
	if strings.TrimSpace(addr) == "" {
		return errors.New("empty metrics address")
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	err := srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}

func isEnabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// ObserveFrame records one frame crossing the wire in the given direction
// ("send" or "receive") over the named carrier kind ("tcp", "unix", "wss").
func ObserveFrame(direction, carrier string, n int) {
	if !isEnabled() {
		return
	}
	framesTotal.WithLabelValues(direction, carrier).Inc()
	bytesTotal.WithLabelValues(direction, carrier).Add(float64(n))
}

// ObserveHandshake records a completed handshake's wall-clock duration.
func ObserveHandshake(carrier string, d time.Duration) {
	if !isEnabled() {
		return
	}
	handshakeDuration.WithLabelValues(carrier).Observe(d.Seconds())
}

// ObserveHandshakeFailure records a handshake that did not complete.
func ObserveHandshakeFailure(carrier string, err error) {
	if !isEnabled() {
		return
	}
	handshakeFailures.WithLabelValues(carrier, failureReason(err)).Inc()
}

// SetNonce records the nonce counter of the given direction, i.e. the next
// nonce value that direction will use.
func SetNonce(direction string, n uint32) {
	if !isEnabled() {
		return
	}
	nonce.WithLabelValues(direction).Set(float64(n))
}

func failureReason(err error) string {
	if err == nil {
		return "unknown"
	}
	e := strings.ToLower(err.Error())
	switch {
	case strings.Contains(e, "timeout") || strings.Contains(e, "deadline"):
		return "timeout"
	case strings.Contains(e, "tls") || strings.Contains(e, "x509") || strings.Contains(e, "certificate"):
		return "tls"
	case strings.Contains(e, "dns") || strings.Contains(e, "no such host"):
		return "dns"
	case strings.Contains(e, "refused"):
		return "refused"
	default:
		return "other"
	}
}
