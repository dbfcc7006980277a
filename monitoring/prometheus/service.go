// Package prometheus serves node metrics and health over HTTP.
package prometheus

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"reflect"
	"runtime/pprof"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("prefix", "prometheus")

// StatusSource reports the health of the services of a node.
type StatusSource interface {
	Statuses() map[reflect.Type]error
}

// Service provides Prometheus metrics via the /metrics route and service health via /healthz.
type Service struct {
	server   *http.Server
	statuses StatusSource

	lock       sync.RWMutex
	failStatus error
}

// NewService sets up a metrics endpoint at addr, a host:port pair. An empty host listens on
// every interface. statuses may be nil, in which case /healthz always reports OK.
func NewService(addr string, statuses StatusSource) *Service {
	s := &Service{statuses: statuses}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", s.healthzHandler)
	mux.HandleFunc("/goroutinez", s.goroutinezHandler)
	s.server = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: time.Second}
	return s
}

func (s *Service) healthzHandler(w http.ResponseWriter, _ *http.Request) {
	var lines []string
	hasError := false
	if s.statuses != nil {
		for k, v := range s.statuses.Statuses() {
			status := "OK"
			if v != nil {
				hasError = true
				status = "ERROR " + v.Error()
			}
			lines = append(lines, fmt.Sprintf("%s: %s\n", k, status))
		}
	}
	sort.Strings(lines)
	var buf bytes.Buffer
	for _, l := range lines {
		buf.WriteString(l)
	}
	if hasError {
		w.WriteHeader(http.StatusInternalServerError)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.WithError(err).Error("Could not write healthz body")
	}
}

func (s *Service) goroutinezHandler(w http.ResponseWriter, _ *http.Request) {
	if err := pprof.Lookup("goroutine").WriteTo(w, 2); err != nil {
		log.WithError(err).Error("Could not write goroutine dump")
	}
}

// Start serving in the background.
func (s *Service) Start() {
	log.WithField("endpoint", s.server.Addr).Info("Starting service")
	go func() {
		err := s.server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.WithError(err).Errorf("Could not listen to host:port %s", s.server.Addr)
			s.lock.Lock()
			s.failStatus = err
			s.lock.Unlock()
		}
	}()
}

// Stop the service gracefully.
func (s *Service) Stop() error {
	log.Info("Stopping service")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Status returns the error that stopped the listener, if any.
func (s *Service) Status() error {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.failStatus
}
