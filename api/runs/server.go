package runs

import (
	"context"
	"net/http"
	"time"

	"github.com/ankit-iitb/sandstorm-simulator/infra/logger"
)

// Config holds the HTTP API settings. An empty Addr disables the API.
type Config struct {
	Addr string `json:"addr"`
}

// SetDefaults applies fallback values for optional fields.
func (c *Config) SetDefaults() {}

// Validate checks the configuration. Bind failures surface at startup
// instead, so any non-empty address is accepted here.
func (c Config) Validate() error { return nil }

// StartServer serves the run history API on addr and blocks until the
// context is canceled.
func StartServer(ctx context.Context, addr string, store Store, log logger.Logger) error {
	if log == nil {
		log = logger.Nop{}
	}
	mux := http.NewServeMux()
	h := NewHandler(store)
	mux.Handle("/api/runs", h)
	mux.Handle("/api/runs/", h)
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warnf("api server shutdown: %v", err)
		}
	}()
	log.Infof("run history api on %s/api/runs", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
