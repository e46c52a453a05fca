package stream

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // Non-browser clients don't send Origin
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return u.Host == r.Host
	},
}

func extractIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Routes serves the websocket endpoint at /ws and a JSON summary of the
// last tick at /stats.
func Routes(hub *Hub) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		if hub.conns.Load() >= maxTotalConns {
			http.Error(w, "too many connections", http.StatusServiceUnavailable)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			hub.logger.Printf("upgrade error: %v", err)
			return
		}

		hub.conns.Add(1)
		client := NewClient(hub, conn, extractIP(r))
		if !hub.Register(client) {
			hub.conns.Add(-1)
			conn.Close()
			return
		}

		go client.WritePump()
		go client.ReadPump()
	})

	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(hub.Stats()); err != nil {
			hub.logger.Printf("stats: %v", err)
		}
	})

	return mux
}

// Serve runs hub and an HTTP server on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, hub *Hub) error {
	srv := &http.Server{Addr: addr, Handler: Routes(hub), ReadHeaderTimeout: 5 * time.Second}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	hubErr := make(chan error, 1)
	go func() { hubErr <- hub.Run(ctx) }()

	go func() {
		<-ctx.Done()
		hub.logger.Printf("shutting down with %d clients", hub.ClientCount())
		shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
		defer done()
		srv.Shutdown(shutdownCtx)
	}()

	hub.logger.Printf("listening on %s", addr)
	err := srv.ListenAndServe()
	cancel()
	<-hubErr
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
