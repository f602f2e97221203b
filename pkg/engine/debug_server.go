package engine

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// debugState is what the debug server serves. It is rebuilt on the frame
// goroutine after every frame and swapped in atomically, so HTTP handlers
// never touch live widget state.
type debugState struct {
	Tree  TreeSnapshot
	Stats Stats
}

// DebugServer serves JSON snapshots of one runtime over HTTP:
// /tree, /stats, /frames and /health.
type DebugServer struct {
	server   *http.Server
	listener net.Listener
	trace    *frameTrace
	state    atomic.Pointer[debugState]
	log      *zap.Logger
	once     sync.Once
}

// StartDebugServer listens on addr (":0" picks a free port) and serves the
// runtime's snapshots until Close or Destroy.
func (r *Runtime) StartDebugServer(addr string) (*DebugServer, error) {
	if r.destroyed {
		return nil, fmt.Errorf("start debug server: runtime destroyed")
	}
	if r.debug != nil {
		return r.debug, nil
	}
	// Bind first to fail fast on port conflicts.
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("debug server listen: %w", err)
	}

	d := &DebugServer{listener: listener, trace: r.trace, log: r.log.Named("debug")}
	mux := http.NewServeMux()
	mux.HandleFunc("/tree", d.handleTree)
	mux.HandleFunc("/stats", d.handleStats)
	mux.HandleFunc("/frames", d.handleFrames)
	mux.HandleFunc("/health", handleHealth)
	d.server = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	d.publish(r)
	r.debug = d

	go func() {
		if err := d.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			d.log.Error("debug server stopped", zap.Error(err))
		}
	}()
	d.log.Info("debug server listening", zap.String("addr", listener.Addr().String()))
	return d, nil
}

// Addr returns the bound address.
func (d *DebugServer) Addr() net.Addr {
	return d.listener.Addr()
}

// Close shuts the server down, waiting briefly for open requests.
func (d *DebugServer) Close() {
	d.once.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := d.server.Shutdown(ctx); err != nil {
			d.log.Warn("debug server shutdown", zap.Error(err))
		}
	})
}

func (d *DebugServer) publish(r *Runtime) {
	d.state.Store(&debugState{Tree: r.Snapshot(), Stats: r.Stats()})
}

func (d *DebugServer) handleTree(w http.ResponseWriter, req *http.Request) {
	state := d.state.Load()
	if state == nil || state.Tree.Root == nil {
		http.Error(w, "no widget tree", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, req, state.Tree)
}

func (d *DebugServer) handleStats(w http.ResponseWriter, req *http.Request) {
	state := d.state.Load()
	if state == nil {
		http.Error(w, "no frames yet", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, req, state.Stats)
}

// handleFrames returns the frame timeline. ?limit=N keeps the newest N
// samples.
func (d *DebugServer) handleFrames(w http.ResponseWriter, req *http.Request) {
	timeline := d.trace.timeline()
	if s := req.URL.Query().Get("limit"); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil || limit < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		if limit < len(timeline.Samples) {
			timeline.Samples = timeline.Samples[len(timeline.Samples)-limit:]
		}
	}
	writeJSON(w, req, timeline)
}

func handleHealth(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func writeJSON(w http.ResponseWriter, req *http.Request, v any) {
	if req.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	// Encode to a buffer first so errors can still set the status.
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		http.Error(w, fmt.Sprintf("json encode error: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}
