// Package http implements a core.Adapter fronted by a net/http POST
// handler, grounded on original_source/missive/adapters/wsgi.py: one POST
// per message, body is the raw message bytes, response reports whether the
// message was acked or nacked.
package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"

	"github.com/forgemsg/dispatch/core"
)

// Adapter collects acked/nacked state per request and exposes an
// http.Handler. It has no redelivery concept of its own — Nack simply
// changes the HTTP response.
type Adapter struct {
	mu       sync.Mutex
	resolved map[string]bool // message id (string) -> acked

	pc core.ProcessingContext
}

// Bind associates pc, the open ProcessingContext for this run, with the
// adapter. Call this once, before serving requests, typically from inside a
// Processor.Session callback.
func (a *Adapter) Bind(pc core.ProcessingContext) {
	a.pc = pc
}

// New builds an unbound Adapter; call Bind before using Handler.
func New() *Adapter {
	return &Adapter{resolved: make(map[string]bool)}
}

func (a *Adapter) Ack(_ context.Context, msg core.Message) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.resolved[msg.MessageID().String()] = true
	return nil
}

func (a *Adapter) Nack(_ context.Context, msg core.Message) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.resolved[msg.MessageID().String()] = false
	return nil
}

type response struct {
	Result string `json:"result"`
}

// Handler returns the net/http.Handler that accepts POST / with the raw
// message body, dispatches it, and reports ack/nack as JSON.
func (a *Adapter) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		buf, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "read body", http.StatusBadRequest)
			return
		}
		msg := core.NewRawMessage(buf)

		if a.pc == nil {
			http.Error(w, "adapter not bound to a session", http.StatusInternalServerError)
			return
		}

		dispatchErr := a.pc.Handle(r.Context(), msg)

		a.mu.Lock()
		acked, resolved := a.resolved[msg.MessageID().String()]
		a.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch {
		case dispatchErr != nil || (resolved && !acked):
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(response{Result: "nack"})
		case resolved && acked:
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(response{Result: "ack"})
		default:
			// dispatched without error, but the handler returned without
			// calling Ack or Nack; DLQ routing always acks, so it never
			// lands here.
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(response{Result: "ack"})
		}
	})
	return mux
}

var _ core.Adapter = (*Adapter)(nil)
