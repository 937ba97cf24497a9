package http

import (
	"encoding/json"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"wellness-quiz/internal/app"
)

// HistoryHandler serves the result log: GET lists it, DELETE clears it.
// mu is shared with the websocket handler so a clear never interleaves with
// a completion's append.
type HistoryHandler struct {
	history *app.History
	logger  *zap.Logger
	mu      *sync.Mutex
}

func NewHistoryHandler(history *app.History, logger *zap.Logger, mu *sync.Mutex) *HistoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if mu == nil {
		mu = &sync.Mutex{}
	}
	return &HistoryHandler{history: history, logger: logger, mu: mu}
}

func (h *HistoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()
	switch r.Method {
	case http.MethodGet:
		results, err := h.history.List(r.Context())
		if err != nil {
			h.logger.Error("history load failed", zap.Error(err))
			http.Error(w, "could not load history", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(results)
	case http.MethodDelete:
		if err := h.history.Clear(r.Context()); err != nil {
			h.logger.Error("history clear failed", zap.Error(err))
			http.Error(w, "could not save history", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.Header().Set("Allow", "GET, DELETE")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// NewMux wires the health check, history and websocket endpoints around one
// session lock.
func NewMux(service *app.QuizService, logger *zap.Logger) *http.ServeMux {
	mu := &sync.Mutex{}
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.Handle("/history", NewHistoryHandler(service.History(), logger, mu))
	mux.HandleFunc("/ws", NewWSHandler(service, logger, mu).ServeWS)
	return mux
}
