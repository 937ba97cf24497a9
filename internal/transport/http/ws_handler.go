package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"wellness-quiz/internal/app"
	"wellness-quiz/internal/domain"
	"wellness-quiz/internal/metrics"
)

// WSHandler exposes the quiz session to a browser client. There is one session,
// so every request is serialized through mu, which NewMux shares with the
// history endpoint.
type WSHandler struct {
	service  *app.QuizService
	logger   *zap.Logger
	upgrader websocket.Upgrader
	mu       *sync.Mutex
}

// NewWSHandler builds the handler; a nil mu gets a private mutex.
func NewWSHandler(service *app.QuizService, logger *zap.Logger, mu *sync.Mutex) *WSHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if mu == nil {
		mu = &sync.Mutex{}
	}
	return &WSHandler{
		service: service,
		logger:  logger,
		mu:      mu,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	Value json.RawMessage `json:"value"`
}

type togglePayload struct {
	Key    string `json:"key"`
	Option string `json:"option"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
	Key     string `json:"key,omitempty"`
}

type statePayload struct {
	Question  domain.Question `json:"question"`
	StepIndex int             `json:"stepIndex"`
	Progress  float64         `json:"progress"`
	Answer    any             `json:"answer,omitempty"`
	Last      bool            `json:"last"`
	Complete  bool            `json:"complete"`
}

type resultPayload struct {
	Report metrics.Report    `json:"report"`
	Result domain.QuizResult `json:"result"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the quiz use cases.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	if err := conn.WriteJSON(h.snapshot()); err != nil {
		return
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		for _, msg := range h.handle(r, inbound) {
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Warn("ws write error", zap.Error(err))
				return
			}
		}
	}
}

func (h *WSHandler) handle(r *http.Request, inbound inboundMessage) []any {
	h.mu.Lock()
	defer h.mu.Unlock()
	ctx := r.Context()

	switch inbound.Type {
	case "state":
		return []any{h.snapshotLocked()}
	case "answer":
		var payload answerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return []any{errorMessage(errors.New("invalid answer payload"))}
		}
		value, err := domain.DecodeAnswer(payload.Value)
		if err != nil {
			return []any{errorMessage(errors.New("invalid answer value"))}
		}
		out, err := h.service.SubmitAndAdvance(ctx, value)
		if err != nil {
			return []any{errorMessage(err), h.snapshotLocked()}
		}
		if !out.Completed {
			return []any{h.snapshotLocked()}
		}
		report, result, err := h.service.ComputeAndRecord(ctx, out.Answers)
		if err != nil {
			return []any{errorMessage(err), h.snapshotLocked()}
		}
		return []any{
			h.snapshotLocked(),
			outboundMessage[resultPayload]{Type: "result", Payload: resultPayload{Report: report, Result: result}},
		}
	case "toggle":
		var payload togglePayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.Option == "" {
			return []any{errorMessage(errors.New("invalid toggle payload"))}
		}
		if err := h.service.Toggle(ctx, payload.Key, payload.Option); err != nil {
			return []any{errorMessage(err)}
		}
		return []any{h.snapshotLocked()}
	case "back":
		if err := h.service.GoBack(ctx); err != nil {
			return []any{errorMessage(err)}
		}
		return []any{h.snapshotLocked()}
	case "reset":
		if err := h.service.Reset(ctx); err != nil {
			return []any{errorMessage(err)}
		}
		return []any{h.snapshotLocked()}
	default:
		return []any{errorMessage(errors.New("unsupported message type"))}
	}
}

func (h *WSHandler) snapshot() outboundMessage[statePayload] {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snapshotLocked()
}

func (h *WSHandler) snapshotLocked() outboundMessage[statePayload] {
	q, _ := h.service.CurrentQuestion()
	state := statePayload{
		Question:  q,
		StepIndex: h.service.State().CurrentStepIndex,
		Progress:  h.service.ProgressFraction(),
		Last:      h.service.IsLastStep(),
		Complete:  h.service.Complete(),
	}
	if a, ok := h.service.CurrentAnswer(); ok {
		state.Answer = a
	}
	return outboundMessage[statePayload]{Type: "state", Payload: state}
}

func errorMessage(err error) outboundMessage[errorPayload] {
	payload := errorPayload{Message: err.Error()}
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		payload = errorPayload{Message: verr.Reason, Key: verr.Key}
	}
	var perr *domain.PersistenceError
	if errors.As(err, &perr) {
		payload.Message = "could not save your answers, please try again"
	}
	return outboundMessage[errorPayload]{Type: "error", Payload: payload}
}
