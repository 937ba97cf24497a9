package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/goleak"

	"wellness-quiz/internal/app"
	"wellness-quiz/internal/catalog"
	"wellness-quiz/internal/domain"
	"wellness-quiz/internal/infra/memory"
)

type wireMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func newTestServer(t *testing.T) (*httptest.Server, *app.QuizService) {
	t.Helper()
	return newTestServerWithStorage(t, memory.NewStorage())
}

func newTestServerWithStorage(t *testing.T, storage app.Storage) (*httptest.Server, *app.QuizService) {
	t.Helper()
	c, err := catalog.New([]domain.Question{
		{Key: catalog.KeyActivityLevel, Kind: domain.KindSingleChoice, Options: []string{catalog.ActivitySedentary, catalog.ActivityVeryActive}},
		{Key: "injuries", Kind: domain.KindMultiChoice, Options: []string{"Knee", "None"}},
		{Key: catalog.KeyAge, Kind: domain.KindNumeric},
		{Key: catalog.KeyGoal, Kind: domain.KindSingleChoice, Options: []string{catalog.GoalMaintain, catalog.GoalGain}},
		{Key: catalog.KeyHeight, Kind: domain.KindNumeric},
		{Key: catalog.KeyWeight, Kind: domain.KindNumeric},
	})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	service := app.NewQuizService(c, storage, nil)
	server := httptest.NewServer(NewMux(service, nil))
	return server, service
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) wireMessage {
	t.Helper()
	var msg wireMessage
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s (%s)", expect, msg.Type, msg.Payload)
	}
	return msg
}

func send(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	if err := conn.WriteJSON(map[string]any{"type": typ, "payload": payload}); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

func TestWebSocketQuizFlow(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	defer http.DefaultClient.CloseIdleConnections()

	server, _ := newTestServer(t)
	defer server.Close()
	conn := dial(t, server)
	defer conn.Close()

	var state statePayload
	if err := json.Unmarshal(readNext(conn, t, "state").Payload, &state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if state.StepIndex != 0 || state.Question.Key != catalog.KeyActivityLevel {
		t.Fatalf("unexpected initial state %+v", state)
	}

	// Missing answer is rejected and the step does not move.
	send(t, conn, "answer", map[string]any{"value": ""})
	var errPayload errorPayload
	if err := json.Unmarshal(readNext(conn, t, "error").Payload, &errPayload); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if errPayload.Message != domain.AnswerRequired || errPayload.Key != catalog.KeyActivityLevel {
		t.Fatalf("unexpected error payload %+v", errPayload)
	}
	readNext(conn, t, "state")

	send(t, conn, "answer", map[string]any{"value": catalog.ActivityVeryActive})
	readNext(conn, t, "state")

	send(t, conn, "toggle", map[string]any{"option": "Knee"})
	readNext(conn, t, "state")
	send(t, conn, "answer", map[string]any{"value": []string{"Knee"}})
	readNext(conn, t, "state")

	for _, v := range []any{30, catalog.GoalGain, 180} {
		send(t, conn, "answer", map[string]any{"value": v})
		readNext(conn, t, "state")
	}

	send(t, conn, "answer", map[string]any{"value": 80})
	if err := json.Unmarshal(readNext(conn, t, "state").Payload, &state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if !state.Complete {
		t.Fatalf("expected complete state, got %+v", state)
	}
	var res resultPayload
	if err := json.Unmarshal(readNext(conn, t, "result").Payload, &res); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if res.Result.ID == "" || res.Report.GoalCalories != res.Report.DailyCalories+500 {
		t.Fatalf("unexpected result %+v", res)
	}

	send(t, conn, "back", nil)
	readNext(conn, t, "error")

	resp, err := http.Get(server.URL + "/history")
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	defer resp.Body.Close()
	var history []domain.QuizResult
	if err := json.NewDecoder(resp.Body).Decode(&history); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(history) != 1 || history[0].ID != res.Result.ID {
		t.Fatalf("expected recorded result in history, got %+v", history)
	}
}

func TestHistoryDelete(t *testing.T) {
	server, service := newTestServer(t)
	defer server.Close()

	if _, err := service.History().Append(context.Background(), domain.QuizResult{ID: "x"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	req, _ := http.NewRequest(http.MethodDelete, server.URL+"/history", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	list, _ := service.History().List(context.Background())
	if len(list) != 0 {
		t.Fatalf("expected empty history, got %d", len(list))
	}
}

// blockingStorage parks the first history read after armed is set until release closes.
type blockingStorage struct {
	*memory.Storage
	armed   atomic.Bool
	entered chan struct{}
	release chan struct{}
}

func (s *blockingStorage) Load(ctx context.Context, record string) ([]byte, error) {
	if record == domain.RecordHistory && s.armed.CompareAndSwap(true, false) {
		close(s.entered)
		<-s.release
	}
	return s.Storage.Load(ctx, record)
}

func TestHistoryClearWaitsForCompletion(t *testing.T) {
	store := &blockingStorage{
		Storage: memory.NewStorage(),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	server, service := newTestServerWithStorage(t, store)
	defer server.Close()

	if _, err := service.History().Append(context.Background(), domain.QuizResult{ID: "earlier"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	conn := dial(t, server)
	defer conn.Close()
	readNext(conn, t, "state")
	for _, v := range []any{catalog.ActivitySedentary, []string{"None"}, 30, catalog.GoalMaintain, 175} {
		send(t, conn, "answer", map[string]any{"value": v})
		readNext(conn, t, "state")
	}

	store.armed.Store(true)
	send(t, conn, "answer", map[string]any{"value": 70})
	select {
	case <-store.entered:
	case <-time.After(5 * time.Second):
		t.Fatalf("completion never reached the history log")
	}

	deleted := make(chan int, 1)
	go func() {
		req, _ := http.NewRequest(http.MethodDelete, server.URL+"/history", nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			deleted <- 0
			return
		}
		resp.Body.Close()
		deleted <- resp.StatusCode
	}()

	select {
	case <-deleted:
		close(store.release)
		t.Fatalf("clear finished while a completion was appending")
	case <-time.After(100 * time.Millisecond):
	}
	close(store.release)

	readNext(conn, t, "state")
	readNext(conn, t, "result")
	select {
	case code := <-deleted:
		if code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", code)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("clear never finished")
	}

	list, err := service.History().List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected the clear to win over the earlier append, got %d entries", len(list))
	}
}
