package webchat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calder-ai/lead-qualification-platform/internal/conversation"
	"github.com/calder-ai/lead-qualification-platform/pkg/logging"
)

// mockService tracks known sessions and echoes turns.
type mockService struct {
	sessions map[string][]conversation.Message
	starts   []conversation.StartRequest
	messages []conversation.MessageRequest
}

func newMockService() *mockService {
	return &mockService{sessions: make(map[string][]conversation.Message)}
}

func (m *mockService) StartConversation(_ context.Context, req conversation.StartRequest) (*conversation.Response, error) {
	m.starts = append(m.starts, req)
	m.sessions[req.SessionID] = []conversation.Message{
		{Role: "user", Content: req.Intro},
		{Role: "assistant", Content: "Welcome! " + req.Intro},
	}
	return &conversation.Response{
		SessionID: req.SessionID,
		Message:   "Welcome! " + req.Intro,
		Stage:     conversation.StageIntake,
	}, nil
}

func (m *mockService) ProcessMessage(_ context.Context, req conversation.MessageRequest) (*conversation.Response, error) {
	if _, ok := m.sessions[req.SessionID]; !ok {
		return nil, fmt.Errorf("%w: %s", conversation.ErrUnknownSession, req.SessionID)
	}
	m.messages = append(m.messages, req)
	return &conversation.Response{
		SessionID: req.SessionID,
		Message:   "Echo: " + req.Message,
		Stage:     conversation.StageClassifying,
	}, nil
}

func (m *mockService) GetHistory(_ context.Context, sessionID string) ([]conversation.Message, error) {
	msgs, ok := m.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", conversation.ErrUnknownSession, sessionID)
	}
	return msgs, nil
}

func (m *mockService) Reset(_ context.Context, sessionID string) error {
	delete(m.sessions, sessionID)
	return nil
}

func TestGenerateSessionID(t *testing.T) {
	s1 := generateSessionID()
	s2 := generateSessionID()
	assert.NotEmpty(t, s1)
	assert.NotEqual(t, s1, s2)
	assert.True(t, strings.HasPrefix(s1, "conv_"))
}

func TestHandleMessage_NewSession(t *testing.T) {
	svc := newMockService()
	h := NewHandler(svc, []byte("// widget"), logging.New("error"))

	body := `{"session_id":"sess1","text":"Hello"}`
	req := httptest.NewRequest(http.MethodPost, "/chat/message", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.HandleMessage(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "sess1", resp["session_id"])
	assert.Equal(t, "Welcome! Hello", resp["message"])

	// First message for an unknown session opens it.
	require.Len(t, svc.starts, 1)
	assert.Equal(t, "sess1", svc.starts[0].SessionID)
	assert.Equal(t, "Hello", svc.starts[0].Intro)
	assert.Equal(t, sourceWebChat, svc.starts[0].Source)
}

func TestHandleMessage_ExistingSession(t *testing.T) {
	svc := newMockService()
	svc.sessions["sess1"] = []conversation.Message{{Role: "user", Content: "earlier"}}
	h := NewHandler(svc, nil, logging.New("error"))

	body := `{"session_id":"sess1","text":"Second message"}`
	req := httptest.NewRequest(http.MethodPost, "/chat/message", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.HandleMessage(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Empty(t, svc.starts)
	require.Len(t, svc.messages, 1)
	assert.Equal(t, "Second message", svc.messages[0].Message)
}

func TestHandleMessage_MissingText(t *testing.T) {
	h := NewHandler(newMockService(), nil, logging.New("error"))

	body := `{"session_id":"sess1","text":"  "}`
	req := httptest.NewRequest(http.MethodPost, "/chat/message", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.HandleMessage(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleMessage_GeneratesSessionID(t *testing.T) {
	h := NewHandler(newMockService(), nil, logging.New("error"))

	body := `{"text":"Hi"}`
	req := httptest.NewRequest(http.MethodPost, "/chat/message", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.HandleMessage(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["session_id"])
}

func TestHandleHistory(t *testing.T) {
	svc := newMockService()
	svc.sessions["sess1"] = []conversation.Message{
		{Role: "user", Content: "Hello"},
		{Role: "assistant", Content: "Hi there!"},
	}
	h := NewHandler(svc, nil, logging.New("error"))

	req := httptest.NewRequest(http.MethodGet, "/chat/history?session=sess1", nil)
	w := httptest.NewRecorder()

	h.HandleHistory(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Messages []HistoryMessage `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, "user", resp.Messages[0].Role)
	assert.Equal(t, "Hello", resp.Messages[0].Text)
	assert.Equal(t, "assistant", resp.Messages[1].Role)
}

func TestHandleHistory_MissingParams(t *testing.T) {
	h := NewHandler(newMockService(), nil, logging.New("error"))

	req := httptest.NewRequest(http.MethodGet, "/chat/history", nil)
	w := httptest.NewRecorder()

	h.HandleHistory(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleHistory_UnknownSession(t *testing.T) {
	h := NewHandler(newMockService(), nil, logging.New("error"))

	req := httptest.NewRequest(http.MethodGet, "/chat/history?session=nope", nil)
	w := httptest.NewRecorder()

	h.HandleHistory(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Messages []HistoryMessage `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Messages)
}

func TestHandleWidgetJS(t *testing.T) {
	widgetContent := []byte("(function(){ /* widget */ })();")
	h := NewHandler(newMockService(), widgetContent, logging.New("error"))

	req := httptest.NewRequest(http.MethodGet, "/chat/widget.js", nil)
	w := httptest.NewRecorder()

	h.HandleWidgetJS(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/javascript", w.Header().Get("Content-Type"))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, string(widgetContent), w.Body.String())
}
