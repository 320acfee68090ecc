package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rehiy/chat-led/agent"
	"github.com/rehiy/chat-led/device"
)

type stubTransport struct {
	reply string
	calls int
}

func (s *stubTransport) Execute(cmd device.Command) (string, time.Duration, error) {
	s.calls++
	return s.reply, 3 * time.Millisecond, nil
}

type stubResolver struct{}

func (stubResolver) Resolve(ctx context.Context, utterance string, recent []agent.Turn) (device.Command, error) {
	set := device.NewCommandSet(device.DefaultGrammar())
	if strings.Contains(strings.ToLower(utterance), "on") {
		return set.ResolveByName(device.CmdTurnOn)
	}
	return device.Command{}, agent.ErrNoMatch
}

func postChat(t *testing.T, h *ChatHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	h.HandleChat(rec, req)
	return rec
}

func TestHandleChatSuccess(t *testing.T) {
	transport := &stubTransport{reply: "LED ON"}
	h := NewChatHandler(agent.NewDispatchAgent(transport, stubResolver{}))

	rec := postChat(t, h, `{"message": "turn on the led"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, agent.StatusSuccess, resp["status"])
	assert.Equal(t, "LED ON", resp["rawReply"])
	assert.Equal(t, 1, transport.calls)
}

func TestHandleChatNoMatch(t *testing.T) {
	transport := &stubTransport{}
	h := NewChatHandler(agent.NewDispatchAgent(transport, stubResolver{}))

	rec := postChat(t, h, `{"message": "what day is it"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, agent.StatusNoMatch, resp["status"])
	assert.Zero(t, transport.calls)
}

func TestHandleChatBadRequest(t *testing.T) {
	h := NewChatHandler(agent.NewDispatchAgent(&stubTransport{}, stubResolver{}))

	rec := postChat(t, h, `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postChat(t, h, `{"message": "   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
