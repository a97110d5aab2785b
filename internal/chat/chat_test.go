package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flashcording/agent-service/internal/db"
	"github.com/flashcording/agent-service/internal/llm"
)

// memStore keeps conversations in memory, ordered by insertion.
type memStore struct {
	entries []db.ConversationEntry
}

func (s *memStore) AppendMessage(_ context.Context, userID uuid.UUID, sessionID, role, content, model string, tokens int) (*db.ConversationEntry, error) {
	entry := db.ConversationEntry{
		ID:        uuid.New(),
		UserID:    userID,
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		Model:     model,
		Tokens:    tokens,
		CreatedAt: time.Now(),
	}
	s.entries = append(s.entries, entry)
	return &entry, nil
}

func (s *memStore) GetConversation(_ context.Context, userID uuid.UUID, sessionID string) ([]db.ConversationEntry, error) {
	var out []db.ConversationEntry
	for _, e := range s.entries {
		if e.UserID == userID && e.SessionID == sessionID {
			out = append(out, e)
		}
	}
	return out, nil
}

// echoClient records the messages it was invoked with.
type echoClient struct {
	response string
	err      error
	gotModel string
	gotMsgs  []llm.Message
}

func (c *echoClient) Invoke(_ context.Context, model string, messages []llm.Message) (string, error) {
	c.gotModel = model
	c.gotMsgs = messages
	if c.err != nil {
		return "", c.err
	}
	return c.response, nil
}

func (c *echoClient) Close() error { return nil }

func TestSendSingleExchange(t *testing.T) {
	store := &memStore{}
	client := &echoClient{response: "Use a for loop."}
	adapter := New(store, client)

	userID := uuid.New()
	reply, err := adapter.Send(context.Background(), userID, "session-1", "How do I iterate a slice?", "gpt-4")
	require.NoError(t, err)
	assert.Equal(t, "Use a for loop.", reply.Response)
	assert.Equal(t, "session-1", reply.SessionID)

	// System instruction leads, then the persisted history.
	require.NotEmpty(t, client.gotMsgs)
	assert.Equal(t, llm.RoleSystem, client.gotMsgs[0].Role)
	assert.Equal(t, "You are a helpful AI coding assistant.", client.gotMsgs[0].Content)
	assert.Equal(t, llm.RoleUser, client.gotMsgs[1].Role)

	// Both turns are persisted, assistant with a token estimate.
	require.Len(t, store.entries, 2)
	assert.Equal(t, llm.RoleUser, store.entries[0].Role)
	assert.Equal(t, llm.RoleAssistant, store.entries[1].Role)
	assert.Equal(t, 4, store.entries[1].Tokens)
}

func TestSendReplaysFullHistory(t *testing.T) {
	store := &memStore{}
	client := &echoClient{response: "Sure."}
	adapter := New(store, client)

	userID := uuid.New()
	ctx := context.Background()

	_, err := adapter.Send(ctx, userID, "session-1", "first question", "gpt-4")
	require.NoError(t, err)
	_, err = adapter.Send(ctx, userID, "session-1", "second question", "gpt-4")
	require.NoError(t, err)

	// Second call sees: system + user1 + assistant1 + user2.
	require.Len(t, client.gotMsgs, 4)
	assert.Equal(t, llm.RoleSystem, client.gotMsgs[0].Role)
	assert.Equal(t, "first question", client.gotMsgs[1].Content)
	assert.Equal(t, llm.RoleAssistant, client.gotMsgs[2].Role)
	assert.Equal(t, "second question", client.gotMsgs[3].Content)
}

func TestSendSessionsIsolatedByUser(t *testing.T) {
	store := &memStore{}
	client := &echoClient{response: "ok"}
	adapter := New(store, client)
	ctx := context.Background()

	alice := uuid.New()
	bob := uuid.New()

	_, err := adapter.Send(ctx, alice, "shared-name", "alice's message", "gpt-4")
	require.NoError(t, err)
	_, err = adapter.Send(ctx, bob, "shared-name", "bob's message", "gpt-4")
	require.NoError(t, err)

	// Bob's call must not see Alice's history despite the same session name.
	require.Len(t, client.gotMsgs, 2)
	assert.Equal(t, "bob's message", client.gotMsgs[1].Content)
}

func TestSendModelFaultKeepsUserMessage(t *testing.T) {
	store := &memStore{}
	client := &echoClient{err: errors.New("provider down")}
	adapter := New(store, client)

	userID := uuid.New()
	_, err := adapter.Send(context.Background(), userID, "session-1", "hello?", "claude-3")
	require.Error(t, err)

	// The user turn is already persisted; no assistant turn follows.
	require.Len(t, store.entries, 1)
	assert.Equal(t, llm.RoleUser, store.entries[0].Role)
}

func TestHistory(t *testing.T) {
	store := &memStore{}
	adapter := New(store, &echoClient{response: "hi"})
	userID := uuid.New()
	ctx := context.Background()

	_, err := adapter.Send(ctx, userID, "session-9", "hello", "gpt-4")
	require.NoError(t, err)

	history, err := adapter.History(ctx, userID, "session-9")
	require.NoError(t, err)
	assert.Len(t, history, 2)
}
