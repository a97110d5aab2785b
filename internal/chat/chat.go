// Package chat implements the conversational assistant: a single-turn
// exchange over a persisted session history, with no pipeline behind it.
package chat

import (
	"context"

	"github.com/google/uuid"

	"github.com/flashcording/agent-service/internal/db"
	"github.com/flashcording/agent-service/internal/llm"
)

const systemInstruction = "You are a helpful AI coding assistant."

// Store is the persistence surface the adapter needs.
type Store interface {
	AppendMessage(ctx context.Context, userID uuid.UUID, sessionID, role, content, model string, tokens int) (*db.ConversationEntry, error)
	GetConversation(ctx context.Context, userID uuid.UUID, sessionID string) ([]db.ConversationEntry, error)
}

// Adapter turns one user message into one assistant reply, persisting both
// sides of the exchange.
type Adapter struct {
	store  Store
	client llm.Client
}

// New creates a chat adapter.
func New(store Store, client llm.Client) *Adapter {
	return &Adapter{store: store, client: client}
}

// Reply is the outcome of one exchange.
type Reply struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}

// Send appends the user's message to the session, replays the full ordered
// history behind the fixed system instruction, makes one model call, and
// appends the assistant's reply. The user message stays persisted even if
// the model call then fails.
func (a *Adapter) Send(ctx context.Context, userID uuid.UUID, sessionID, message, model string) (*Reply, error) {
	if _, err := a.store.AppendMessage(ctx, userID, sessionID, llm.RoleUser, message, model, 0); err != nil {
		return nil, err
	}

	history, err := a.store.GetConversation(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	messages := make([]llm.Message, 0, len(history)+1)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: systemInstruction})
	for _, entry := range history {
		messages = append(messages, llm.Message{Role: entry.Role, Content: entry.Content})
	}

	response, err := a.client.Invoke(ctx, model, messages)
	if err != nil {
		return nil, err
	}

	tokens := llm.EstimateTokens(response)
	if _, err := a.store.AppendMessage(ctx, userID, sessionID, llm.RoleAssistant, response, model, tokens); err != nil {
		return nil, err
	}

	return &Reply{Response: response, SessionID: sessionID}, nil
}

// History returns the ordered transcript for a session.
func (a *Adapter) History(ctx context.Context, userID uuid.UUID, sessionID string) ([]db.ConversationEntry, error) {
	return a.store.GetConversation(ctx, userID, sessionID)
}
