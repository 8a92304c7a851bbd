package ai

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/patrickmn/go-cache"
	"google.golang.org/genai"

	"github.com/MrSnakeDoc/nearby/internal/domain"
	"github.com/MrSnakeDoc/nearby/internal/logger"
	"github.com/MrSnakeDoc/nearby/internal/metrics"
)

const (
	// ChatGreeting opens every concierge conversation.
	ChatGreeting = "Hello! I am your NEARBY Concierge. I speak all languages fluently. How can I help you discover the local area today?"
	// ChatApology replaces the reply when the backend fails.
	ChatApology = "Sorry, I encountered a temporary glitch. Please try again in a moment."
)

// conversation serialises turns within one chat session.
type conversation struct {
	mu   sync.Mutex
	chat chatSession
}

// Chat sends message within the conversation identified by sessionID,
// creating it on first use. It always returns something displayable.
func (c *Client) Chat(ctx context.Context, sessionID, message string, loc *domain.Location) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", ErrEmptyPrompt
	}

	conv, err := c.conversation(ctx, sessionID, loc)
	if err != nil {
		c.logger.Warn("failed to open chat session", logger.String("session", sessionID), logger.Error(err))
		return ChatApology, err
	}

	ctx, span := c.tracer.Start(ctx, "ai.Chat")
	defer span.End()

	conv.mu.Lock()
	defer conv.mu.Unlock()

	callCtx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	resp, err := conv.chat.SendMessage(callCtx, genai.Part{Text: message})
	if err != nil || resp == nil {
		metrics.AIRequestsFailed.WithLabelValues("chat").Inc()
		if err == nil {
			err = fmt.Errorf("empty response")
		}
		span.RecordError(err)
		c.logger.Warn("chat turn failed", logger.String("session", sessionID), logger.Error(err))
		return ChatApology, fmt.Errorf("chat: %w: %w", ErrBackendUnavailable, err)
	}

	// Keep the conversation alive while it is in use.
	c.sessions.Set(sessionID, conv, cache.DefaultExpiration)

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return ChatApology, nil
	}
	return text, nil
}

// EndChat forgets a conversation.
func (c *Client) EndChat(sessionID string) {
	c.sessions.Delete(sessionID)
}

func (c *Client) conversation(ctx context.Context, sessionID string, loc *domain.Location) (*conversation, error) {
	if v, ok := c.sessions.Get(sessionID); ok {
		return v.(*conversation), nil
	}

	chat, err := c.newChat(ctx, c.opts.Model, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(conciergeInstruction(loc), genai.RoleUser),
		Tools:             []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}

	conv := &conversation{chat: chat}
	// Another request may have raced us; the first one wins.
	if err := c.sessions.Add(sessionID, conv, cache.DefaultExpiration); err != nil {
		if v, ok := c.sessions.Get(sessionID); ok {
			return v.(*conversation), nil
		}
		c.sessions.Set(sessionID, conv, cache.DefaultExpiration)
	}
	return conv, nil
}
