package chat

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/rrawat/converse/internal/backend"
	"github.com/rrawat/converse/internal/domain"
	"github.com/rrawat/converse/internal/repository/redis"
)

// Answerer resolves one query into one complete answer. Implemented by
// the backend client and mocked in tests.
type Answerer interface {
	Ask(ctx context.Context, query string) (string, error)
}

// Phase is the controller's position in the current turn.
type Phase string

const (
	PhaseIdle           Phase = "idle"
	PhaseAwaitingAnswer Phase = "awaiting_answer"
	PhaseRevealing      Phase = "revealing"
)

// turn tracks one user query through to its resolved or failed reply.
// convID is captured at turn start and never changes, so finalization
// targets the right conversation regardless of later navigation.
type turn struct {
	requestID string
	convID    int64
	msgID     int64
	prefix    string
	reveal    *Reveal
}

// Controller orchestrates the store, the answer client and the reveal
// scheduler. It is the sole owner of the "one active reveal" slot and
// the only mutator of turn state.
type Controller struct {
	mu        sync.Mutex
	store     *Store
	answerer  Answerer
	scheduler *Scheduler
	cache     *redis.AnswerCache
	phase     Phase
	turn      *turn
}

// NewController creates a session controller. cache may be nil.
func NewController(store *Store, answerer Answerer, scheduler *Scheduler, cache *redis.AnswerCache) *Controller {
	return &Controller{
		store:     store,
		answerer:  answerer,
		scheduler: scheduler,
		cache:     cache,
		phase:     PhaseIdle,
	}
}

// Ask runs one turn against the active conversation. Empty queries and
// asks while a turn is already in flight are rejected, not queued; the
// return value reports whether the ask was accepted. On acceptance the
// call blocks until the answer resolves (or fails) and the reveal has
// been started; the reveal itself completes in the background.
func (c *Controller) Ask(ctx context.Context, query string) bool {
	query = strings.TrimSpace(query)

	c.mu.Lock()
	if query == "" || c.phase != PhaseIdle {
		c.mu.Unlock()
		return false
	}
	t := &turn{
		requestID: uuid.New().String(),
		convID:    c.store.ActiveID(),
	}
	c.phase = PhaseAwaitingAnswer
	c.turn = t
	// The user message lands before the answer request goes out.
	if _, err := c.store.AppendMessage(t.convID, domain.RoleUser, query, false); err != nil {
		log.Error().Err(err).Str("request_id", t.requestID).Msg("failed to append user message")
	}
	c.mu.Unlock()

	answer, err := c.resolve(ctx, query)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		log.Warn().Err(err).Str("request_id", t.requestID).Msg("answer request failed")
		// Error replies are already-final content: no reveal.
		if _, aerr := c.store.AppendMessage(t.convID, domain.RoleAssistant, backend.ConnectErrorMessage, false); aerr == nil {
			c.store.UpdateTitleIfFirstExchange(t.convID, query)
		}
		c.phase = PhaseIdle
		c.turn = nil
		return true
	}

	msgID, aerr := c.store.AppendMessage(t.convID, domain.RoleAssistant, answer, true)
	if aerr != nil {
		// Owning conversation was deleted mid-flight; drop the outcome.
		log.Debug().Str("request_id", t.requestID).Int64("conversation_id", t.convID).Msg("owning conversation gone, turn discarded")
		c.phase = PhaseIdle
		c.turn = nil
		return true
	}
	t.msgID = msgID
	c.store.UpdateTitleIfFirstExchange(t.convID, query)

	c.phase = PhaseRevealing
	t.reveal = c.scheduler.Start(answer,
		func(prefix string) { c.onTick(t, prefix) },
		func() { c.onDone(t) },
	)
	return true
}

// resolve returns the answer for a query, consulting the cache when one
// is configured. Cache failures degrade to a miss.
func (c *Controller) resolve(ctx context.Context, query string) (string, error) {
	if c.cache != nil {
		if answer, err := c.cache.Get(ctx, query); err == nil && answer != "" {
			return answer, nil
		}
	}

	answer, err := c.answerer.Ask(ctx, query)
	if err != nil {
		return "", err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, query, answer); err != nil {
			log.Debug().Err(err).Msg("failed to cache answer")
		}
	}
	return answer, nil
}

func (c *Controller) onTick(t *turn, prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.turn == t {
		t.prefix = prefix
	}
}

func (c *Controller) onDone(t *turn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.turn != t {
		return
	}
	// A failed flip means the conversation is gone; nothing to surface.
	if err := c.store.FinishStreaming(t.convID, t.msgID); err != nil {
		log.Debug().Str("request_id", t.requestID).Msg("finalize skipped, conversation gone")
	}
	c.phase = PhaseIdle
	c.turn = nil
}

// NewConversation creates a fresh conversation and makes it active.
func (c *Controller) NewConversation() int64 {
	return c.store.CreateConversation()
}

// SetActive switches the active conversation. In-flight turns keep
// their originally captured conversation.
func (c *Controller) SetActive(id int64) error {
	return c.store.SetActive(id)
}

// DeleteConversation removes a conversation. A turn owned by it keeps
// running; its eventual append/finalize becomes a no-op.
func (c *Controller) DeleteConversation(id int64) error {
	return c.store.DeleteConversation(id)
}

// ClearAll resets the store to a single fresh conversation.
func (c *Controller) ClearAll() int64 {
	return c.store.ClearAll()
}

// Messages returns the ordered message list of a conversation.
func (c *Controller) Messages(convID int64) ([]domain.Message, error) {
	return c.store.Messages(convID)
}

// Snapshot is the read-only render boundary: everything a UI needs to
// draw navigation and the currently streaming reply.
type Snapshot struct {
	ActiveConversationID int64                        `json:"active_conversation_id"`
	Conversations        []domain.ConversationSummary `json:"conversations"`
	Phase                Phase                        `json:"phase"`
	RevealConversationID int64                        `json:"reveal_conversation_id,omitempty"`
	RevealMessageID      int64                        `json:"reveal_message_id,omitempty"`
	RevealPrefix         string                       `json:"reveal_prefix,omitempty"`
}

// Snapshot returns the current render state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		ActiveConversationID: c.store.ActiveID(),
		Conversations:        c.store.Conversations(),
		Phase:                c.phase,
	}
	if c.phase == PhaseRevealing && c.turn != nil {
		snap.RevealConversationID = c.turn.convID
		snap.RevealMessageID = c.turn.msgID
		snap.RevealPrefix = c.turn.prefix
	}
	return snap
}
