package chat

import (
	"sync"
	"time"

	"github.com/rrawat/converse/internal/domain"
)

// titleMaxLen bounds titles derived from the first user message.
const titleMaxLen = 30

// Store owns the set of conversation threads and the active-thread
// pointer. It is never observably empty: deleting the last conversation
// immediately creates a fresh one. Conversation and message ids come
// from monotonic allocators, so an id is never reused after deletion.
type Store struct {
	mu            sync.Mutex
	conversations []*domain.Conversation
	activeID      int64
	nextConvID    int64
	nextMsgID     int64
}

// NewStore creates a store holding one empty active conversation.
func NewStore() *Store {
	s := &Store{}
	s.mu.Lock()
	s.createLocked()
	s.mu.Unlock()
	return s
}

func (s *Store) createLocked() *domain.Conversation {
	s.nextConvID++
	conv := &domain.Conversation{
		ID:        s.nextConvID,
		Title:     domain.DefaultTitle,
		CreatedAt: time.Now(),
	}
	s.conversations = append(s.conversations, conv)
	s.activeID = conv.ID
	return conv
}

func (s *Store) findLocked(id int64) *domain.Conversation {
	for _, conv := range s.conversations {
		if conv.ID == id {
			return conv
		}
	}
	return nil
}

// CreateConversation allocates a new empty conversation with the
// sentinel title and makes it active.
func (s *Store) CreateConversation() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked().ID
}

// DeleteConversation removes the conversation. If it was active,
// activeness transfers to the first remaining conversation in store
// order; if the store would become empty, a fresh conversation is
// created and made active.
func (s *Store) DeleteConversation(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, conv := range s.conversations {
		if conv.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domain.ErrConversationNotFound
	}

	s.conversations = append(s.conversations[:idx], s.conversations[idx+1:]...)

	if len(s.conversations) == 0 {
		s.createLocked()
		return nil
	}
	if s.activeID == id {
		s.activeID = s.conversations[0].ID
	}
	return nil
}

// ClearAll atomically replaces the entire store with exactly one fresh
// conversation, which becomes active.
func (s *Store) ClearAll() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conversations = nil
	return s.createLocked().ID
}

// SetActive switches the active pointer. It never touches in-flight
// work; a reveal running against another conversation keeps going.
func (s *Store) SetActive(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findLocked(id) == nil {
		return domain.ErrConversationNotFound
	}
	s.activeID = id
	return nil
}

// ActiveID returns the id of the active conversation.
func (s *Store) ActiveID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// AppendMessage appends a message to the target conversation regardless
// of whether it is active, and returns the new message id.
func (s *Store) AppendMessage(convID int64, role domain.Role, content string, streaming bool) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.findLocked(convID)
	if conv == nil {
		return 0, domain.ErrConversationNotFound
	}

	s.nextMsgID++
	conv.Messages = append(conv.Messages, domain.Message{
		ID:        s.nextMsgID,
		Role:      role,
		Content:   content,
		Streaming: streaming,
		CreatedAt: time.Now(),
	})
	return s.nextMsgID, nil
}

// FinishStreaming flips the streaming flag of a message to false. The
// flip is one-way; calling it again is a no-op.
func (s *Store) FinishStreaming(convID, msgID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.findLocked(convID)
	if conv == nil {
		return domain.ErrConversationNotFound
	}
	for i := range conv.Messages {
		if conv.Messages[i].ID == msgID {
			conv.Messages[i].Streaming = false
			return nil
		}
	}
	return nil
}

// UpdateTitleIfFirstExchange derives the title from the first user
// message once the first assistant reply has landed (message count 2)
// and the title is still the sentinel. Idempotent no-op otherwise.
func (s *Store) UpdateTitleIfFirstExchange(convID int64, candidate string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.findLocked(convID)
	if conv == nil || conv.Title != domain.DefaultTitle || len(conv.Messages) != 2 {
		return
	}
	if len(candidate) > titleMaxLen {
		conv.Title = candidate[:titleMaxLen] + "..."
	} else {
		conv.Title = candidate
	}
}

// Conversations returns the navigation list in store order.
func (s *Store) Conversations() []domain.ConversationSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.ConversationSummary, 0, len(s.conversations))
	for _, conv := range s.conversations {
		out = append(out, domain.ConversationSummary{ID: conv.ID, Title: conv.Title})
	}
	return out
}

// Messages returns a copy of a conversation's ordered message list.
func (s *Store) Messages(convID int64) ([]domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.findLocked(convID)
	if conv == nil {
		return nil, domain.ErrConversationNotFound
	}
	out := make([]domain.Message, len(conv.Messages))
	copy(out, conv.Messages)
	return out, nil
}
