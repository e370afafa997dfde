package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rrawat/converse/internal/api/response"
	"github.com/rrawat/converse/internal/chat"
	"github.com/rrawat/converse/internal/domain"
)

// ConversationHandler exposes thread management operations.
type ConversationHandler struct {
	controller *chat.Controller
}

// NewConversationHandler creates a new conversation handler
func NewConversationHandler(controller *chat.Controller) *ConversationHandler {
	return &ConversationHandler{controller: controller}
}

func conversationID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "conversationID"), 10, 64)
}

// List returns all conversations in store order
func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	snap := h.controller.Snapshot()
	response.OK(w, map[string]any{
		"conversations": snap.Conversations,
		"active_id":     snap.ActiveConversationID,
	})
}

// Create starts a new chat and makes it active
func (h *ConversationHandler) Create(w http.ResponseWriter, r *http.Request) {
	id := h.controller.NewConversation()
	response.Created(w, map[string]any{"id": id})
}

// Activate switches the active conversation
func (h *ConversationHandler) Activate(w http.ResponseWriter, r *http.Request) {
	id, err := conversationID(r)
	if err != nil {
		response.BadRequest(w, "Invalid conversation ID")
		return
	}

	if err := h.controller.SetActive(id); err != nil {
		if errors.Is(err, domain.ErrConversationNotFound) {
			response.NotFound(w, "Conversation not found")
			return
		}
		response.InternalError(w, "Failed to activate conversation")
		return
	}

	response.OK(w, map[string]any{"active_id": id})
}

// Delete removes a conversation
func (h *ConversationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := conversationID(r)
	if err != nil {
		response.BadRequest(w, "Invalid conversation ID")
		return
	}

	if err := h.controller.DeleteConversation(id); err != nil {
		if errors.Is(err, domain.ErrConversationNotFound) {
			response.NotFound(w, "Conversation not found")
			return
		}
		response.InternalError(w, "Failed to delete conversation")
		return
	}

	snap := h.controller.Snapshot()
	response.OK(w, map[string]any{"active_id": snap.ActiveConversationID})
}

// Clear resets the store to a single fresh conversation
func (h *ConversationHandler) Clear(w http.ResponseWriter, r *http.Request) {
	id := h.controller.ClearAll()
	response.OK(w, map[string]any{"active_id": id})
}

// Messages returns the ordered message list of a conversation
func (h *ConversationHandler) Messages(w http.ResponseWriter, r *http.Request) {
	id, err := conversationID(r)
	if err != nil {
		response.BadRequest(w, "Invalid conversation ID")
		return
	}

	messages, err := h.controller.Messages(id)
	if err != nil {
		if errors.Is(err, domain.ErrConversationNotFound) {
			response.NotFound(w, "Conversation not found")
			return
		}
		response.InternalError(w, "Failed to fetch messages")
		return
	}

	response.OK(w, map[string]any{"messages": messages})
}
