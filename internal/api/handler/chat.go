package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/rrawat/converse/internal/api/response"
	"github.com/rrawat/converse/internal/chat"
)

var validate = validator.New()

// ChatHandler exposes the ask operation and the render-boundary state.
type ChatHandler struct {
	controller *chat.Controller
}

// NewChatHandler creates a new chat handler
func NewChatHandler(controller *chat.Controller) *ChatHandler {
	return &ChatHandler{controller: controller}
}

// AskRequest is the body of POST /ask
type AskRequest struct {
	Query string `json:"query" validate:"required"`
}

// Ask runs one turn against the active conversation. The call returns
// once the answer has resolved (or failed) and any reveal has started.
// A rejected ask (blank query after trimming, or a turn already in
// flight) reports accepted=false rather than an error status.
func (h *ChatHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		response.BadRequest(w, "Query is required")
		return
	}

	accepted := h.controller.Ask(r.Context(), req.Query)

	response.OK(w, map[string]any{
		"accepted": accepted,
	})
}

// State returns the full render state: the snapshot plus the active
// conversation's messages.
func (h *ChatHandler) State(w http.ResponseWriter, r *http.Request) {
	snap := h.controller.Snapshot()

	messages, err := h.controller.Messages(snap.ActiveConversationID)
	if err != nil {
		// The snapshot's active id always names a live conversation, so
		// a racing delete just means retrying the snapshot.
		response.InternalError(w, "Failed to read active conversation")
		return
	}

	response.OK(w, map[string]any{
		"snapshot": snap,
		"messages": messages,
	})
}
