package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rrawat/converse/internal/api"
	"github.com/rrawat/converse/internal/config"
)

func testConfig(backendURL string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			MiddlewareTimeout: 30 * time.Second,
		},
		Backend: config.BackendConfig{
			BaseURL: backendURL,
			Timeout: 5 * time.Second,
		},
		Reveal: config.RevealConfig{
			Interval: time.Millisecond,
		},
	}
}

// fakeBackend serves the answering service contract.
func fakeBackend(answer string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/chat-llm" {
			json.NewEncoder(w).Encode(map[string]string{"answer": answer})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	var resp map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	}
	return rec, resp
}

func TestRouter_AskAndState(t *testing.T) {
	backend := fakeBackend("Hi there")
	defer backend.Close()
	router := api.NewRouter(testConfig(backend.URL), nil)

	rec, resp := doJSON(t, router, http.MethodPost, "/api/v1/ask", map[string]string{"query": "Hello"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, resp["data"].(map[string]any)["accepted"])

	// The reveal finishes in the background; the state endpoint then
	// shows the full exchange with streaming off.
	assert.Eventually(t, func() bool {
		rec, resp := doJSON(t, router, http.MethodGet, "/api/v1/state", nil)
		if rec.Code != http.StatusOK {
			return false
		}
		data := resp["data"].(map[string]any)
		snapshot := data["snapshot"].(map[string]any)
		messages := data["messages"].([]any)
		if snapshot["phase"] != "idle" || len(messages) != 2 {
			return false
		}
		last := messages[1].(map[string]any)
		return last["content"] == "Hi there" && last["streaming"] == false
	}, 5*time.Second, 5*time.Millisecond)
}

func TestRouter_AskValidation(t *testing.T) {
	backend := fakeBackend("Hi")
	defer backend.Close()
	router := api.NewRouter(testConfig(backend.URL), nil)

	rec, _ := doJSON(t, router, http.MethodPost, "/api/v1/ask", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Whitespace-only queries pass validation but are rejected by the
	// controller without touching the store.
	rec, resp := doJSON(t, router, http.MethodPost, "/api/v1/ask", map[string]string{"query": "   "})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, resp["data"].(map[string]any)["accepted"])
}

func TestRouter_ConversationLifecycle(t *testing.T) {
	backend := fakeBackend("Hi")
	defer backend.Close()
	router := api.NewRouter(testConfig(backend.URL), nil)

	// Initial list holds the default conversation.
	rec, resp := doJSON(t, router, http.MethodGet, "/api/v1/conversations", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	data := resp["data"].(map[string]any)
	assert.Len(t, data["conversations"].([]any), 1)
	firstID := int64(data["active_id"].(float64))

	// New chat becomes active.
	rec, resp = doJSON(t, router, http.MethodPost, "/api/v1/conversations", nil)
	assert.Equal(t, http.StatusCreated, rec.Code)
	secondID := int64(resp["data"].(map[string]any)["id"].(float64))
	assert.Greater(t, secondID, firstID)

	// Switch back to the first one.
	rec, _ = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/conversations/%d/activate", firstID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Activating a dangling id is a 404.
	rec, _ = doJSON(t, router, http.MethodPost, "/api/v1/conversations/999/activate", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Delete the active conversation; activeness moves on.
	rec, resp = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/v1/conversations/%d", firstID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, secondID, int64(resp["data"].(map[string]any)["active_id"].(float64)))

	// Messages of a deleted conversation are gone.
	rec, _ = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/conversations/%d/messages", firstID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Clear all resets to a single fresh conversation.
	rec, resp = doJSON(t, router, http.MethodDelete, "/api/v1/conversations", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	freshID := int64(resp["data"].(map[string]any)["active_id"].(float64))
	assert.Greater(t, freshID, secondID)

	rec, resp = doJSON(t, router, http.MethodGet, "/api/v1/conversations", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, resp["data"].(map[string]any)["conversations"].([]any), 1)
}

func TestRouter_ReadyCheck(t *testing.T) {
	t.Run("backend up", func(t *testing.T) {
		backend := fakeBackend("Hi")
		defer backend.Close()
		router := api.NewRouter(testConfig(backend.URL), nil)

		rec, _ := doJSON(t, router, http.MethodGet, "/api/v1/ready", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("backend down", func(t *testing.T) {
		backend := fakeBackend("Hi")
		backend.Close()
		router := api.NewRouter(testConfig(backend.URL), nil)

		rec, _ := doJSON(t, router, http.MethodGet, "/api/v1/ready", nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}
