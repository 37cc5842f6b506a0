package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saham-assistant/internal/domain/entities"
)

func pollinationsProvider(baseURL string) *entities.AIProvider {
	return &entities.AIProvider{
		ID:        2,
		Name:      "pollinations-free",
		Kind:      entities.ProviderKindPollinations,
		BaseURL:   baseURL,
		ModelName: "openai-fast",
	}
}

func TestPollinationsAdapter_Chat(t *testing.T) {
	t.Run("posts to the openai path without auth", func(t *testing.T) {
		var gotPath, gotAuth string
		var gotBody pollinationsBody

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotAuth = r.Header.Get("Authorization")
			_ = json.NewDecoder(r.Body).Decode(&gotBody)

			_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"IHSG menguat pagi ini"}}]}`))
		}))
		defer server.Close()

		adapter, err := newTestFactory().AdapterFor(entities.ProviderKindPollinations)
		require.NoError(t, err)

		messages := []AIMessage{{Role: "user", Content: "Bagaimana pasar hari ini?"}}
		response, err := adapter.Chat(context.Background(), pollinationsProvider(server.URL), "ignored-key", messages, nil)

		require.NoError(t, err)
		assert.Equal(t, "/openai", gotPath)
		assert.Empty(t, gotAuth)
		assert.Equal(t, "openai-fast", gotBody.Model)
		assert.Equal(t, "IHSG menguat pagi ini", response.Content)
	})

	t.Run("always reports the configured model", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Pollinations responses carry no model field.
			_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
		}))
		defer server.Close()

		adapter, _ := newTestFactory().AdapterFor(entities.ProviderKindPollinations)
		response, err := adapter.Chat(context.Background(), pollinationsProvider(server.URL), "", []AIMessage{{Role: "user", Content: "hi"}}, nil)

		require.NoError(t, err)
		assert.Equal(t, "openai-fast", response.Model)
	})

	t.Run("maps non-2xx responses to an upstream error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		adapter, _ := newTestFactory().AdapterFor(entities.ProviderKindPollinations)
		_, err := adapter.Chat(context.Background(), pollinationsProvider(server.URL), "", []AIMessage{{Role: "user", Content: "hi"}}, nil)

		require.Error(t, err)
		assert.True(t, entities.IsUpstreamError(err))
	})
}
