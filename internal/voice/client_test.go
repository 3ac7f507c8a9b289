package voice

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(serverURL string) *Client {
	return &Client{
		apiKey:     "test-key",
		voiceID:    "voz-prueba",
		model:      "eleven_multilingual_v2",
		baseURL:    serverURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		logger:     zap.NewNop(),
	}
}

func TestSynthesize(t *testing.T) {
	t.Run("Streams audio and strips emphasis markers", func(t *testing.T) {
		var gotPath, gotKey string
		var gotBody synthesizeRequest

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotKey = r.Header.Get("xi-api-key")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			w.Header().Set("Content-Type", "audio/mpeg")
			w.Write([]byte("mp3-bytes"))
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		stream, err := client.Synthesize(context.Background(), "La puerta se abre. **1. Entrar.** **2. Huir.**")
		require.NoError(t, err)
		defer stream.Close()

		audio, err := io.ReadAll(stream)
		require.NoError(t, err)
		assert.Equal(t, "mp3-bytes", string(audio))

		assert.Equal(t, "/voz-prueba/stream", gotPath)
		assert.Equal(t, "test-key", gotKey)
		assert.Equal(t, "La puerta se abre. 1. Entrar. 2. Huir.", gotBody.Text)
		assert.Equal(t, "eleven_multilingual_v2", gotBody.ModelID)
	})

	t.Run("Provider error status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"detail":"invalid voice"}`, http.StatusUnprocessableEntity)
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		_, err := client.Synthesize(context.Background(), "texto")

		assert.ErrorContains(t, err, "422")
	})
}

func TestNewClient(t *testing.T) {
	t.Run("No API key disables voice", func(t *testing.T) {
		client := NewClient(Config{}, zap.NewNop())
		assert.Nil(t, client)
		assert.False(t, client.Enabled())
	})

	t.Run("Configured client is enabled", func(t *testing.T) {
		client := NewClient(Config{APIKey: "k", VoiceID: "v", Model: "m"}, zap.NewNop())
		assert.True(t, client.Enabled())
	})
}
