package llamaserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComplete(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)

		var payload struct {
			Model       string  `json:"model"`
			Temperature float64 `json:"temperature"`
			MaxTokens   int     `json:"max_tokens"`
			Messages    []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, "phi-4", payload.Model)
		require.Equal(t, 0.4, payload.Temperature)
		require.Equal(t, 1024, payload.MaxTokens)
		require.Len(t, payload.Messages, 2)
		require.Equal(t, "system", payload.Messages[0].Role)
		require.Equal(t, "user", payload.Messages[1].Role)

		_, _ = w.Write([]byte(`{"choices": [{"message": {"content": "[]"}}]}`))
	}))
	defer srv.Close()

	a := New("phi-4", srv.URL)
	out, err := a.Complete(context.Background(), "sys", "usr", 0.4, 1024)
	require.NoError(t, err)
	require.Equal(t, "[]", out)
}

func TestComplete_ServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model is loading", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	a := New("phi-4", srv.URL)
	_, err := a.Complete(context.Background(), "sys", "usr", 0.4, 1024)
	require.Error(t, err)
	require.Contains(t, err.Error(), "503")
	require.Contains(t, err.Error(), "model is loading")
}

func TestComplete_EmptyContent(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	a := New("phi-4", srv.URL)
	_, err := a.Complete(context.Background(), "sys", "usr", 0.4, 1024)
	require.Error(t, err)
}
