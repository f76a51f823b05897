package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completionServer(t *testing.T, status int, body string, seen *map[string]interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if seen != nil {
			raw, _ := io.ReadAll(r.Body)
			require.NoError(t, json.Unmarshal(raw, seen))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
}

const okBody = `{"id":"c1","object":"chat.completion","created":1,"model":"test-model",
"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"  Hello there \n"}}]}`

func TestNewProvider(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENAI_BASE_URL", "")

	_, err := NewProvider("")
	assert.Error(t, err)

	p, err := NewProvider("k")
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, p.GetModel())
	assert.Equal(t, DefaultBaseURL, p.GetBaseURL())
	assert.Equal(t, "k", p.GetAPIKey())
}

func TestNewProvider_EnvironmentFallbacks(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "env-key")
	t.Setenv("OPENAI_BASE_URL", "http://localhost:8080/v1")

	p, err := NewProvider("")
	require.NoError(t, err)
	assert.Equal(t, "env-key", p.GetAPIKey())
	assert.Equal(t, "http://localhost:8080/v1", p.GetBaseURL())

	p, err = NewProvider("", WithBaseURL("http://explicit/v1"))
	require.NoError(t, err)
	assert.Equal(t, "http://explicit/v1", p.GetBaseURL())
}

func TestComplete(t *testing.T) {
	var seen map[string]interface{}
	srv := completionServer(t, http.StatusOK, okBody, &seen)
	defer srv.Close()

	p, err := NewProvider("test-key", WithBaseURL(srv.URL), WithModel("test-model"), WithSystemPrompt("be brief"), WithMaxRetries(0))
	require.NoError(t, err)

	reply, err := p.Complete(context.Background(), "Say hello")
	require.NoError(t, err)
	assert.Equal(t, "Hello there", reply)

	assert.Equal(t, "test-model", seen["model"])
	messages, ok := seen["messages"].([]interface{})
	require.True(t, ok)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]interface{})["role"])
	assert.Equal(t, "user", messages[1].(map[string]interface{})["role"])
}

func TestComplete_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "server error", status: http.StatusBadRequest, body: `{"error":{"message":"bad model","type":"invalid_request_error"}}`},
		{name: "no choices", status: http.StatusOK, body: `{"id":"c1","object":"chat.completion","created":1,"model":"m","choices":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := completionServer(t, tt.status, tt.body, nil)
			defer srv.Close()

			p, err := NewProvider("test-key", WithBaseURL(srv.URL), WithMaxRetries(0))
			require.NoError(t, err)

			_, err = p.Complete(context.Background(), "hi")
			assert.Error(t, err)
		})
	}
}
