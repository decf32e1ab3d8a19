package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/menuwise/backend/config"
)

func testConfig(url string) config.AIConfig {
	return config.AIConfig{
		APIKey:                  "sk-test",
		APIURL:                  url,
		Model:                   "test-model",
		Timeout:                 2 * time.Second,
		RetryCount:              1,
		BreakerFailureThreshold: 3,
		BreakerOpenTimeout:      time.Minute,
	}
}

func writeChoice(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	})
}

func TestCompleteSendsChatRequest(t *testing.T) {
	var body map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeChoice(w, `{"Soup": "$4"}`)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), nil)
	content, err := client.Complete(context.Background(), ChatRequest{
		Messages:  []ChatMessage{UserMessage(TextPart("hello"), ImagePart([]byte("\x89PNG\r\n\x1a\nrest")))},
		MaxTokens: 1000,
		TopP:      1,
		Stage:     "extract",
	})

	require.NoError(t, err)
	assert.Equal(t, `{"Soup": "$4"}`, content)
	assert.Equal(t, "test-model", body["model"])
	assert.Equal(t, float64(0), body["temperature"])
	assert.Equal(t, float64(1000), body["max_tokens"])
	assert.Equal(t, float64(1), body["n"])
	assert.NotContains(t, body, "Stage")

	messages := body["messages"].([]interface{})
	parts := messages[0].(map[string]interface{})["content"].([]interface{})
	require.Len(t, parts, 2)
	image := parts[1].(map[string]interface{})["image_url"].(map[string]interface{})
	assert.True(t, strings.HasPrefix(image["url"].(string), "data:image/png;base64,"))
}

func TestCompleteDoesNotRetryStatusErrors(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusInternalServerError} {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(status)
		}))

		client := NewClient(testConfig(server.URL), nil)
		_, err := client.Complete(context.Background(), ChatRequest{})
		server.Close()

		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, status, statusErr.StatusCode)
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	}
}

func TestCompleteRetriesConnectionFailureOnce(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			conn, _, err := w.(http.Hijacker).Hijack()
			require.NoError(t, err)
			conn.Close()
			return
		}
		writeChoice(w, "ok")
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), nil)
	content, err := client.Complete(context.Background(), ChatRequest{})

	require.NoError(t, err)
	assert.Equal(t, "ok", content)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestCompleteGivesUpAfterOneRetry(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		conn, _, err := w.(http.Hijacker).Hijack()
		require.NoError(t, err)
		conn.Close()
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), nil)
	_, err := client.Complete(context.Background(), ChatRequest{})

	require.Error(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestCompleteNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), nil)
	_, err := client.Complete(context.Background(), ChatRequest{})
	assert.EqualError(t, err, "no choices in chat response")
}

func TestBreakerOpensOnServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), nil)
	for i := 0; i < 3; i++ {
		_, err := client.Complete(context.Background(), ChatRequest{})
		require.Error(t, err)
	}

	_, err := client.Complete(context.Background(), ChatRequest{})
	assert.True(t, errors.Is(err, gobreaker.ErrOpenState))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestBreakerIgnoresClientErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), nil)
	for i := 0; i < 5; i++ {
		_, err := client.Complete(context.Background(), ChatRequest{})
		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr)
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestIsConnectionError(t *testing.T) {
	assert.False(t, isConnectionError(nil))
	assert.False(t, isConnectionError(context.Canceled))
	assert.False(t, isConnectionError(context.DeadlineExceeded))
	assert.False(t, isConnectionError(timeoutErr{}))
	assert.True(t, isConnectionError(errors.New("connection reset by peer")))
}
