// Package ai talks to an OpenAI compatible chat-completions endpoint.
package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/pageza/menuwise/backend/config"
	"github.com/pageza/menuwise/backend/internal/logger"
	"github.com/pageza/menuwise/backend/internal/metrics"
)

// Completer sends one chat request and returns the text of the first choice.
type Completer interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
}

type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	N           int           `json:"n"`

	// Stage labels logs and metrics. It is not sent.
	Stage string `json:"-"`
}

type ChatMessage struct {
	Role    string        `json:"role"`
	Content []ContentPart `json:"content"`
}

type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

type ImageURL struct {
	URL string `json:"url"`
}

func TextPart(text string) ContentPart {
	return ContentPart{Type: "text", Text: text}
}

// ImagePart embeds raw image bytes as a base64 data URI.
func ImagePart(data []byte) ContentPart {
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		mime = "image/jpeg"
	}
	uri := fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data))
	return ContentPart{Type: "image_url", ImageURL: &ImageURL{URL: uri}}
}

func UserMessage(parts ...ContentPart) ChatMessage {
	return ChatMessage{Role: "user", Content: parts}
}

// StatusError is returned when the endpoint answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Non-OK HTTP status: %d", e.StatusCode)
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Client is a Completer backed by resty. Each call has a bounded timeout, is
// retried once on connection-level failure only, and runs behind a circuit
// breaker that trips on consecutive transport or 5xx failures.
type Client struct {
	http    *resty.Client
	breaker *gobreaker.CircuitBreaker[string]
	url     string
	model   string
	log     *zap.Logger
}

var _ Completer = (*Client)(nil)

func NewClient(cfg config.AIConfig, log *zap.Logger) *Client {
	log = logger.OrNop(log).Named("ai")

	httpClient := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Authorization", "Bearer "+cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(250 * time.Millisecond).
		SetRetryMaxWaitTime(time.Second).
		AddRetryCondition(func(_ *resty.Response, err error) bool {
			return isConnectionError(err)
		})

	threshold := cfg.BreakerFailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	breaker := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "ai-chat",
		MaxRequests: 1,
		Timeout:     cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			var statusErr *StatusError
			if errors.As(err, &statusErr) {
				return statusErr.StatusCode < http.StatusInternalServerError
			}
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
			metrics.AIBreakerState.WithLabelValues(name).Set(float64(to))
		},
	})

	return &Client{
		http:    httpClient,
		breaker: breaker,
		url:     cfg.APIURL,
		model:   cfg.Model,
		log:     log,
	}
}

// Complete posts req and returns choices[0].message.content.
func (c *Client) Complete(ctx context.Context, req ChatRequest) (string, error) {
	if req.Model == "" {
		req.Model = c.model
	}
	if req.N == 0 {
		req.N = 1
	}

	start := time.Now()
	content, err := c.breaker.Execute(func() (string, error) {
		return c.post(ctx, req)
	})
	elapsed := time.Since(start)
	metrics.AIRequestDuration.WithLabelValues(req.Stage).Observe(elapsed.Seconds())

	if err != nil {
		c.log.Warn("chat completion failed",
			zap.String("stage", req.Stage),
			zap.String("model", req.Model),
			zap.Duration("duration", elapsed),
			zap.Error(err))
		return "", err
	}

	c.log.Debug("chat completion finished",
		zap.String("stage", req.Stage),
		zap.String("model", req.Model),
		zap.Duration("duration", elapsed),
		zap.Int("content_length", len(content)))
	return content, nil
}

func (c *Client) post(ctx context.Context, req ChatRequest) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		Post(c.url)
	if err != nil {
		return "", fmt.Errorf("failed to send chat request: %w", err)
	}

	if !resp.IsSuccess() {
		return "", &StatusError{StatusCode: resp.StatusCode(), Body: truncate(resp.String(), 512)}
	}

	var result chatResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return "", fmt.Errorf("failed to parse chat response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", errors.New("no choices in chat response")
	}

	return result.Choices[0].Message.Content, nil
}

// isConnectionError is true for transport failures where no HTTP response
// was received. Cancellation and timeouts are not retried.
func isConnectionError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return false
	}
	return true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
