package ai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DeepSeekProvider talks to a DeepSeek (OpenAI-compatible) chat completions
// endpoint. Temperature is fixed low: answers must stay faithful to the
// report data, not creative.
type DeepSeekProvider struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxRetries  int
	Client      *http.Client
}

func NewDeepSeekProvider(baseURL, apiKey, model string) *DeepSeekProvider {
	if baseURL == "" {
		baseURL = "https://api.deepseek.com/v1"
	}
	if model == "" {
		model = "deepseek-chat"
	}
	return &DeepSeekProvider{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		APIKey:      apiKey,
		Model:       model,
		Temperature: 0.3,
		MaxRetries:  2,
		Client:      &http.Client{Timeout: 90 * time.Second},
	}
}

type deepseekChatReq struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Stream      bool      `json:"stream"`
	Temperature float64   `json:"temperature"`
}

type deepseekChatResp struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type deepseekStreamResp struct {
	Choices []struct {
		Delta struct {
			Content          string `json:"content"`
			ReasoningContent string `json:"reasoning_content"`
		} `json:"delta"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (p *DeepSeekProvider) validate() error {
	if p.Client == nil {
		return errors.New("deepseek: http client is nil")
	}
	if strings.TrimSpace(p.APIKey) == "" {
		return errors.New("deepseek: api key is required")
	}
	return nil
}

func (p *DeepSeekProvider) newRequest(ctx context.Context, body []byte) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.APIKey)
	return req, nil
}

// Chat performs a blocking completion with a small retry budget for
// transient failures (429, 5xx, timeouts).
func (p *DeepSeekProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	if err := p.validate(); err != nil {
		return "", err
	}

	body, err := json.Marshal(deepseekChatReq{
		Model:       p.Model,
		Messages:    messages,
		Stream:      false,
		Temperature: p.Temperature,
	})
	if err != nil {
		return "", err
	}

	var lastErr error
	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		reply, callErr := p.chatOnce(ctx, body)
		if callErr == nil {
			return reply, nil
		}
		lastErr = callErr

		if !isRetryable(callErr) || attempt == p.MaxRetries {
			break
		}
		backoff := time.Duration(350*(attempt+1)) * time.Millisecond
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}
	}
	return "", lastErr
}

func (p *DeepSeekProvider) chatOnce(ctx context.Context, body []byte) (string, error) {
	req, err := p.newRequest(ctx, body)
	if err != nil {
		return "", err
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", readAPIError(resp)
	}

	var decoded deepseekChatResp
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", err
	}
	if decoded.Error != nil && decoded.Error.Message != "" {
		return "", &APIError{Message: decoded.Error.Message}
	}
	if len(decoded.Choices) == 0 {
		return "", &APIError{Message: "empty response"}
	}
	return decoded.Choices[0].Message.Content, nil
}

// StreamChat streams content deltas in arrival order. Reasoning deltas are
// dropped: only final answer content reaches the caller.
func (p *DeepSeekProvider) StreamChat(ctx context.Context, messages []Message) (<-chan string, <-chan error) {
	chunks := make(chan string, 16)
	errs := make(chan error, 1)

	go func() {
		defer close(chunks)
		defer close(errs)

		if err := p.validate(); err != nil {
			errs <- err
			return
		}

		body, err := json.Marshal(deepseekChatReq{
			Model:       p.Model,
			Messages:    messages,
			Stream:      true,
			Temperature: p.Temperature,
		})
		if err != nil {
			errs <- err
			return
		}

		req, err := p.newRequest(ctx, body)
		if err != nil {
			errs <- err
			return
		}

		// streaming can outlive the client-level timeout; ctx controls the
		// stream's lifetime instead. The shared client stays untouched so
		// concurrent streams and later blocking calls keep their timeout.
		client := p.Client
		if client.Timeout > 0 {
			streamClient := *client
			streamClient.Timeout = 0
			client = &streamClient
		}

		resp, err := client.Do(req)
		if err != nil {
			errs <- err
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			errs <- readAPIError(resp)
			return
		}

		sc := bufio.NewScanner(resp.Body)
		buf := make([]byte, 0, 64*1024)
		sc.Buffer(buf, 2*1024*1024)

		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" || !strings.HasPrefix(line, "data:") {
				continue
			}
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if data == "[DONE]" {
				return
			}

			var decoded deepseekStreamResp
			if err := json.Unmarshal([]byte(data), &decoded); err != nil {
				errs <- err
				return
			}
			if decoded.Error != nil && decoded.Error.Message != "" {
				errs <- &APIError{Message: decoded.Error.Message}
				return
			}
			if len(decoded.Choices) == 0 {
				continue
			}
			if delta := decoded.Choices[0].Delta.Content; delta != "" {
				select {
				case chunks <- delta:
				case <-ctx.Done():
					errs <- ctx.Err()
					return
				}
			}
		}

		if err := sc.Err(); err != nil {
			errs <- err
		}
	}()

	return chunks, errs
}

func readAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = fmt.Sprintf("status %d", resp.StatusCode)
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") || strings.Contains(msg, "tempor")
}
