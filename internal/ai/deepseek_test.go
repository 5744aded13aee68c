package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func newChatServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *DeepSeekProvider) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p := NewDeepSeekProvider(srv.URL, "test-key", "deepseek-chat")
	p.MaxRetries = 1
	return srv, p
}

func TestChat_Success(t *testing.T) {
	_, p := newChatServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("missing auth header, got %q", got)
		}
		var req deepseekChatReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Stream {
			t.Errorf("blocking call must not set stream")
		}
		if req.Temperature != 0.3 {
			t.Errorf("unexpected temperature %v", req.Temperature)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "spend grew"}},
			},
		})
	})

	reply, err := p.Chat(context.Background(), []Message{{Role: "user", Content: "q"}})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if reply != "spend grew" {
		t.Fatalf("unexpected reply %q", reply)
	}
}

func TestChat_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	_, p := newChatServer(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "ok"}},
			},
		})
	})

	reply, err := p.Chat(context.Background(), []Message{{Role: "user", Content: "q"}})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if reply != "ok" || calls.Load() != 2 {
		t.Fatalf("reply=%q calls=%d", reply, calls.Load())
	}
}

func TestChat_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	_, p := newChatServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"message":"bad request"}}`)
	})

	_, err := p.Chat(context.Background(), []Message{{Role: "user", Content: "q"}})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 APIError, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("a 4xx must not be retried, calls=%d", calls.Load())
	}
}

func TestChat_MissingAPIKey(t *testing.T) {
	p := NewDeepSeekProvider("http://unused", "", "deepseek-chat")
	if _, err := p.Chat(context.Background(), nil); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestStreamChat_DeltasInOrder(t *testing.T) {
	_, p := newChatServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req deepseekChatReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if !req.Stream {
			t.Errorf("streaming call must set stream")
		}

		w.Header().Set("Content-Type", "text/event-stream")
		// reasoning deltas must be dropped, content deltas forwarded in order
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"reasoning_content\":\"thinking\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"Spend \"}}]}\n\n")
		fmt.Fprint(w, ": keepalive comment\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"increased 20%.\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	})

	chunks, errs := p.StreamChat(context.Background(), []Message{{Role: "user", Content: "q"}})
	var got []string
	for c := range chunks {
		got = append(got, c)
	}
	if err := <-errs; err != nil {
		t.Fatalf("stream: %v", err)
	}
	if len(got) != 2 || got[0] != "Spend " || got[1] != "increased 20%." {
		t.Fatalf("unexpected deltas: %v", got)
	}
}

func TestStreamChat_MidStreamError(t *testing.T) {
	_, p := newChatServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"Partial \"}}]}\n\n")
		fmt.Fprint(w, "data: {\"error\":{\"message\":\"quota exceeded\"}}\n\n")
	})

	chunks, errs := p.StreamChat(context.Background(), []Message{{Role: "user", Content: "q"}})
	var got []string
	for c := range chunks {
		got = append(got, c)
	}
	err := <-errs
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "quota exceeded" {
		t.Fatalf("expected quota APIError, got %v", err)
	}
	if len(got) != 1 || got[0] != "Partial " {
		t.Fatalf("unexpected deltas before failure: %v", got)
	}
}

func TestStreamChat_SharedClientUntouched(t *testing.T) {
	_, p := newChatServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"x\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	})
	p.Client.Timeout = 10 * time.Second

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			chunks, errs := p.StreamChat(context.Background(), []Message{{Role: "user", Content: "q"}})
			for range chunks {
			}
			if err := <-errs; err != nil {
				t.Errorf("stream: %v", err)
			}
		}()
	}
	wg.Wait()

	if p.Client.Timeout != 10*time.Second {
		t.Fatalf("streaming mutated the shared client timeout: %v", p.Client.Timeout)
	}
}

func TestStreamChat_HTTPError(t *testing.T) {
	_, p := newChatServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, "upstream down")
	})

	chunks, errs := p.StreamChat(context.Background(), []Message{{Role: "user", Content: "q"}})
	for range chunks {
		t.Fatalf("no deltas expected")
	}
	err := <-errs
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502 APIError, got %v", err)
	}
}
