package mirror

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/knelavan/skilltime/internal/config"
)

// chatStub returns an httptest server speaking just enough of the
// chat-completions protocol for the client.
func chatStub(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func stubService(t *testing.T, baseURL string) *Service {
	t.Helper()
	return NewService(NewClient(&config.Config{
		MirrorBaseURL: baseURL,
		MirrorModel:   "test-model",
		MirrorAPIKey:  "sk-test",
	}))
}

func chatReply(text string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": text}},
		},
	})
	return string(b)
}

func testInput() CompareInput {
	return CompareInput{
		CapsuleID:      "cap1",
		SkillName:      "Algebra Master",
		PastContent:    "I can add fractions",
		PresentContent: "I can solve quadratic equations",
		GoalMessage:    "I hope I can handle equations without fear",
	}
}

func TestCompare_Success(t *testing.T) {
	var gotBody chatRequest
	srv := chatStub(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("Authorization = %q", auth)
		}
		w.Write([]byte(chatReply("What a journey! Your Evolution shines through.")))
	})

	got := stubService(t, srv.URL).Compare(context.Background(), testInput())
	if got != "What a journey! Your Evolution shines through." {
		t.Errorf("Compare = %q, want the reply text", got)
	}

	if len(gotBody.Messages) != 2 {
		t.Fatalf("len(Messages) = %d, want system + user", len(gotBody.Messages))
	}
	prompt := gotBody.Messages[1].Content
	for _, dim := range []string{
		"Clarity of Explanation",
		"Confidence",
		"Vocabulary Usage",
		"Speed and Structure",
		"Concept Understanding",
	} {
		if !strings.Contains(prompt, dim) {
			t.Errorf("prompt missing dimension %q", dim)
		}
	}
	for _, part := range []string{"Algebra Master", "I can add fractions", "I can solve quadratic equations", "without fear"} {
		if !strings.Contains(prompt, part) {
			t.Errorf("prompt missing %q", part)
		}
	}
}

func TestCompare_MissingCredentials(t *testing.T) {
	svc := NewService(NewClient(&config.Config{MirrorBaseURL: "http://localhost:1"}))

	got := svc.Compare(context.Background(), testInput())
	if got != MsgNotConfigured {
		t.Errorf("Compare = %q, want MsgNotConfigured", got)
	}
}

func TestCompare_TransportFailure(t *testing.T) {
	srv := chatStub(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})

	got := stubService(t, srv.URL).Compare(context.Background(), testInput())
	if got != MsgUnavailable {
		t.Errorf("Compare = %q, want MsgUnavailable", got)
	}
	if got == "" {
		t.Error("degraded result must be non-empty")
	}
}

func TestCompare_UnreachableHost(t *testing.T) {
	// Closed port: the request itself fails
	got := stubService(t, "http://127.0.0.1:1").Compare(context.Background(), testInput())
	if got != MsgUnavailable {
		t.Errorf("Compare = %q, want MsgUnavailable", got)
	}
}

func TestCompare_MalformedResponse(t *testing.T) {
	srv := chatStub(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	})

	got := stubService(t, srv.URL).Compare(context.Background(), testInput())
	if got != MsgUnavailable {
		t.Errorf("Compare = %q, want MsgUnavailable", got)
	}
}

func TestCompare_EmptyReply(t *testing.T) {
	for name, body := range map[string]string{
		"no choices":    `{"choices": []}`,
		"empty content": chatReply(""),
	} {
		t.Run(name, func(t *testing.T) {
			srv := chatStub(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			})

			got := stubService(t, srv.URL).Compare(context.Background(), testInput())
			if got != MsgFoggy {
				t.Errorf("Compare = %q, want MsgFoggy", got)
			}
		})
	}
}

func TestCompare_BusyGuard(t *testing.T) {
	started := make(chan struct{})
	respond := make(chan struct{})
	var startedOnce sync.Once
	srv := chatStub(t, func(w http.ResponseWriter, r *http.Request) {
		startedOnce.Do(func() { close(started) })
		<-respond
		w.Write([]byte(chatReply("done")))
	})

	svc := stubService(t, srv.URL)

	var wg sync.WaitGroup
	wg.Add(1)
	var first string
	go func() {
		defer wg.Done()
		first = svc.Compare(context.Background(), testInput())
	}()

	<-started
	// Same capsule while the first call is outstanding
	if got := svc.Compare(context.Background(), testInput()); got != MsgBusy {
		t.Errorf("concurrent Compare = %q, want MsgBusy", got)
	}

	close(respond)
	wg.Wait()

	if first != "done" {
		t.Errorf("first Compare = %q, want %q", first, "done")
	}

	// The guard is released after completion
	if got := svc.Compare(context.Background(), testInput()); got != "done" {
		t.Errorf("Compare after release = %q, want %q", got, "done")
	}
}

func TestFallbackMessages_NoGradeTokens(t *testing.T) {
	for _, msg := range []string{MsgNotConfigured, MsgUnavailable, MsgFoggy, MsgBusy} {
		if msg == "" {
			t.Error("fallback message must be non-empty")
		}
		if strings.Contains(msg, "%") || strings.Contains(msg, "/10") {
			t.Errorf("fallback message contains a grade token: %q", msg)
		}
	}
}
