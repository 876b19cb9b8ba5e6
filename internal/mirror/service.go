package mirror

import (
	"context"
	"sync"
)

// Fallback narratives. Compare always returns a plain string: callers
// never branch on error versus success at the type level, only the
// content differs.
const (
	// MsgNotConfigured is returned when no API key is available.
	MsgNotConfigured = "The Growth Mirror needs an API key before it can reflect. " +
		"Add one in settings whenever you're ready—your sealed capsules are safe either way."

	// MsgUnavailable is returned on any call-time failure.
	MsgUnavailable = "The Growth Mirror is taking a break. " +
		"Don't worry, your progress is still safely sealed in the vault!"

	// MsgFoggy is returned when the service answers with nothing useful.
	MsgFoggy = "Your Growth Mirror is foggy right now. " +
		"Take a look at your past work and see how far you've come—you're doing great!"

	// MsgBusy is returned while a reflection for the same capsule is
	// already in flight.
	MsgBusy = "The Growth Mirror is still reflecting on this capsule. Give it a moment."
)

// CompareInput identifies one comparison request.
type CompareInput struct {
	CapsuleID      string
	SkillName      string
	PastContent    string
	PresentContent string
	GoalMessage    string
}

// Service wraps the chat client with the degradation contract and a
// per-capsule busy guard. One Service instance serves the whole process.
type Service struct {
	client *Client

	mu       sync.Mutex
	inflight map[string]bool
}

// NewService creates a Service around the given client.
func NewService(client *Client) *Service {
	return &Service{
		client:   client,
		inflight: make(map[string]bool),
	}
}

// Compare produces a growth narrative for one capsule. It never fails:
// missing credentials, transport errors, and empty replies each map to a
// fixed reassuring string. A second concurrent call for the same capsule
// gets MsgBusy instead of a duplicate request; there is no retry and no
// cancellation once the request is sent.
func (s *Service) Compare(ctx context.Context, input CompareInput) string {
	if !s.client.IsConfigured() {
		return MsgNotConfigured
	}

	if !s.acquire(input.CapsuleID) {
		return MsgBusy
	}
	defer s.release(input.CapsuleID)

	messages := []message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: buildPrompt(input.SkillName, input.PastContent, input.PresentContent, input.GoalMessage)},
	}

	reply, err := s.client.chat(ctx, messages, 0.8, 2000)
	if err != nil {
		return MsgUnavailable
	}
	if reply == "" {
		return MsgFoggy
	}
	return reply
}

// acquire marks a capsule as busy; returns false if it already is.
func (s *Service) acquire(capsuleID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight[capsuleID] {
		return false
	}
	s.inflight[capsuleID] = true
	return true
}

// release clears the busy mark for a capsule.
func (s *Service) release(capsuleID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, capsuleID)
}
