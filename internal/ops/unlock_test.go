package ops

import (
	"testing"

	"github.com/knelavan/skilltime/internal/errors"
	"github.com/knelavan/skilltime/internal/vault"
)

func TestUnlock_BeforeReady(t *testing.T) {
	st := openTestStore(t)

	sealed, err := Seal(st, SealInput{
		SkillID:         "1",
		Content:         "snapshot",
		MessageToFuture: "goal",
		DurationMonths:  1,
		Now:             t0,
	})
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}

	_, err = Unlock(st, UnlockInput{ID: sealed.Capsule.ID, Now: sealed.Capsule.UnlockAt - 1})
	if !errors.Is(err, errors.ErrStillLocked) {
		t.Errorf("Unlock error = %v, want STILL_LOCKED", err)
	}

	// The refused unlock must not set the flag
	got, err := Fetch(st, FetchInput{ID: sealed.Capsule.ID, Now: t0})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if got.IsUnlocked {
		t.Error("refused unlock must not mark the capsule as opened")
	}
}

func TestUnlock_AtBoundary(t *testing.T) {
	st := openTestStore(t)

	sealed, err := Seal(st, SealInput{
		SkillID:         "1",
		Content:         "snapshot",
		MessageToFuture: "goal",
		DurationMonths:  1,
		Now:             t0,
	})
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}

	out, err := Unlock(st, UnlockInput{ID: sealed.Capsule.ID, Now: sealed.Capsule.UnlockAt})
	if err != nil {
		t.Fatalf("Unlock at the exact unlock instant failed: %v", err)
	}
	if !out.IsUnlocked {
		t.Error("unlock should set the opened flag")
	}
	if out.Remaining != vault.ReadyLabel {
		t.Errorf("Remaining = %q, want %q", out.Remaining, vault.ReadyLabel)
	}

	// The transition is persisted
	got, err := Fetch(st, FetchInput{ID: sealed.Capsule.ID, Now: sealed.Capsule.UnlockAt})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if !got.IsUnlocked {
		t.Error("opened flag should survive a reload")
	}
}

func TestUnlock_Idempotent(t *testing.T) {
	st := openTestStore(t)

	sealed, err := Seal(st, SealInput{
		SkillID:         "1",
		Content:         "snapshot",
		MessageToFuture: "goal",
		DurationMonths:  1,
		Now:             t0,
	})
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}

	after := sealed.Capsule.UnlockAt + 1
	if _, err := Unlock(st, UnlockInput{ID: sealed.Capsule.ID, Now: after}); err != nil {
		t.Fatalf("first Unlock failed: %v", err)
	}
	out, err := Unlock(st, UnlockInput{ID: sealed.Capsule.ID, Now: after})
	if err != nil {
		t.Fatalf("second Unlock failed: %v", err)
	}
	if !out.IsUnlocked {
		t.Error("capsule should stay opened")
	}
}

func TestUnlock_NotFound(t *testing.T) {
	st := openTestStore(t)

	_, err := Unlock(st, UnlockInput{ID: "missing", Now: t0})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Unlock error = %v, want NOT_FOUND", err)
	}
}
