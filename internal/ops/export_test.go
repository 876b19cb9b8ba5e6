package ops

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/knelavan/skilltime/internal/vault"
)

func TestExport(t *testing.T) {
	st := openTestStore(t)

	if _, err := Login(st, LoginInput{Name: "Maya", Now: t0}); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if _, err := Seal(st, SealInput{SkillID: "3", Content: "snapshot", MessageToFuture: "goal", DurationMonths: 6, Now: t0}); err != nil {
		t.Fatalf("Seal failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "backup.json")
	out, err := Export(st, ExportInput{Path: path})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if out.Path != path {
		t.Errorf("Path = %q, want %q", out.Path, path)
	}
	if out.Skills != 12 || out.Capsules != 1 {
		t.Errorf("counts = %d skills / %d capsules, want 12 / 1", out.Skills, out.Capsules)
	}

	// The export is the persisted shape verbatim
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading export failed: %v", err)
	}
	var exported vault.AppState
	if err := json.Unmarshal(data, &exported); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	stored, err := st.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(&exported, stored) {
		t.Error("export should round-trip to the stored state")
	}
}

func TestExport_DefaultPath(t *testing.T) {
	st := openTestStore(t)

	out, err := Export(st, ExportInput{})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if filepath.Dir(out.Path) != filepath.Join(st.BaseDir(), "exports") {
		t.Errorf("Path = %q, want a file under <base>/exports", out.Path)
	}
	if _, err := os.Stat(out.Path); err != nil {
		t.Errorf("export file missing: %v", err)
	}
}

func TestReset(t *testing.T) {
	st := openTestStore(t)

	if _, err := Login(st, LoginInput{Name: "Maya", Now: t0}); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if _, err := Seal(st, SealInput{SkillID: "1", Content: "snapshot", MessageToFuture: "goal", DurationMonths: 1, Now: t0}); err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	if _, err := AddSkill(st, AddSkillInput{Name: "Chess", Now: t0}); err != nil {
		t.Fatalf("AddSkill failed: %v", err)
	}

	out, err := Reset(st)
	if err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if out.Skills != 12 || out.Capsules != 0 {
		t.Errorf("ResetOutput = %+v, want the seed catalog and no capsules", out)
	}

	current, err := CurrentUser(st)
	if err != nil {
		t.Fatalf("CurrentUser failed: %v", err)
	}
	if current != nil {
		t.Error("reset should clear the session")
	}
}
