package ops

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/knelavan/skilltime/internal/errors"
	"github.com/knelavan/skilltime/internal/store"
)

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	Path string // optional, default: <baseDir>/exports/skilltime-<timestamp>.json
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path       string `json:"path"`
	Skills     int    `json:"skills"`
	Capsules   int    `json:"capsules"`
	ExportedAt int64  `json:"exported_at"`
}

// Export writes the full AppState to a JSON file. The document is a
// direct dump of the persisted shape — importing it back is just writing
// the same blob, so the export stays schema-identical to storage.
func Export(st *store.Store, input ExportInput) (*ExportOutput, error) {
	now := time.Now()

	exportPath := input.Path
	if exportPath == "" {
		exportPath = filepath.Join(st.BaseDir(), "exports",
			fmt.Sprintf("skilltime-%s.json", now.UTC().Format("20060102-150405")))
	}

	state, err := st.Load()
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	if err := os.MkdirAll(filepath.Dir(exportPath), 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	// Write to temp file first, then rename, so a failed export never
	// truncates an existing backup.
	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return nil, errors.NewInternal(err)
	}
	tempPath := exportPath + "." + hex.EncodeToString(randBytes) + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to write export file: %w", err))
	}
	if err := os.Rename(tempPath, exportPath); err != nil {
		_ = os.Remove(tempPath)
		return nil, errors.NewInternal(fmt.Errorf("failed to finalize export file: %w", err))
	}

	return &ExportOutput{
		Path:       exportPath,
		Skills:     len(state.Skills),
		Capsules:   len(state.Capsules),
		ExportedAt: now.UnixMilli(),
	}, nil
}
