package selector

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/skillhive-hq/skill-digest/internal/domain"
)

// SaveResult persists a selection result so a later step (content
// generation) can recover the choice without re-running selection. The file
// is superseded by the next cycle's run.
func SaveResult(path string, result domain.SelectionResult) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create selection directory: %w", err)
		}
	}

	raw, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode selection: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write selection: %w", err)
	}
	return nil
}

// LoadResult reads a previously persisted selection result.
func LoadResult(path string) (domain.SelectionResult, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.SelectionResult{}, fmt.Errorf("read selection: %w", err)
	}

	var result domain.SelectionResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return domain.SelectionResult{}, fmt.Errorf("decode selection: %w", err)
	}
	return result, nil
}
