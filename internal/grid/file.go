package grid

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tax-credit-model/internal/model"
)

// GenerationFileExt is the extension of generation files: JSON lines, one
// model.GenerationMetric per line.
const GenerationFileExt = ".jsonl"

// LoadGenerationsFile reads a JSON-lines generation file. Blank lines are skipped.
func LoadGenerationsFile(path string) ([]model.GenerationMetric, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open generations file: %w", err)
	}
	defer f.Close()

	var out []model.GenerationMetric
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		var g model.GenerationMetric
		if err := json.Unmarshal(raw, &g); err != nil {
			return nil, fmt.Errorf("%s:%d: %v: %w", filepath.Base(path), line, err, model.ErrParse)
		}
		if err := ValidateGeneration(g); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", filepath.Base(path), line, err)
		}
		out = append(out, g)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read generations file: %w", err)
	}
	return out, nil
}

// AppendGenerationsFile appends records to path, creating it and its directory.
func AppendGenerationsFile(path string, generations []model.GenerationMetric) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open generations file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, g := range generations {
		if err := enc.Encode(g); err != nil {
			return fmt.Errorf("failed to encode generation: %w", err)
		}
	}
	return w.Flush()
}

// ValidateGeneration rejects records the matcher could never use.
func ValidateGeneration(g model.GenerationMetric) error {
	if g.TimeGenerated.IsZero() {
		return fmt.Errorf("time_generated is required: %w", model.ErrInvalidArgument)
	}
	if err := g.Portfolio.Validate(); err != nil {
		return fmt.Errorf("plant %d at %s: portfolio: %w", g.PlantID, g.TimeGenerated.Format(time.RFC3339), err)
	}
	return nil
}
