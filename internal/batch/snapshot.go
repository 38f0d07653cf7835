package batch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/dnkideas/invoice-ingest/internal/entity"
)

// snapshotSchema constrains the checkpoint file: an array of result objects
// carrying at least the resume key, the outcome flag, and the timestamp.
var snapshotSchema = map[string]any{
	"type": "array",
	"items": map[string]any{
		"type":     "object",
		"required": []string{"file_name", "succeeded", "processed_at"},
		"properties": map[string]any{
			"file_name":    map[string]any{"type": "string", "minLength": 1},
			"file_path":    map[string]any{"type": "string"},
			"doc_type":     map[string]any{"type": "string"},
			"succeeded":    map[string]any{"type": "boolean"},
			"processed_at": map[string]any{"type": "string"},
		},
	},
}

// LoadSnapshot reads the prior result set from the checkpoint file. A
// missing file, unreadable JSON or schema mismatch degrades to an empty set
// so the batch proceeds from scratch; the file itself is only overwritten at
// the end of the run.
func LoadSnapshot(path string, logger *slog.Logger) []entity.ProcessingResult {
	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("batch.snapshot.read_failed", "path", path, "error", err)
		}
		return nil
	}
	if strings.TrimSpace(string(raw)) == "" {
		return nil
	}
	if err := validateAgainstSchema(snapshotSchema, raw); err != nil {
		logger.Warn("batch.snapshot.invalid", "path", path, "error", err)
		return nil
	}
	var results []entity.ProcessingResult
	if err := json.Unmarshal(raw, &results); err != nil {
		logger.Warn("batch.snapshot.decode_failed", "path", path, "error", err)
		return nil
	}
	logger.Info("batch.snapshot.loaded", "path", path, "results", len(results))
	return results
}

// SaveSnapshot overwrites the checkpoint file wholesale with the accumulated
// result set, pretty-printed for inspection.
func SaveSnapshot(path string, results []entity.ProcessingResult) error {
	if results == nil {
		results = []entity.ProcessingResult{}
	}
	raw, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// validateAgainstSchema validates data against schemaMap.
func validateAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("snapshot.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("snapshot.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
