// Package taskstore is the read-only task collaborator of the content plan.
// Tasks are owned by the generic task subsystem and stored as JSONB
// documents; this package looks them up by id and filters out documents
// that no longer match the task schema.
package taskstore

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kaptinlin/jsonschema"
	"gorm.io/gorm"

	"github.com/teamplan/planboard/internal/models"
)

//go:embed task_schema.json
var taskSchemaData []byte

// Store reads task documents for link validation and annotation.
type Store struct {
	db     *gorm.DB
	schema *jsonschema.Schema
}

// New compiles the embedded task schema and returns a Store.
func New(db *gorm.DB) (*Store, error) {
	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile(taskSchemaData)
	if err != nil {
		return nil, fmt.Errorf("failed to compile task schema: %w", err)
	}
	return &Store{db: db, schema: schema}, nil
}

// GetByID fetches a task document. The boolean is false when the task does
// not exist or its payload fails schema validation.
func (s *Store) GetByID(ctx context.Context, id string) (map[string]any, bool, error) {
	var task models.Task
	err := s.db.WithContext(ctx).First(&task, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	doc, ok := s.Decode(task.Payload)
	return doc, ok, nil
}

// Decode unmarshals and validates a raw task payload. Invalid documents are
// silently discarded, mirroring how reads tolerate stale link rows.
func (s *Store) Decode(payload []byte) (map[string]any, bool) {
	if len(payload) == 0 {
		return nil, false
	}

	var doc map[string]any
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, false
	}

	if result := s.schema.Validate(doc); !result.IsValid() {
		return nil, false
	}
	return doc, true
}
