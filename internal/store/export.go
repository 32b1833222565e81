// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/litreview/pkg/types"
)

// ExportYAML writes the whole paper library to path as YAML.
func (s *Store) ExportYAML(ctx context.Context, path string) error {
	papers, err := s.All(ctx)
	if err != nil {
		return fmt.Errorf("querying for export: %w", err)
	}
	data, err := yaml.Marshal(papers)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return writeExport(path, data)
}

// ExportJSON writes the whole paper library to path as indented JSON.
func (s *Store) ExportJSON(ctx context.Context, path string) error {
	papers, err := s.All(ctx)
	if err != nil {
		return fmt.Errorf("querying for export: %w", err)
	}
	data, err := json.MarshalIndent(papers, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return writeExport(path, data)
}

// Load reads an export file (YAML or JSON by extension) and upserts its
// papers, restoring the exact id-to-metadata mapping of the export.
func (s *Store) Load(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading export file: %w", err)
	}

	var papers []types.Paper
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &papers)
	default:
		err = yaml.Unmarshal(data, &papers)
	}
	if err != nil {
		return 0, fmt.Errorf("parsing export file: %w", err)
	}

	if err := s.UpsertAll(ctx, papers); err != nil {
		return 0, err
	}
	return len(papers), nil
}

func writeExport(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating export directory: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}
