// Package widget mirrors the three headline numbers into a shared region that
// widget and companion processes read without opening the database.
package widget

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/theirongolddev/japa/internal/model"
)

// FilePublisher writes the widget numbers to a JSON file. Writes go through a
// temp file and rename so readers never see a partial document.
type FilePublisher struct {
	Path string
}

// NewFilePublisher returns a publisher writing to path.
func NewFilePublisher(path string) *FilePublisher {
	return &FilePublisher{Path: path}
}

// Publish replaces the widget file with d.
func (p *FilePublisher) Publish(d model.WidgetData) error {
	if err := os.MkdirAll(filepath.Dir(p.Path), 0o750); err != nil {
		return fmt.Errorf("creating widget dir: %w", err)
	}

	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(p.Path), ".widget-*.json")
	if err != nil {
		return fmt.Errorf("creating temp widget file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing widget file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, p.Path)
}

// Read returns what was last published. A missing file reads as zeros.
func (p *FilePublisher) Read() (model.WidgetData, error) {
	var d model.WidgetData
	data, err := os.ReadFile(p.Path)
	if errors.Is(err, os.ErrNotExist) {
		return d, nil
	}
	if err != nil {
		return d, fmt.Errorf("reading widget file: %w", err)
	}
	if err := json.Unmarshal(data, &d); err != nil {
		return model.WidgetData{}, fmt.Errorf("parsing widget file: %w", err)
	}
	return d, nil
}
