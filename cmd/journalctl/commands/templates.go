package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/benvon/smart-journal/internal/models"
	"github.com/benvon/smart-journal/internal/request"
	"github.com/benvon/smart-journal/internal/validation"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

// TemplateFile is the on-disk form of a set of templates
type TemplateFile struct {
	Tasks        []*models.Task        `json:"tasks" yaml:"tasks"`
	Transactions []*models.Transaction `json:"transactions" yaml:"transactions"`
}

// loadTemplates reads, decodes and validates a template file. The format follows the
// extension: .json is JSON, anything else YAML. Templates without an id get a new one
// and free-text names are trimmed of whitespace and control characters.
func loadTemplates(path string) (*TemplateFile, error) {
	if path == "" {
		return nil, fmt.Errorf("--file is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template file: %w", err)
	}

	file := &TemplateFile{}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(file)
	} else {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(file)
		if err == io.EOF {
			err = nil
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode template file %s: %w", filepath.Base(path), err)
	}

	for i, task := range file.Tasks {
		if task == nil {
			return nil, fmt.Errorf("tasks[%d] is empty", i)
		}
		if task.ID == uuid.Nil {
			task.ID = uuid.New()
		}
		task.Name = validation.SanitizeText(task.Name)
		if err := validation.ValidateTemplate(task); err != nil {
			return nil, fmt.Errorf("tasks[%d]: %w", i, err)
		}
	}
	for i, txn := range file.Transactions {
		if txn == nil {
			return nil, fmt.Errorf("transactions[%d] is empty", i)
		}
		if txn.ID == uuid.Nil {
			txn.ID = uuid.New()
		}
		txn.Name = validation.SanitizeText(txn.Name)
		txn.Payer = validation.SanitizeText(txn.Payer)
		if err := validation.ValidateTemplate(txn); err != nil {
			return nil, fmt.Errorf("transactions[%d]: %w", i, err)
		}
	}
	return file, nil
}

func (o *options) window() (request.Window, error) {
	return request.NewWindow(o.start, o.end, o.timezone, o.maxWindow)
}

// write encodes v to w in the selected output format. YAML output keeps the JSON field
// names and order by re-reading the JSON encoding as a YAML node tree.
func write(w io.Writer, format string, v any) error {
	switch strings.ToLower(format) {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode output: %w", err)
		}
		var doc yaml.Node
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return fmt.Errorf("failed to convert output to yaml: %w", err)
		}
		blockStyle(&doc)
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(&doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format %q (must be json or yaml)", format)
	}
}

// blockStyle drops the flow and quoting styles inherited from JSON
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, child := range n.Content {
		blockStyle(child)
	}
}
