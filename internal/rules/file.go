// Package rules reads path rules from a YAML file, either as a live rule
// source for the routing engine or as input for a one-off import into SQL
// storage.
//
// File format:
//
//	version: "1"
//	rules:
//	  - id: 1
//	    prefix: Finance
//	    destination: finance
//	    priority: 10
//	  - id: 2
//	    prefix: Legacy
//	    destination: archive/legacy
//	    active: false
//
// Omitted priority defaults to 100 and omitted active to true.
package rules

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
	"report-router/internal/common/errors"
	"report-router/internal/routing"
)

// DefaultPriority is assigned to rules that do not set one.
const DefaultPriority = 100

// File is the top-level YAML document.
type File struct {
	Version string      `yaml:"version,omitempty"`
	Rules   []FileEntry `yaml:"rules"`
}

// FileEntry is one rule as written in YAML.
type FileEntry struct {
	ID          int64      `yaml:"id"`
	Prefix      string     `yaml:"prefix"`
	Destination string     `yaml:"destination"`
	Priority    *int       `yaml:"priority,omitempty"`
	Active      *bool      `yaml:"active,omitempty"`
	CreatedAt   *time.Time `yaml:"created_at,omitempty"`
}

// Parse decodes and validates a rules document. IDs must be positive and
// unique and every rule needs a prefix and a destination folder that stays
// inside the reports root. Folders are stored cleaned.
func Parse(data []byte) ([]routing.PathRule, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.ValidationError(fmt.Sprintf("invalid rules file: %v", err))
	}

	seen := make(map[int64]bool, len(file.Rules))
	rules := make([]routing.PathRule, 0, len(file.Rules))
	for i, entry := range file.Rules {
		if entry.ID <= 0 {
			return nil, errors.ValidationError(fmt.Sprintf("rule %d: id must be positive", i+1))
		}
		if seen[entry.ID] {
			return nil, errors.ValidationError(fmt.Sprintf("rule %d: duplicate id %d", i+1, entry.ID))
		}
		seen[entry.ID] = true

		prefix := strings.TrimSpace(entry.Prefix)
		if prefix == "" {
			return nil, errors.ValidationError(fmt.Sprintf("rule %d: prefix is required", entry.ID))
		}
		if strings.TrimSpace(entry.Destination) == "" {
			return nil, errors.ValidationError(fmt.Sprintf("rule %d: destination is required", entry.ID))
		}
		folder, err := routing.CleanFolder(entry.Destination)
		if err != nil {
			return nil, errors.ValidationError(fmt.Sprintf("rule %d: %v", entry.ID, err)).
				WithContext("rule_id", entry.ID)
		}

		rule := routing.PathRule{
			ID:                entry.ID,
			Prefix:            prefix,
			DestinationFolder: folder,
			Priority:          DefaultPriority,
			Active:            true,
		}
		if entry.Priority != nil {
			rule.Priority = *entry.Priority
		}
		if entry.Active != nil {
			rule.Active = *entry.Active
		}
		if entry.CreatedAt != nil {
			rule.CreatedAt = *entry.CreatedAt
		}
		rules = append(rules, rule)
	}

	return rules, nil
}

// LoadFile reads and parses the rules file at path.
func LoadFile(fsys afero.Fs, path string) ([]routing.PathRule, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, errors.IOError("failed to read rules file", err).WithContext("path", path)
	}
	return Parse(data)
}

// FileSource serves the active rules of a YAML file. The file is re-read on
// every call so edits take effect on the next pass.
type FileSource struct {
	fs   afero.Fs
	path string
}

// NewFileSource creates a FileSource for path on fsys.
func NewFileSource(fsys afero.Fs, path string) *FileSource {
	return &FileSource{fs: fsys, path: path}
}

// ListActiveRules implements routing.RuleSource.
func (s *FileSource) ListActiveRules(ctx context.Context) ([]routing.PathRule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	all, err := LoadFile(s.fs, s.path)
	if err != nil {
		return nil, err
	}

	active := make([]routing.PathRule, 0, len(all))
	for _, rule := range all {
		if rule.Active {
			active = append(active, rule)
		}
	}
	return active, nil
}

// ListRules returns every rule in the file, active or not.
func (s *FileSource) ListRules(ctx context.Context) ([]routing.PathRule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadFile(s.fs, s.path)
}
