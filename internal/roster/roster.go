package roster

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/wuwenhuang/bethel-rsvp/internal/apperrors"
	"github.com/wuwenhuang/bethel-rsvp/internal/model"
)

// Source reads category rosters from JSON files. Files are re-read on
// every call so an operator can edit a roster without a restart.
type Source struct {
	paths map[model.Category]string
}

func NewSource(hostPath, greeterPath string) *Source {
	return &Source{
		paths: map[model.Category]string{
			model.CategoryHost:    hostPath,
			model.CategoryGreeter: greeterPath,
		},
	}
}

func (s *Source) Load(category model.Category) ([]model.RosterEntry, error) {
	path, ok := s.paths[category]
	if !ok {
		return nil, apperrors.ErrUnknownCategory
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster file: %w", err)
	}

	var entries []model.RosterEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse roster file %s: %w", path, err)
	}

	return entries, nil
}
