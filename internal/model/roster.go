package model

import (
	"strings"

	"github.com/wuwenhuang/bethel-rsvp/internal/apperrors"
)

// RosterEntry is one eligible recipient, as stored in the category's
// roster file.
type RosterEntry struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (e RosterEntry) Validate() error {
	if strings.TrimSpace(e.Name) == "" || strings.TrimSpace(e.Email) == "" {
		return apperrors.ErrRosterEntryIncomplete
	}

	return nil
}
