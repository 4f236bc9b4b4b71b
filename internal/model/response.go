package model

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wuwenhuang/bethel-rsvp/internal/apperrors"
)

// Category is a recipient role. Each category has its own roster, mail
// template and spreadsheet tab.
type Category string

const (
	CategoryHost    Category = "host"
	CategoryGreeter Category = "greeter"
)

func Categories() []Category {
	return []Category{CategoryHost, CategoryGreeter}
}

func ParseCategory(s string) (Category, error) {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryHost:
		return CategoryHost, nil
	case CategoryGreeter:
		return CategoryGreeter, nil
	default:
		return "", apperrors.ErrUnknownCategory
	}
}

// Tab is the spreadsheet tab name holding this category's responses.
func (c Category) Tab() string {
	switch c {
	case CategoryHost:
		return "Host"
	case CategoryGreeter:
		return "Greeter"
	default:
		return ""
	}
}

// Title is the human wording used in mail subjects.
func (c Category) Title() string {
	switch c {
	case CategoryHost:
		return "Hosting"
	case CategoryGreeter:
		return "Greeter"
	default:
		return ""
	}
}

type Answer string

const (
	AnswerYes Answer = "yes"
	AnswerNo  Answer = "no"
)

func ParseAnswer(s string) (Answer, error) {
	switch Answer(strings.ToLower(strings.TrimSpace(s))) {
	case AnswerYes:
		return AnswerYes, nil
	case AnswerNo:
		return AnswerNo, nil
	default:
		return "", apperrors.ErrInvalidAnswer
	}
}

// ResponseRecord is one row of the response ledger. Identity is stored
// lowercased and trimmed; EventDate is trimmed and compared as an exact
// string, never parsed as a date.
type ResponseRecord struct {
	ID         uuid.UUID `db:"id"          json:"id"`
	Category   Category  `db:"category"    json:"category"`
	Identity   string    `db:"identity"    json:"identity"`
	EventDate  string    `db:"event_date"  json:"eventDate"`
	Answer     Answer    `db:"answer"      json:"answer"`
	AnsweredAt time.Time `db:"answered_at" json:"answeredAt"`
}
