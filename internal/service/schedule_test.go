package service

import (
	"errors"
	"testing"
	"time"

	"github.com/wuwenhuang/bethel-rsvp/internal/apperrors"
)

func TestNextWeekdayOccurrence(t *testing.T) {
	// 2026-01-04 is a Sunday, 2026-01-05 a Monday, 2026-01-07 a Wednesday.
	sunday := time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC)
	monday := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	wednesday := time.Date(2026, 1, 7, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		from time.Time
		n    int
		want time.Time
	}{
		{"sunday itself advances a full week", sunday, 1, sunday.AddDate(0, 0, 7)},
		{"monday finds the coming sunday", monday, 1, monday.AddDate(0, 0, 6)},
		{"third sunday from a monday", monday, 3, monday.AddDate(0, 0, 20)},
		{"wednesday finds the coming sunday", wednesday, 1, time.Date(2026, 1, 11, 0, 0, 0, 0, time.UTC)},
		{"second sunday from a sunday", sunday, 2, sunday.AddDate(0, 0, 14)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextWeekdayOccurrence(tt.from, time.Sunday, tt.n)
			if err != nil {
				t.Fatalf("NextWeekdayOccurrence returned error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Fatalf("got %s, want %s", got.Format("2006-01-02"), tt.want.Format("2006-01-02"))
			}
			if got.Weekday() != time.Sunday {
				t.Fatalf("result %s is not a Sunday", got.Format("2006-01-02"))
			}
		})
	}
}

func TestNextWeekdayOccurrenceRejectsNonPositiveN(t *testing.T) {
	from := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	for _, n := range []int{0, -1} {
		if _, err := NextWeekdayOccurrence(from, time.Sunday, n); !errors.Is(err, apperrors.ErrInvalidOccurrence) {
			t.Fatalf("n=%d: expected ErrInvalidOccurrence, got %v", n, err)
		}
	}
}
