package service

import (
	"time"

	"github.com/wuwenhuang/bethel-rsvp/internal/apperrors"
)

// NextWeekdayOccurrence returns the n-th occurrence of weekday strictly
// after from. When from already falls on the weekday, a full cycle
// advances first: n=1 on a Sunday yields next week's Sunday, not today.
func NextWeekdayOccurrence(from time.Time, weekday time.Weekday, n int) (time.Time, error) {
	if n < 1 {
		return time.Time{}, apperrors.ErrInvalidOccurrence
	}

	days := (int(weekday) - int(from.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}

	return from.AddDate(0, 0, days+7*(n-1)), nil
}
