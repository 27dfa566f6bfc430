package validate

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	reEmail  = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reMobile = regexp.MustCompile(`^[0-9+\- ]{10,15}$`)
	reQ      = regexp.MustCompile(`^[A-Za-z0-9 _'\-]{1,50}$`)
)

// FieldError is one itemized validation failure, reported to the client as
// {field, message}.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func Email(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) == 0 || len(s) > 100 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Name validates a displayable person name (2-100 chars).
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, len(s) >= 2 && len(s) <= 100
}

func Mobile(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reMobile.MatchString(s)
}

// Address validates delivery/business addresses (10-500 chars).
func Address(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, len(s) >= 10 && len(s) <= 500
}

func Password(s string) bool {
	return len(s) >= 6 && len(s) <= 72 // bcrypt input cap
}

// ProductName validates a listing title (2-200 chars).
func ProductName(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, len(s) >= 2 && len(s) <= 200
}

func Description(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, len(s) <= 1000
}

func Notes(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, len(s) <= 500
}

// Q validates a search query: trims, enforces allowed characters and max length.
func Q(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if len(s) > 50 {
		s = s[:50]
	}
	return s, reQ.MatchString(s)
}

// Expiry parses an RFC3339 expiry timestamp and requires it to be in the
// future.
func Expiry(s string, now time.Time) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return t, t.After(now)
}

// Page clamps pagination input: page >= 1, 1 <= limit <= 50.
func Page(pageStr, limitStr string, defLimit int) (page, limit int) {
	page, _ = strconv.Atoi(strings.TrimSpace(pageStr))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(strings.TrimSpace(limitStr))
	if limit < 1 {
		limit = defLimit
	}
	if limit > 50 {
		limit = 50
	}
	return page, limit
}
