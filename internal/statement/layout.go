package statement

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Layout is the row grammar of a family of bank statements.
type Layout interface {
	// Name is the registry key, matched case-insensitively.
	Name() string
	Description() string
	// SplitDate reports whether line starts a transaction row and splits off the raw date.
	SplitDate(line string) (date, rest string, ok bool)
	// ParseDate coerces a raw date. year is used when the date carries none;
	// hasYear reports whether the raw date printed its own year.
	ParseDate(raw string, year int) (t time.Time, hasYear bool, err error)
}

// Registry holds named layouts in registration order.
type Registry struct {
	layouts []Layout
	byName  map[string]Layout
}

// NewRegistry creates an empty layout registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Layout)}
}

// Register adds a layout. Panics on duplicate name.
func (r *Registry) Register(l Layout) {
	key := strings.ToLower(l.Name())
	if _, ok := r.byName[key]; ok {
		panic("duplicate statement layout: " + key)
	}
	r.byName[key] = l
	r.layouts = append(r.layouts, l)
}

// Get returns the layout registered under name, or nil.
func (r *Registry) Get(name string) Layout {
	return r.byName[strings.ToLower(name)]
}

// All returns the layouts in registration order.
func (r *Registry) All() []Layout {
	out := make([]Layout, len(r.layouts))
	copy(out, r.layouts)
	return out
}

// DefaultRegistry returns a registry with all built-in layouts.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&USLayout{})
	r.Register(&ISOLayout{})
	return r
}

// USLayout parses statements whose rows start with month/day dates, such as
// "8/1", "08/01*", "08/01/25" or "08/01/2025".
type USLayout struct{}

var usDateStart = regexp.MustCompile(`^(\d{1,2}/\d{1,2}(?:/\d{2,4})?)\*?\s+(.*)$`)

// Name returns the layout name.
func (l *USLayout) Name() string { return "us" }

// Description returns a one-line summary.
func (l *USLayout) Description() string {
	return "rows start with M/D, MM/DD, MM/DD/YY or MM/DD/YYYY (checking and card statements)"
}

// SplitDate splits "08/01 COSTCO 13.99" into "08/01" and "COSTCO 13.99".
func (l *USLayout) SplitDate(line string) (string, string, bool) {
	m := usDateStart.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	return m[1], strings.TrimSpace(m[2]), true
}

// ParseDate parses a month/day date with an optional two or four digit year.
func (l *USLayout) ParseDate(raw string, year int) (time.Time, bool, error) {
	parts := strings.Split(raw, "/")
	month, _ := strconv.Atoi(parts[0])
	day, _ := strconv.Atoi(parts[1])

	hasYear := len(parts) == 3
	if hasYear {
		y, _ := strconv.Atoi(parts[2])
		switch len(parts[2]) {
		case 2:
			year = 2000 + y
		case 4:
			year = y
		default:
			return time.Time{}, false, fmt.Errorf("invalid year in date %q", raw)
		}
	}

	t, err := calendarDate(year, month, day)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid date %q: %w", raw, err)
	}
	return t, hasYear, nil
}

// ISOLayout parses statements whose rows start with YYYY-MM-DD dates.
type ISOLayout struct{}

var isoDateStart = regexp.MustCompile(`^(\d{4}-\d{1,2}-\d{1,2}),?\s+(.*)$`)

// Name returns the layout name.
func (l *ISOLayout) Name() string { return "iso" }

// Description returns a one-line summary.
func (l *ISOLayout) Description() string {
	return "rows start with YYYY-MM-DD followed by description, amount and optional balance"
}

// SplitDate splits "2024-01-05 COFFEE SHOP -4.50" into the date and the remainder.
func (l *ISOLayout) SplitDate(line string) (string, string, bool) {
	m := isoDateStart.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	return m[1], strings.TrimSpace(m[2]), true
}

// ParseDate parses an ISO calendar date. The year argument is ignored.
func (l *ISOLayout) ParseDate(raw string, _ int) (time.Time, bool, error) {
	parts := strings.Split(raw, "-")
	year, _ := strconv.Atoi(parts[0])
	month, _ := strconv.Atoi(parts[1])
	day, _ := strconv.Atoi(parts[2])

	t, err := calendarDate(year, month, day)
	if err != nil {
		return time.Time{}, true, fmt.Errorf("invalid date %q: %w", raw, err)
	}
	return t, true, nil
}

// calendarDate builds a UTC date, rejecting values time.Date would normalize.
func calendarDate(year, month, day int) (time.Time, error) {
	if year <= 0 {
		return time.Time{}, fmt.Errorf("unknown year")
	}
	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("month %d out of range", month)
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, fmt.Errorf("day %d out of range for %04d-%02d", day, year, month)
	}
	return t, nil
}
