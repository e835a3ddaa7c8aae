package session

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format for every trip date
const DateLayout = "2006-01-02"

// BudgetTier is the user's spending level
type BudgetTier string

const (
	BudgetLow    BudgetTier = "low"
	BudgetMedium BudgetTier = "medium"
	BudgetHigh   BudgetTier = "high"
)

// ParseBudgetTier normalizes a user-entered budget. Anything unrecognized,
// including the empty string, is treated as medium.
func ParseBudgetTier(s string) BudgetTier {
	switch BudgetTier(strings.ToLower(strings.TrimSpace(s))) {
	case BudgetLow:
		return BudgetLow
	case BudgetHigh:
		return BudgetHigh
	default:
		return BudgetMedium
	}
}

// HotelClass maps the tier to the hotel_class filter of the hotel lookup
func (b BudgetTier) HotelClass() string {
	switch ParseBudgetTier(string(b)) {
	case BudgetLow:
		return "1,2"
	case BudgetHigh:
		return "5"
	default:
		return "3,4"
	}
}

// SortOrder maps the tier to the hotel lookup sort_by parameter:
// "3" sorts by lowest price, "8" by highest rating.
func (b BudgetTier) SortOrder() string {
	if ParseBudgetTier(string(b)) == BudgetLow {
		return "3"
	}
	return "8"
}

// Context is the read-only snapshot of the trip form taken when a session
// starts. The planner never mutates it.
type Context struct {
	Origin      string     `json:"origin,omitempty"`
	Destination string     `json:"destination,omitempty"`
	StartDate   string     `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate     string     `json:"end_date,omitempty"`   // YYYY-MM-DD
	Budget      BudgetTier `json:"budget,omitempty"`
	Adults      *int       `json:"adults,omitempty"`
	Children    *int       `json:"children,omitempty"`
	Interests   string     `json:"interests,omitempty"`
	Avoid       string     `json:"avoid,omitempty"`
}

// IntPtr is a helper for building Context literals
func IntPtr(v int) *int {
	return &v
}

// Clone returns a copy that shares no pointers with c
func (c Context) Clone() Context {
	out := c
	if c.Adults != nil {
		out.Adults = IntPtr(*c.Adults)
	}
	if c.Children != nil {
		out.Children = IntPtr(*c.Children)
	}
	return out
}

// AdultsOr returns the party's adult count or def when unset
func (c Context) AdultsOr(def int) int {
	if c.Adults == nil {
		return def
	}
	return *c.Adults
}

// ChildrenOr returns the party's children count or def when unset
func (c Context) ChildrenOr(def int) int {
	if c.Children == nil {
		return def
	}
	return *c.Children
}

// Validate checks the form values a user typed
func (c Context) Validate() error {
	if strings.TrimSpace(c.Destination) == "" {
		return fmt.Errorf("destination is required")
	}
	var start, end time.Time
	var err error
	if c.StartDate != "" {
		if start, err = time.Parse(DateLayout, c.StartDate); err != nil {
			return fmt.Errorf("start date %q is not YYYY-MM-DD", c.StartDate)
		}
	}
	if c.EndDate != "" {
		if end, err = time.Parse(DateLayout, c.EndDate); err != nil {
			return fmt.Errorf("end date %q is not YYYY-MM-DD", c.EndDate)
		}
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return fmt.Errorf("end date %s is before start date %s", c.EndDate, c.StartDate)
	}
	if c.Adults != nil && *c.Adults < 0 {
		return fmt.Errorf("adults must not be negative")
	}
	if c.Children != nil && *c.Children < 0 {
		return fmt.Errorf("children must not be negative")
	}
	return nil
}

// Prompt renders the first user message of a planning session from the form
func (c Context) Prompt() string {
	budget := string(ParseBudgetTier(string(c.Budget)))
	var sb strings.Builder
	sb.WriteString("Create a personalized itinerary.\n")
	fmt.Fprintf(&sb, "origin: %s\n", c.Origin)
	fmt.Fprintf(&sb, "Destination: %s\n", c.Destination)
	fmt.Fprintf(&sb, "Start Date: %s\n", c.StartDate)
	fmt.Fprintf(&sb, "End Date: %s\n", c.EndDate)
	fmt.Fprintf(&sb, "Budget: %s\n", strings.ToUpper(budget[:1])+budget[1:])
	fmt.Fprintf(&sb, "Interests: %s\n", c.Interests)
	fmt.Fprintf(&sb, "Avoid: %s\n", c.Avoid)
	fmt.Fprintf(&sb, "children: %d\n", c.ChildrenOr(0))
	fmt.Fprintf(&sb, "adult: %d\n", c.AdultsOr(1))
	return sb.String()
}
