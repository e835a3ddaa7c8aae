package validation

import (
	"strings"
	"testing"
)

const parisItinerary = `Here is your trip to Paris.

**Day 1: Arrival in Paris**
| Time | Activity | Status |
|------|----------|--------|
| 10:30 | Flight IB3436 Madrid → Paris CDG | Booked |
| General | Check in at Hotel Lumière | Planned |

**Day 2: Museums**

| Time | Activity | Status |
|------|----------|--------|
| 09:00 | Visit the [Louvre](https://www.louvre.fr) | Planned |
| 14:00-16:00 | Musée d'Orsay | Planned |
`

func TestParseItinerary(t *testing.T) {
	it := ParseItinerary([]byte(parisItinerary))

	if len(it.Days) != 2 {
		t.Fatalf("Expected 2 days, got %d", len(it.Days))
	}

	day1 := it.Days[0]
	if day1.Number != 1 || day1.Title != "Arrival in Paris" {
		t.Errorf("Unexpected day 1 heading: %+v", day1)
	}
	if day1.Line != 3 {
		t.Errorf("Expected day 1 on line 3, got %d", day1.Line)
	}
	if len(day1.Rows) != 2 {
		t.Fatalf("Expected 2 rows on day 1, got %d", len(day1.Rows))
	}
	if day1.Rows[0].Time != "10:30" || day1.Rows[0].Status != "Booked" {
		t.Errorf("Unexpected first row: %+v", day1.Rows[0])
	}
	if !strings.Contains(day1.Rows[0].Activity, "Madrid → Paris CDG") {
		t.Errorf("Expected flight activity, got %q", day1.Rows[0].Activity)
	}

	day2 := it.Days[1]
	if day2.Rows[0].Activity != "Visit the Louvre" {
		t.Errorf("Expected link text to be kept, got %q", day2.Rows[0].Activity)
	}
	if len(day2.Header) != 3 || day2.Header[0] != "Time" {
		t.Errorf("Unexpected header %v", day2.Header)
	}
}

func TestParseItinerary_HeadingStyles(t *testing.T) {
	tests := []struct {
		name      string
		markdown  string
		wantDays  int
		wantTitle string
	}{
		{
			name:      "atx heading",
			markdown:  "## Day 1 - Old Town\n\n| Time | Activity | Status |\n|---|---|---|\n| 09:00 | Walk | Planned |\n",
			wantDays:  1,
			wantTitle: "Old Town",
		},
		{
			name:      "bold without title",
			markdown:  "**Day 1**\n\n| Time | Activity | Status |\n|---|---|---|\n| 09:00 | Walk | Planned |\n",
			wantDays:  1,
			wantTitle: "",
		},
		{
			name:     "prose mentioning a day",
			markdown: "Day 3 is free for shopping.\n",
			wantDays: 0,
		},
		{
			name:     "table before any day",
			markdown: "| Time | Activity | Status |\n|---|---|---|\n| 09:00 | Walk | Planned |\n",
			wantDays: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := ParseItinerary([]byte(tt.markdown))
			if len(it.Days) != tt.wantDays {
				t.Fatalf("Expected %d days, got %d", tt.wantDays, len(it.Days))
			}
			if tt.wantDays > 0 && it.Days[0].Title != tt.wantTitle {
				t.Errorf("Expected title %q, got %q", tt.wantTitle, it.Days[0].Title)
			}
		})
	}
}

func TestItineraryValidator_Validate_Valid(t *testing.T) {
	validator := NewItineraryValidator()

	if err := validator.Validate(parisItinerary); err != nil {
		t.Errorf("Expected no error for a valid itinerary, got: %v", err)
	}
}

func TestItineraryValidator_Validate_Findings(t *testing.T) {
	validator := NewItineraryValidator()

	tests := []struct {
		name     string
		markdown string
		wantMsg  string
	}{
		{
			name:     "no days",
			markdown: "Sorry, I could not find any hotels in Paris for those dates.",
			wantMsg:  "no day headings found",
		},
		{
			name:     "day without table",
			markdown: "**Day 1: Arrival**\n\nRest at the hotel.\n",
			wantMsg:  "day 1 has no schedule table",
		},
		{
			name:     "out of sequence",
			markdown: "**Day 1**\n| Time | Activity | Status |\n|---|---|---|\n| 09:00 | Walk | Planned |\n\n**Day 3**\n| Time | Activity | Status |\n|---|---|---|\n| 09:00 | Walk | Planned |\n",
			wantMsg:  "day 3 out of sequence (expected day 2)",
		},
		{
			name:     "missing status column",
			markdown: "**Day 1**\n| Time | Activity |\n|---|---|\n| 09:00 | Walk |\n",
			wantMsg:  "missing columns: Status",
		},
		{
			name:     "bad time",
			markdown: "**Day 1**\n| Time | Activity | Status |\n|---|---|---|\n| morning | Walk | Planned |\n",
			wantMsg:  `invalid time "morning"`,
		},
		{
			name:     "empty activity",
			markdown: "**Day 1**\n| Time | Activity | Status |\n|---|---|---|\n| 09:00 |  | Planned |\n",
			wantMsg:  "without an activity",
		},
		{
			name:     "unclosed code block",
			markdown: parisItinerary + "\n```\nnotes\n",
			wantMsg:  "unclosed code block",
		},
		{
			name:     "broken link",
			markdown: parisItinerary + "\nSee [the Louvre](https://www.louvre.fr\n",
			wantMsg:  "unmatched parentheses",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.Validate(tt.markdown)
			if err == nil {
				t.Fatal("Expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Expected %q in error, got: %v", tt.wantMsg, err)
			}
			if _, ok := err.(*ValidationResult); !ok {
				t.Errorf("Expected *ValidationResult, got %T", err)
			}
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	withLine := &ValidationError{Line: 4, Message: "day 2 has no schedule table"}
	if withLine.Error() != "line 4: day 2 has no schedule table" {
		t.Errorf("Unexpected message %q", withLine.Error())
	}
	noLine := &ValidationError{Message: "no day headings found"}
	if noLine.Error() != "no day headings found" {
		t.Errorf("Unexpected message %q", noLine.Error())
	}
}

func TestItineraryValidator_QuickCheck(t *testing.T) {
	validator := NewItineraryValidator()

	tests := []struct {
		name     string
		markdown string
		want     bool
	}{
		{"itinerary", parisItinerary, true},
		{"plain text", "I need your travel dates first.", false},
		{"day without rows", "**Day 1**\n\nRelax.\n", false},
		{"unclosed code", parisItinerary + "```", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := validator.QuickCheck(tt.markdown); got != tt.want {
				t.Errorf("QuickCheck() = %v, want %v", got, tt.want)
			}
		})
	}
}
