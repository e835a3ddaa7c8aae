package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var timeCellRe = regexp.MustCompile(`^\d{1,2}:\d{2}(\s*[-–]\s*\d{1,2}:\d{2})?$`)

// ItineraryValidator checks a planner answer against the day-by-day table
// layout the system preamble asks for. Findings are advisory: the answer is
// still shown to the user.
type ItineraryValidator struct{}

// NewItineraryValidator creates a new itinerary validator
func NewItineraryValidator() *ItineraryValidator {
	return &ItineraryValidator{}
}

// ValidationError represents one itinerary finding
type ValidationError struct {
	Line    int    `json:"line,omitempty"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// ValidationResult contains all findings
type ValidationResult struct {
	Errors []ValidationError
}

// IsValid returns true if there are no findings
func (vr *ValidationResult) IsValid() bool {
	return len(vr.Errors) == 0
}

// Error returns a combined error message
func (vr *ValidationResult) Error() string {
	if vr.IsValid() {
		return ""
	}

	var messages []string
	for _, err := range vr.Errors {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("itinerary validation failed:\n  - %s", strings.Join(messages, "\n  - "))
}

// Validate parses content and reports layout problems. It returns nil or a
// *ValidationResult.
func (v *ItineraryValidator) Validate(content string) error {
	result := v.Check(content)
	if !result.IsValid() {
		return result
	}
	return nil
}

// Check is Validate without the error wrapping
func (v *ItineraryValidator) Check(content string) *ValidationResult {
	result := &ValidationResult{Errors: []ValidationError{}}

	if err := v.checkCodeBlocks(content); err != nil {
		result.Errors = append(result.Errors, ValidationError{Message: err.Error()})
	}
	result.Errors = append(result.Errors, v.checkLinks(content)...)

	it := ParseItinerary([]byte(content))
	if len(it.Days) == 0 {
		result.Errors = append(result.Errors, ValidationError{Message: "no day headings found (expected \"**Day 1: ...**\")"})
		return result
	}
	result.Errors = append(result.Errors, v.checkDays(it)...)

	return result
}

// checkCodeBlocks validates code block markers
func (v *ItineraryValidator) checkCodeBlocks(content string) error {
	openCount := strings.Count(content, "```")
	if openCount%2 != 0 {
		return fmt.Errorf("unclosed code block detected (%d ``` markers, expected even number)", openCount)
	}
	return nil
}

func (v *ItineraryValidator) checkDays(it Itinerary) []ValidationError {
	var errs []ValidationError

	for i, day := range it.Days {
		if day.Number != i+1 {
			errs = append(errs, ValidationError{
				Line:    day.Line,
				Message: fmt.Sprintf("day %d out of sequence (expected day %d)", day.Number, i+1),
			})
		}

		if len(day.Rows) == 0 {
			errs = append(errs, ValidationError{
				Line:    day.Line,
				Message: fmt.Sprintf("day %d has no schedule table", day.Number),
			})
			continue
		}

		if missing := missingColumns(day.Header); len(missing) > 0 {
			errs = append(errs, ValidationError{
				Line:    day.Line,
				Message: fmt.Sprintf("day %d table is missing columns: %s", day.Number, strings.Join(missing, ", ")),
			})
		}

		for _, row := range day.Rows {
			if !validTimeCell(row.Time) {
				errs = append(errs, ValidationError{
					Line:    day.Line,
					Message: fmt.Sprintf("day %d has an invalid time %q (expected HH:MM or General)", day.Number, row.Time),
				})
			}
			if strings.TrimSpace(row.Activity) == "" {
				errs = append(errs, ValidationError{
					Line:    day.Line,
					Message: fmt.Sprintf("day %d has a row at %q without an activity", day.Number, row.Time),
				})
			}
		}
	}

	return errs
}

func missingColumns(header []string) []string {
	want := []string{"Time", "Activity", "Status"}
	var missing []string
	for i, name := range want {
		if i >= len(header) || !strings.EqualFold(strings.TrimSpace(header[i]), name) {
			missing = append(missing, name)
		}
	}
	return missing
}

func validTimeCell(s string) bool {
	s = strings.TrimSpace(s)
	return strings.EqualFold(s, "general") || timeCellRe.MatchString(s)
}

// checkLinks validates link formatting
func (v *ItineraryValidator) checkLinks(content string) []ValidationError {
	var errors []ValidationError
	lines := strings.Split(content, "\n")

	for i, line := range lines {
		openBracket := strings.Count(line, "[")
		closeBracket := strings.Count(line, "]")

		if openBracket != closeBracket {
			errors = append(errors, ValidationError{
				Line:    i + 1,
				Message: fmt.Sprintf("unmatched brackets ([ count: %d, ] count: %d)", openBracket, closeBracket),
			})
		}

		if strings.Contains(line, "](") {
			openParen := strings.Count(line, "(")
			closeParen := strings.Count(line, ")")
			if openParen != closeParen {
				errors = append(errors, ValidationError{
					Line:    i + 1,
					Message: fmt.Sprintf("unmatched parentheses in link (( count: %d, ) count: %d)", openParen, closeParen),
				})
			}
		}
	}

	return errors
}

// QuickCheck reports whether content looks like a day-by-day itinerary at all
func (v *ItineraryValidator) QuickCheck(content string) bool {
	if strings.Count(content, "```")%2 != 0 {
		return false
	}
	it := ParseItinerary([]byte(content))
	for _, day := range it.Days {
		if len(day.Rows) > 0 {
			return true
		}
	}
	return false
}
