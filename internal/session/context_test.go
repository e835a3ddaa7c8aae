package session

import (
	"strings"
	"testing"
)

func TestParseBudgetTier(t *testing.T) {
	tests := []struct {
		in   string
		want BudgetTier
	}{
		{"low", BudgetLow},
		{"Low", BudgetLow},
		{"  HIGH ", BudgetHigh},
		{"medium", BudgetMedium},
		{"", BudgetMedium},
		{"luxury", BudgetMedium},
		{"cheap", BudgetMedium},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseBudgetTier(tt.in); got != tt.want {
				t.Errorf("ParseBudgetTier(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// Every tier, including values outside the known set, maps to a hotel class
// and sort order.
func TestBudgetTier_HotelMappingIsTotal(t *testing.T) {
	tests := []struct {
		tier      BudgetTier
		wantClass string
		wantSort  string
	}{
		{BudgetLow, "1,2", "3"},
		{BudgetMedium, "3,4", "8"},
		{BudgetHigh, "5", "8"},
		{BudgetTier("LOW"), "1,2", "3"},
		{BudgetTier(""), "3,4", "8"},
		{BudgetTier("premium"), "3,4", "8"},
	}

	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			if got := tt.tier.HotelClass(); got != tt.wantClass {
				t.Errorf("HotelClass() = %q, want %q", got, tt.wantClass)
			}
			if got := tt.tier.SortOrder(); got != tt.wantSort {
				t.Errorf("SortOrder() = %q, want %q", got, tt.wantSort)
			}
		})
	}
}

func TestContext_Validate(t *testing.T) {
	tests := []struct {
		name    string
		ctx     Context
		wantErr string
	}{
		{"valid", Context{Destination: "Paris", StartDate: "2025-07-01", EndDate: "2025-07-05"}, ""},
		{"no dates", Context{Destination: "Paris"}, ""},
		{"missing destination", Context{Origin: "Madrid"}, "destination is required"},
		{"bad start", Context{Destination: "Paris", StartDate: "07/01/2025"}, "start date"},
		{"bad end", Context{Destination: "Paris", EndDate: "tomorrow"}, "end date"},
		{"end before start", Context{Destination: "Paris", StartDate: "2025-07-05", EndDate: "2025-07-01"}, "before start date"},
		{"negative adults", Context{Destination: "Paris", Adults: IntPtr(-1)}, "adults"},
		{"negative children", Context{Destination: "Paris", Children: IntPtr(-2)}, "children"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ctx.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestContext_Prompt(t *testing.T) {
	ctx := Context{
		Origin:      "Madrid",
		Destination: "Paris",
		StartDate:   "2025-07-01",
		EndDate:     "2025-07-05",
		Budget:      BudgetLow,
		Interests:   "food, museums",
		Avoid:       "crowds",
		Adults:      IntPtr(2),
	}

	prompt := ctx.Prompt()

	for _, want := range []string{
		"Create a personalized itinerary.",
		"origin: Madrid",
		"Destination: Paris",
		"Start Date: 2025-07-01",
		"End Date: 2025-07-05",
		"Budget: Low",
		"Interests: food, museums",
		"Avoid: crowds",
		"children: 0",
		"adult: 2",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Expected prompt to contain %q, got:\n%s", want, prompt)
		}
	}
}

func TestContext_PromptDefaultsBudget(t *testing.T) {
	prompt := Context{Destination: "Rome"}.Prompt()
	if !strings.Contains(prompt, "Budget: Medium") {
		t.Errorf("Expected unset budget to render as Medium, got:\n%s", prompt)
	}
	if !strings.Contains(prompt, "adult: 1") {
		t.Errorf("Expected unset adults to render as 1, got:\n%s", prompt)
	}
}

func TestContext_Clone(t *testing.T) {
	orig := Context{Destination: "Paris", Adults: IntPtr(2), Children: IntPtr(1)}
	cp := orig.Clone()

	*cp.Adults = 5
	*cp.Children = 3
	if *orig.Adults != 2 || *orig.Children != 1 {
		t.Errorf("Expected clone to share no counts with original, got adults=%d children=%d", *orig.Adults, *orig.Children)
	}
	if cp.Destination != "Paris" {
		t.Errorf("Expected destination to be copied, got %q", cp.Destination)
	}
}
