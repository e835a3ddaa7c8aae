package resolver

import (
	"reflect"
	"testing"
	"time"

	"github.com/user/tripagent/internal/errors"
	"github.com/user/tripagent/internal/llmtypes"
	"github.com/user/tripagent/internal/session"
	"github.com/user/tripagent/internal/tools"
)

var fixedNow = func() time.Time { return time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC) }

func newTestResolver() *Resolver {
	return &Resolver{Airports: session.DefaultAirportMap(), Now: fixedNow}
}

func TestFill_HotelFromLowBudgetSession(t *testing.T) {
	r := newTestResolver()
	sess := session.Context{Destination: "Paris", Budget: session.BudgetLow}

	got := r.Fill(tools.KindHotels, map[string]interface{}{"check_in_date": "2025-07-01"}, sess)

	want := map[string]interface{}{
		"q":              "Paris",
		"check_in_date":  "2025-07-01",
		"check_out_date": "2025-06-15",
		"adults":         2,
		"rooms":          1,
		"hotel_class":    "1,2",
		"sort_by":        "3",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Fill() = %v, want %v", got, want)
	}
}

func TestFill_HotelTierMapping(t *testing.T) {
	r := newTestResolver()

	tests := []struct {
		budget    session.BudgetTier
		wantClass string
		wantSort  string
	}{
		{session.BudgetLow, "1,2", "3"},
		{session.BudgetMedium, "3,4", "8"},
		{session.BudgetHigh, "5", "8"},
		{"", "3,4", "8"},
		{"extravagant", "3,4", "8"},
	}

	for _, tt := range tests {
		t.Run(string(tt.budget), func(t *testing.T) {
			got := r.Fill(tools.KindHotels, nil, session.Context{Destination: "Rome", Budget: tt.budget})
			if got["hotel_class"] != tt.wantClass {
				t.Errorf("hotel_class = %v, want %s", got["hotel_class"], tt.wantClass)
			}
			if got["sort_by"] != tt.wantSort {
				t.Errorf("sort_by = %v, want %s", got["sort_by"], tt.wantSort)
			}
		})
	}
}

func TestFill_ExplicitArgumentsWin(t *testing.T) {
	r := newTestResolver()
	sess := session.Context{
		Origin:      "Madrid",
		Destination: "Paris",
		StartDate:   "2025-07-01",
		EndDate:     "2025-07-05",
		Budget:      session.BudgetHigh,
		Adults:      session.IntPtr(3),
	}
	args := map[string]interface{}{
		"q":           "Versailles",
		"hotel_class": "2",
		"adults":      1,
	}

	got := r.Fill(tools.KindHotels, args, sess)
	if got["q"] != "Versailles" || got["hotel_class"] != "2" || got["adults"] != 1 {
		t.Errorf("Expected explicit arguments to be kept, got %v", got)
	}
	if got["check_in_date"] != "2025-07-01" || got["check_out_date"] != "2025-07-05" {
		t.Errorf("Expected session dates, got %v / %v", got["check_in_date"], got["check_out_date"])
	}
	if len(args) != 3 {
		t.Errorf("Expected input map to be left untouched, got %v", args)
	}
}

func TestFill_Flights(t *testing.T) {
	r := newTestResolver()
	sess := session.Context{
		Origin:      "madrid",
		Destination: "PARIS",
		StartDate:   "2025-07-01",
		EndDate:     "2025-07-05",
		Adults:      session.IntPtr(2),
		Children:    session.IntPtr(1),
	}

	got := r.Fill(tools.KindFlights, map[string]interface{}{}, sess)
	want := map[string]interface{}{
		"departure_airport": "MAD",
		"arrival_airport":   "CDG",
		"outbound_date":     "2025-07-01",
		"return_date":       "2025-07-05",
		"adults":            2,
		"children":          1,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Fill() = %v, want %v", got, want)
	}
}

func TestFill_FlightPartyDefaults(t *testing.T) {
	got := newTestResolver().Fill(tools.KindFlights, nil, session.Context{Origin: "Rome", Destination: "Lisbon"})
	if got["adults"] != 1 || got["children"] != 0 {
		t.Errorf("Expected 1 adult and 0 children, got %v / %v", got["adults"], got["children"])
	}
	if got["outbound_date"] != "2025-06-15" {
		t.Errorf("Expected injected today, got %v", got["outbound_date"])
	}
}

func TestFill_UnknownCityLeavesAirportUnset(t *testing.T) {
	got := newTestResolver().Fill(tools.KindFlights, nil, session.Context{Origin: "Unknownville", Destination: "Paris"})
	if _, ok := got["departure_airport"]; ok {
		t.Errorf("Expected departure_airport to stay unset, got %v", got["departure_airport"])
	}
	if got["arrival_airport"] != "CDG" {
		t.Errorf("Expected CDG, got %v", got["arrival_airport"])
	}
}

func TestFill_Aliases(t *testing.T) {
	got := newTestResolver().Fill(tools.KindHotels, map[string]interface{}{
		"query":      "Nice",
		"check_in":   "2025-08-01",
		"check_out":  "2025-08-03",
		"sort_order": "13",
	}, session.Context{Destination: "Paris"})

	if got["q"] != "Nice" || got["check_in_date"] != "2025-08-01" || got["check_out_date"] != "2025-08-03" || got["sort_by"] != "13" {
		t.Errorf("Expected aliases to map onto schema keys, got %v", got)
	}
	if _, ok := got["query"]; ok {
		t.Error("Expected alias key to be removed")
	}
}

func TestFill_Idempotent(t *testing.T) {
	r := newTestResolver()
	sess := session.Context{Origin: "Berlin", Destination: "Vienna", Budget: session.BudgetMedium}
	args := map[string]interface{}{"adults": 2}

	for _, kind := range tools.Kinds {
		first := r.Fill(kind, args, sess)
		second := r.Fill(kind, args, sess)
		if !reflect.DeepEqual(first, second) {
			t.Errorf("%s: resolving twice differs: %v vs %v", kind, first, second)
		}
		again := r.Fill(kind, first, sess)
		if !reflect.DeepEqual(first, again) {
			t.Errorf("%s: resolving a resolved map changed it: %v vs %v", kind, first, again)
		}
	}
}

func TestResolve_Hotels(t *testing.T) {
	r := newTestResolver()
	sess := session.Context{Destination: "Paris", StartDate: "2025-07-01", EndDate: "2025-07-05", Budget: session.BudgetLow}

	req, err := r.Resolve(llmtypes.ToolCall{
		ID:   "c1",
		Name: "hotels_finder",
		Arguments: map[string]interface{}{
			"adults":  "3",
			"rooms":   float64(2),
			"sort_by": float64(8),
		},
	}, sess)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if req.Kind != tools.KindHotels || req.Hotels == nil {
		t.Fatalf("Expected hotel request, got %+v", req)
	}
	want := tools.HotelsInput{
		Query:        "Paris",
		CheckInDate:  "2025-07-01",
		CheckOutDate: "2025-07-05",
		Adults:       3,
		Rooms:        2,
		HotelClass:   "1,2",
		SortBy:       "8",
	}
	if *req.Hotels != want {
		t.Errorf("Resolve() = %+v, want %+v", *req.Hotels, want)
	}
}

func TestResolve_FlightsUnknownOrigin(t *testing.T) {
	r := newTestResolver()
	sess := session.Context{Origin: "Unknownville", Destination: "Paris", StartDate: "2025-07-01", EndDate: "2025-07-05"}

	_, err := r.Resolve(llmtypes.ToolCall{ID: "c1", Name: "flights_finder"}, sess)
	if err == nil {
		t.Fatal("Expected validation failure for unmapped origin")
	}
	verr, ok := err.(*errors.ArgumentValidationError)
	if !ok {
		t.Fatalf("Expected *ArgumentValidationError, got %T", err)
	}
	if verr.Field != "departure_airport" {
		t.Errorf("Expected failure on departure_airport, got %s", verr.Field)
	}
}

func TestResolve_NormalizesAirportCase(t *testing.T) {
	r := newTestResolver()
	req, err := r.Resolve(llmtypes.ToolCall{
		Name: "flights_finder",
		Arguments: map[string]interface{}{
			"departure_airport": "mad",
			"arrival_airport":   " cdg ",
			"outbound_date":     "2025-07-01",
			"return_date":       "2025-07-05",
		},
	}, session.Context{})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if req.Flights.DepartureAirport != "MAD" || req.Flights.ArrivalAirport != "CDG" {
		t.Errorf("Expected uppercased codes, got %+v", req.Flights)
	}
}

func TestResolve_Errors(t *testing.T) {
	r := newTestResolver()
	sess := session.Context{Destination: "Paris", StartDate: "2025-07-01", EndDate: "2025-07-05"}

	tests := []struct {
		name      string
		call      llmtypes.ToolCall
		wantField string
	}{
		{"wrong type", llmtypes.ToolCall{Name: "hotels_finder", Arguments: map[string]interface{}{"adults": "two"}}, "adults"},
		{"negative children", llmtypes.ToolCall{Name: "hotels_finder", Arguments: map[string]interface{}{"children": -1}}, "children"},
		{"bad date", llmtypes.ToolCall{Name: "hotels_finder", Arguments: map[string]interface{}{"check_in_date": "next monday"}}, "check_in_date"},
		{"fractional adults", llmtypes.ToolCall{Name: "flights_finder", Arguments: map[string]interface{}{"departure_airport": "JFK", "arrival_airport": "CDG", "adults": 2.7}}, "adults"},
		{"boolean children", llmtypes.ToolCall{Name: "flights_finder", Arguments: map[string]interface{}{"departure_airport": "JFK", "arrival_airport": "CDG", "children": true}}, "children"},
		{"fractional rooms", llmtypes.ToolCall{Name: "hotels_finder", Arguments: map[string]interface{}{"rooms": 1.5}}, "rooms"},
		{"unparsed arguments", llmtypes.ToolCall{Name: "flights_finder", Arguments: map[string]interface{}{"_unparsed": "{oops"}}, "arguments"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Resolve(tt.call, sess)
			verr, ok := err.(*errors.ArgumentValidationError)
			if !ok {
				t.Fatalf("Expected *ArgumentValidationError, got %T: %v", err, err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("Expected field %s, got %s (%v)", tt.wantField, verr.Field, err)
			}
		})
	}
}

func TestResolve_UnknownTool(t *testing.T) {
	_, err := newTestResolver().Resolve(llmtypes.ToolCall{Name: "weather_finder"}, session.Context{})
	if _, ok := err.(*errors.InvalidToolRequestError); !ok {
		t.Errorf("Expected *InvalidToolRequestError, got %T", err)
	}
}
