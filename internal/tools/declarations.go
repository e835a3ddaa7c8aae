package tools

import (
	"github.com/user/tripagent/internal/llmtypes"
)

// Declarations returns the tool schemas sent to the reasoning provider
func Declarations() []llmtypes.ToolDefinition {
	return []llmtypes.ToolDefinition{
		{
			Name:        string(KindHotels),
			Description: "Find hotels using the Google Hotels engine. Returns name, rating, price per night, total price and a link for each property.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"q":              stringProp("Location of the hotel, usually the destination city"),
					"check_in_date":  stringProp("Check-in date in YYYY-MM-DD format"),
					"check_out_date": stringProp("Check-out date in YYYY-MM-DD format"),
					"adults":         intProp("Number of adults. Default 2"),
					"children":       intProp("Number of children. Default 0"),
					"rooms":          intProp("Number of rooms. Default 1"),
					"hotel_class":    stringProp("Comma-separated hotel classes, e.g. \"3,4\" for 3 and 4 star"),
					"sort_by":        stringProp("Sort order: 3 lowest price, 8 highest rating, 13 most reviewed"),
				},
				"required": []string{"q", "check_in_date", "check_out_date"},
			},
		},
		{
			Name:        string(KindFlights),
			Description: "Find flights using the Google Flights engine. Returns airline, price, departure and arrival airports and times for each option.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"departure_airport": stringProp("Departure airport IATA code, e.g. MAD"),
					"arrival_airport":   stringProp("Arrival airport IATA code, e.g. CDG"),
					"outbound_date":     stringProp("Outbound date in YYYY-MM-DD format"),
					"return_date":       stringProp("Return date in YYYY-MM-DD format"),
					"adults":            intProp("Number of adults. Default 1"),
					"children":          intProp("Number of children. Default 0"),
				},
				"required": []string{"departure_airport", "arrival_airport", "outbound_date"},
			},
		},
	}
}

func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": description}
}

func intProp(description string) map[string]interface{} {
	return map[string]interface{}{"type": "integer", "description": description}
}
