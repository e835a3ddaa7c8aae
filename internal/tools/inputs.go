package tools

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/user/tripagent/internal/errors"
)

const dateLayout = "2006-01-02"

var iataPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// SortBy values accepted by the hotel lookup
var validSortBy = map[string]string{
	"3":  "lowest price",
	"8":  "highest rating",
	"13": "most reviewed",
}

// HotelsInput is the typed argument set of the hotel lookup
type HotelsInput struct {
	Query        string `mapstructure:"q" json:"q"`
	CheckInDate  string `mapstructure:"check_in_date" json:"check_in_date"`
	CheckOutDate string `mapstructure:"check_out_date" json:"check_out_date"`
	Adults       int    `mapstructure:"adults" json:"adults"`
	Children     int    `mapstructure:"children" json:"children"`
	Rooms        int    `mapstructure:"rooms" json:"rooms"`
	HotelClass   string `mapstructure:"hotel_class" json:"hotel_class"`
	SortBy       string `mapstructure:"sort_by" json:"sort_by"`
}

// Validate checks required fields, dates, counts and enumerations
func (in HotelsInput) Validate() error {
	tool := string(KindHotels)
	if strings.TrimSpace(in.Query) == "" {
		return errors.NewArgumentValidationError(tool, "q", "is required")
	}
	checkIn, err := parseDate(tool, "check_in_date", in.CheckInDate)
	if err != nil {
		return err
	}
	checkOut, err := parseDate(tool, "check_out_date", in.CheckOutDate)
	if err != nil {
		return err
	}
	if checkOut.Before(checkIn) {
		return errors.NewArgumentValidationError(tool, "check_out_date", "must not be before check_in_date")
	}
	if in.Adults < 1 {
		return errors.NewArgumentValidationError(tool, "adults", "must be at least 1")
	}
	if in.Children < 0 {
		return errors.NewArgumentValidationError(tool, "children", "must not be negative")
	}
	if in.Rooms < 1 {
		return errors.NewArgumentValidationError(tool, "rooms", "must be at least 1")
	}
	if in.HotelClass != "" {
		for _, part := range strings.Split(in.HotelClass, ",") {
			p := strings.TrimSpace(part)
			if len(p) != 1 || p[0] < '1' || p[0] > '5' {
				return errors.NewArgumentValidationError(tool, "hotel_class",
					fmt.Sprintf("%q is not a comma-separated list of classes 1-5", in.HotelClass))
			}
		}
	}
	if in.SortBy != "" {
		if _, ok := validSortBy[in.SortBy]; !ok {
			return errors.NewArgumentValidationError(tool, "sort_by",
				fmt.Sprintf("%q is not one of 3, 8, 13", in.SortBy))
		}
	}
	return nil
}

// FlightsInput is the typed argument set of the flight lookup
type FlightsInput struct {
	DepartureAirport string `mapstructure:"departure_airport" json:"departure_airport"`
	ArrivalAirport   string `mapstructure:"arrival_airport" json:"arrival_airport"`
	OutboundDate     string `mapstructure:"outbound_date" json:"outbound_date"`
	ReturnDate       string `mapstructure:"return_date" json:"return_date"`
	Adults           int    `mapstructure:"adults" json:"adults"`
	Children         int    `mapstructure:"children" json:"children"`
}

// Validate checks airports, dates and party counts
func (in FlightsInput) Validate() error {
	tool := string(KindFlights)
	if err := validateAirport(tool, "departure_airport", in.DepartureAirport); err != nil {
		return err
	}
	if err := validateAirport(tool, "arrival_airport", in.ArrivalAirport); err != nil {
		return err
	}
	outbound, err := parseDate(tool, "outbound_date", in.OutboundDate)
	if err != nil {
		return err
	}
	if in.ReturnDate != "" {
		ret, err := parseDate(tool, "return_date", in.ReturnDate)
		if err != nil {
			return err
		}
		if ret.Before(outbound) {
			return errors.NewArgumentValidationError(tool, "return_date", "must not be before outbound_date")
		}
	}
	if in.Adults < 1 {
		return errors.NewArgumentValidationError(tool, "adults", "must be at least 1")
	}
	if in.Children < 0 {
		return errors.NewArgumentValidationError(tool, "children", "must not be negative")
	}
	return nil
}

func validateAirport(tool, field, code string) error {
	if code == "" {
		return errors.NewArgumentValidationError(tool, field, "is required")
	}
	if !iataPattern.MatchString(code) {
		return errors.NewArgumentValidationError(tool, field, fmt.Sprintf("%q is not a 3-letter IATA code", code))
	}
	return nil
}

func parseDate(tool, field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.NewArgumentValidationError(tool, field, "is required")
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, errors.NewArgumentValidationError(tool, field, fmt.Sprintf("%q is not a YYYY-MM-DD date", value))
	}
	return t, nil
}

func errMismatchedVariant(kind Kind) error {
	return errors.NewArgumentValidationError(string(kind), "kind", "request does not carry matching arguments")
}
