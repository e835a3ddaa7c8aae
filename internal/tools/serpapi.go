package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/user/tripagent/internal/config"
	"github.com/user/tripagent/internal/errors"
	"github.com/user/tripagent/internal/llm"
)

// SerpAPIClient serves both lookups through the SerpAPI Google Hotels and
// Google Flights engines
type SerpAPIClient struct {
	retryClient *llm.RetryClient
	apiKey      string
	baseURL     string
	currency    string
	language    string
	country     string
	maxResults  int
}

// NewSerpAPIClient creates a lookup provider from the search configuration
func NewSerpAPIClient(cfg config.SearchConfig, retryClient *llm.RetryClient) *SerpAPIClient {
	if retryClient == nil {
		retryClient = llm.NewRetryClient(nil)
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://serpapi.com"
	}
	return &SerpAPIClient{
		retryClient: retryClient,
		apiKey:      cfg.APIKey,
		baseURL:     strings.TrimRight(baseURL, "/"),
		currency:    cfg.Currency,
		language:    cfg.Language,
		country:     cfg.Country,
		maxResults:  cfg.GetMaxResults(),
	}
}

type serpHotelsResponse struct {
	Error      string           `json:"error,omitempty"`
	Properties []serpHotelEntry `json:"properties"`
}

type serpHotelEntry struct {
	Name           string    `json:"name"`
	Link           string    `json:"link"`
	OverallRating  float64   `json:"overall_rating"`
	Reviews        int       `json:"reviews"`
	ExtractedClass int       `json:"extracted_hotel_class"`
	RatePerNight   *serpRate `json:"rate_per_night"`
	TotalRate      *serpRate `json:"total_rate"`
	Amenities      []string  `json:"amenities"`
}

type serpRate struct {
	Lowest string `json:"lowest"`
}

type serpFlightsResponse struct {
	Error          string             `json:"error,omitempty"`
	BestFlights    []serpFlightOption `json:"best_flights"`
	OtherFlights   []serpFlightOption `json:"other_flights"`
	SearchMetadata struct {
		GoogleFlightsURL string `json:"google_flights_url"`
	} `json:"search_metadata"`
}

type serpFlightOption struct {
	Flights       []serpFlightLeg `json:"flights"`
	TotalDuration int             `json:"total_duration"`
	Price         int             `json:"price"`
	BookingToken  string          `json:"booking_token"`
}

type serpFlightLeg struct {
	DepartureAirport serpAirport `json:"departure_airport"`
	ArrivalAirport   serpAirport `json:"arrival_airport"`
	Airline          string      `json:"airline"`
	FlightNumber     string      `json:"flight_number"`
}

type serpAirport struct {
	ID   string `json:"id"`
	Time string `json:"time"`
}

// SearchHotels queries the google_hotels engine
func (c *SerpAPIClient) SearchHotels(ctx context.Context, in HotelsInput) (*HotelResults, error) {
	tool := string(KindHotels)
	if err := in.Validate(); err != nil {
		return nil, err
	}

	params := c.baseParams("google_hotels")
	params.Set("q", in.Query)
	params.Set("check_in_date", in.CheckInDate)
	params.Set("check_out_date", in.CheckOutDate)
	params.Set("adults", strconv.Itoa(in.Adults))
	params.Set("children", strconv.Itoa(in.Children))
	params.Set("rooms", strconv.Itoa(in.Rooms))
	if in.HotelClass != "" {
		params.Set("hotel_class", in.HotelClass)
	}
	if in.SortBy != "" {
		params.Set("sort_by", in.SortBy)
	}

	var raw serpHotelsResponse
	if err := c.get(ctx, tool, params, &raw); err != nil {
		return nil, err
	}
	if raw.Error != "" && !isNoResults(raw.Error) {
		return nil, errors.NewAdapterError(tool, raw.Error, nil)
	}

	results := &HotelResults{Query: in.Query, Currency: c.currency, Properties: []HotelProperty{}}
	for _, p := range raw.Properties {
		if len(results.Properties) >= c.maxResults {
			break
		}
		prop := HotelProperty{
			Name:       p.Name,
			Rating:     p.OverallRating,
			Reviews:    p.Reviews,
			HotelClass: p.ExtractedClass,
			Link:       p.Link,
			Amenities:  p.Amenities,
		}
		if p.RatePerNight != nil {
			prop.PricePerNight = p.RatePerNight.Lowest
		}
		if p.TotalRate != nil {
			prop.TotalPrice = p.TotalRate.Lowest
		}
		results.Properties = append(results.Properties, prop)
	}
	return results, nil
}

// SearchFlights queries the google_flights engine
func (c *SerpAPIClient) SearchFlights(ctx context.Context, in FlightsInput) (*FlightResults, error) {
	tool := string(KindFlights)
	if err := in.Validate(); err != nil {
		return nil, err
	}

	params := c.baseParams("google_flights")
	params.Set("departure_id", in.DepartureAirport)
	params.Set("arrival_id", in.ArrivalAirport)
	params.Set("outbound_date", in.OutboundDate)
	if in.ReturnDate != "" {
		params.Set("return_date", in.ReturnDate)
		params.Set("type", "1") // round trip
	} else {
		params.Set("type", "2") // one way
	}
	params.Set("adults", strconv.Itoa(in.Adults))
	params.Set("children", strconv.Itoa(in.Children))

	var raw serpFlightsResponse
	if err := c.get(ctx, tool, params, &raw); err != nil {
		return nil, err
	}
	if raw.Error != "" && !isNoResults(raw.Error) {
		return nil, errors.NewAdapterError(tool, raw.Error, nil)
	}

	results := &FlightResults{
		DepartureAirport: in.DepartureAirport,
		ArrivalAirport:   in.ArrivalAirport,
		Currency:         c.currency,
		Best:             c.normalizeFlights(raw.BestFlights, c.maxResults),
		SearchURL:        raw.SearchMetadata.GoogleFlightsURL,
	}
	if remaining := c.maxResults - len(results.Best); remaining > 0 {
		results.Other = c.normalizeFlights(raw.OtherFlights, remaining)
	}
	return results, nil
}

func (c *SerpAPIClient) normalizeFlights(options []serpFlightOption, limit int) []FlightOption {
	out := []FlightOption{}
	for _, opt := range options {
		if len(out) >= limit {
			break
		}
		fo := FlightOption{
			Price:        opt.Price,
			DurationMin:  opt.TotalDuration,
			BookingToken: opt.BookingToken,
		}
		for _, leg := range opt.Flights {
			fo.Legs = append(fo.Legs, FlightLeg{
				From:         leg.DepartureAirport.ID,
				To:           leg.ArrivalAirport.ID,
				Depart:       leg.DepartureAirport.Time,
				Arrive:       leg.ArrivalAirport.Time,
				Airline:      leg.Airline,
				FlightNumber: leg.FlightNumber,
			})
		}
		if len(fo.Legs) > 0 {
			fo.Airline = fo.Legs[0].Airline
		}
		out = append(out, fo)
	}
	return out
}

func (c *SerpAPIClient) baseParams(engine string) url.Values {
	params := url.Values{}
	params.Set("engine", engine)
	params.Set("api_key", c.apiKey)
	if c.currency != "" {
		params.Set("currency", c.currency)
	}
	if c.language != "" {
		params.Set("hl", c.language)
	}
	if c.country != "" {
		params.Set("gl", c.country)
	}
	return params
}

func (c *SerpAPIClient) get(ctx context.Context, tool string, params url.Values, out interface{}) error {
	endpoint := c.baseURL + "/search.json?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return errors.NewAdapterError(tool, "failed to build request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.retryClient.Do(req)
	if err != nil {
		return errors.NewAdapterError(tool, "request failed", c.redact(err))
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.NewAdapterError(tool, "failed to read response", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			err := errors.NewAdapterStatusError(tool, resp.StatusCode, "")
			err.Message = fmt.Sprintf("%s lookup failed: %s", tool, apiErr.Error)
			return err
		}
		return errors.NewAdapterStatusError(tool, resp.StatusCode, truncate(string(body), 300))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return errors.NewAdapterError(tool, "unexpected response shape", err)
	}
	return nil
}

// redactedError hides the API key that transport errors quote from the
// request URL. Unwrap keeps context errors matchable.
type redactedError struct {
	msg   string
	cause error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.cause }

func (c *SerpAPIClient) redact(err error) error {
	if c.apiKey == "" {
		return err
	}
	msg := err.Error()
	for _, secret := range []string{url.QueryEscape(c.apiKey), c.apiKey} {
		msg = strings.ReplaceAll(msg, secret, "REDACTED")
	}
	if msg == err.Error() {
		return err
	}
	return &redactedError{msg: msg, cause: err}
}

// SerpAPI reports an empty search as an error string
func isNoResults(msg string) bool {
	return strings.Contains(strings.ToLower(msg), "hasn't returned any results")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
