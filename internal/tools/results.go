package tools

// HotelResults is the normalized output of a hotel lookup
type HotelResults struct {
	Query      string          `json:"query"`
	Currency   string          `json:"currency,omitempty"`
	Properties []HotelProperty `json:"properties"`
}

// HotelProperty is one hotel offer
type HotelProperty struct {
	Name          string   `json:"name"`
	Rating        float64  `json:"rating,omitempty"`
	Reviews       int      `json:"reviews,omitempty"`
	HotelClass    int      `json:"hotel_class,omitempty"`
	PricePerNight string   `json:"price_per_night,omitempty"`
	TotalPrice    string   `json:"total_price,omitempty"`
	Link          string   `json:"link,omitempty"`
	Amenities     []string `json:"amenities,omitempty"`
}

// FlightResults is the normalized output of a flight lookup
type FlightResults struct {
	DepartureAirport string         `json:"departure_airport"`
	ArrivalAirport   string         `json:"arrival_airport"`
	Currency         string         `json:"currency,omitempty"`
	Best             []FlightOption `json:"best"`
	Other            []FlightOption `json:"other,omitempty"`
	SearchURL        string         `json:"search_url,omitempty"`
}

// FlightOption is one itinerary, possibly with connections
type FlightOption struct {
	Airline      string      `json:"airline"`
	Price        int         `json:"price,omitempty"`
	DurationMin  int         `json:"duration_min,omitempty"`
	Legs         []FlightLeg `json:"legs"`
	BookingToken string      `json:"booking_token,omitempty"`
}

// FlightLeg is a single flight segment
type FlightLeg struct {
	From         string `json:"from"`
	To           string `json:"to"`
	Depart       string `json:"depart"`
	Arrive       string `json:"arrive"`
	Airline      string `json:"airline,omitempty"`
	FlightNumber string `json:"flight_number,omitempty"`
}

// Empty reports whether the lookup matched nothing
func (r *HotelResults) Empty() bool {
	return r == nil || len(r.Properties) == 0
}

// Empty reports whether the lookup matched nothing
func (r *FlightResults) Empty() bool {
	return r == nil || (len(r.Best) == 0 && len(r.Other) == 0)
}
