// Package resolver completes partial tool-call arguments from the session's
// trip form and decodes them into typed tool inputs.
package resolver

import (
	stderrors "errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/user/tripagent/internal/errors"
	"github.com/user/tripagent/internal/llmtypes"
	"github.com/user/tripagent/internal/session"
	"github.com/user/tripagent/internal/tools"
)

// Defaults applied when neither the model nor the session supplies a value
const (
	DefaultHotelAdults    = 2
	DefaultRooms          = 1
	DefaultFlightAdults   = 1
	DefaultFlightChildren = 0
)

// aliases maps alternate argument names onto the canonical schema keys
var aliases = map[tools.Kind]map[string]string{
	tools.KindHotels: {
		"query":      "q",
		"check_in":   "check_in_date",
		"check_out":  "check_out_date",
		"sort_order": "sort_by",
	},
	tools.KindFlights: {
		"departure": "departure_airport",
		"arrival":   "arrival_airport",
	},
}

// Resolver fills gaps in tool arguments. It reads only the airport map and
// the session snapshot passed in, and the injected clock.
type Resolver struct {
	Airports *session.AirportMap
	Now      func() time.Time
}

// New creates a resolver using the wall clock
func New(airports *session.AirportMap) *Resolver {
	return &Resolver{Airports: airports, Now: time.Now}
}

func (r *Resolver) today() string {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	return now().Format(session.DateLayout)
}

// Fill returns a new argument map where every argument the model supplied is
// kept and missing ones are derived from sessCtx. args is not modified.
func (r *Resolver) Fill(kind tools.Kind, args map[string]interface{}, sessCtx session.Context) map[string]interface{} {
	out := make(map[string]interface{}, len(args)+8)
	for k, v := range args {
		out[k] = v
	}
	for alias, canonical := range aliases[kind] {
		if v, ok := out[alias]; ok {
			if _, set := out[canonical]; !set {
				out[canonical] = v
			}
			delete(out, alias)
		}
	}

	switch kind {
	case tools.KindHotels:
		r.fillHotels(out, sessCtx)
	case tools.KindFlights:
		r.fillFlights(out, sessCtx)
	}
	return out
}

func (r *Resolver) fillHotels(args map[string]interface{}, sessCtx session.Context) {
	setDefault(args, "q", sessCtx.Destination)
	setDefault(args, "check_in_date", r.dateOrToday(sessCtx.StartDate))
	setDefault(args, "check_out_date", r.dateOrToday(sessCtx.EndDate))
	setDefault(args, "adults", DefaultHotelAdults)
	setDefault(args, "rooms", DefaultRooms)
	setDefault(args, "hotel_class", sessCtx.Budget.HotelClass())
	setDefault(args, "sort_by", sessCtx.Budget.SortOrder())
}

func (r *Resolver) fillFlights(args map[string]interface{}, sessCtx session.Context) {
	// Unknown cities stay unset so validation reports them
	if code, ok := r.Airports.Lookup(sessCtx.Origin); ok {
		setDefault(args, "departure_airport", code)
	}
	if code, ok := r.Airports.Lookup(sessCtx.Destination); ok {
		setDefault(args, "arrival_airport", code)
	}
	setDefault(args, "outbound_date", r.dateOrToday(sessCtx.StartDate))
	setDefault(args, "return_date", r.dateOrToday(sessCtx.EndDate))
	setDefault(args, "adults", sessCtx.AdultsOr(DefaultFlightAdults))
	setDefault(args, "children", sessCtx.ChildrenOr(DefaultFlightChildren))
}

func (r *Resolver) dateOrToday(date string) string {
	if date != "" {
		return date
	}
	return r.today()
}

// setDefault fills key only when the model did not supply it
func setDefault(args map[string]interface{}, key string, value interface{}) {
	if _, ok := args[key]; ok {
		return
	}
	args[key] = value
}

// Resolve fills the call's arguments and decodes them into a validated,
// typed request. Unknown tool names yield *errors.InvalidToolRequestError;
// schema failures yield *errors.ArgumentValidationError.
func (r *Resolver) Resolve(call llmtypes.ToolCall, sessCtx session.Context) (tools.Request, error) {
	kind, ok := tools.ParseKind(call.Name)
	if !ok {
		return tools.Request{}, errors.NewInvalidToolRequestError(call.Name)
	}
	if raw, ok := call.Arguments["_unparsed"]; ok {
		return tools.Request{}, errors.NewArgumentValidationError(string(kind), "arguments", fmt.Sprintf("not a JSON object: %v", raw))
	}

	args := r.Fill(kind, call.Arguments, sessCtx)

	var req tools.Request
	switch kind {
	case tools.KindHotels:
		var in tools.HotelsInput
		if err := decode(kind, args, &in); err != nil {
			return tools.Request{}, err
		}
		in.Query = strings.TrimSpace(in.Query)
		req = tools.HotelRequest(in)
	case tools.KindFlights:
		var in tools.FlightsInput
		if err := decode(kind, args, &in); err != nil {
			return tools.Request{}, err
		}
		in.DepartureAirport = strings.ToUpper(strings.TrimSpace(in.DepartureAirport))
		in.ArrivalAirport = strings.ToUpper(strings.TrimSpace(in.ArrivalAirport))
		req = tools.FlightRequest(in)
	}

	if err := req.Validate(); err != nil {
		return tools.Request{}, err
	}
	return req, nil
}

// decode maps args onto the typed input. Numbers from JSON arrive as
// float64 and strings like "2" are common, so decoding is weakly typed.
// Keys outside the schema are ignored; counts must still be whole numbers.
func decode(kind tools.Kind, args map[string]interface{}, out interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		DecodeHook:       wholeNumbers,
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := dec.Decode(args); err != nil {
		return errors.NewArgumentValidationError(string(kind), fieldFromDecodeError(err), err.Error())
	}
	return nil
}

// wholeNumbers keeps weak decoding from truncating 2.7 to 2 or turning
// true into 1 for integer fields. Numeric strings still pass.
func wholeNumbers(from, to reflect.Type, data interface{}) (interface{}, error) {
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
	default:
		return data, nil
	}

	switch v := data.(type) {
	case bool:
		return nil, fmt.Errorf("expected a whole number, got %t", v)
	case float64:
		if v != math.Trunc(v) {
			return nil, fmt.Errorf("expected a whole number, got %v", v)
		}
	case float32:
		if float64(v) != math.Trunc(float64(v)) {
			return nil, fmt.Errorf("expected a whole number, got %v", v)
		}
	}
	return data, nil
}

func fieldFromDecodeError(err error) string {
	var derr *mapstructure.DecodeError
	if stderrors.As(err, &derr) && derr.Name() != "" {
		return derr.Name()
	}
	msg := err.Error()
	if i := strings.Index(msg, "'"); i >= 0 {
		if j := strings.Index(msg[i+1:], "'"); j >= 0 {
			return msg[i+1 : i+1+j]
		}
	}
	return "arguments"
}
