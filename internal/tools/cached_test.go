package tools

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/user/tripagent/internal/lookupcache"
)

type countingSearcher struct {
	hotelCalls  int
	flightCalls int
	fail        bool
}

func (s *countingSearcher) SearchHotels(ctx context.Context, in HotelsInput) (*HotelResults, error) {
	s.hotelCalls++
	if s.fail {
		return nil, fmt.Errorf("provider down")
	}
	return &HotelResults{Query: in.Query, Properties: []HotelProperty{{Name: "Hotel " + in.Query}}}, nil
}

func (s *countingSearcher) SearchFlights(ctx context.Context, in FlightsInput) (*FlightResults, error) {
	s.flightCalls++
	if s.fail {
		return nil, fmt.Errorf("provider down")
	}
	return &FlightResults{DepartureAirport: in.DepartureAirport, Best: []FlightOption{{Airline: "Iberia"}}}, nil
}

func TestCachedSearcher_ServesRepeatsFromCache(t *testing.T) {
	inner := &countingSearcher{}
	cached := NewCachedSearcher(inner, lookupcache.NewLRUCache(16, time.Minute))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := cached.SearchHotels(ctx, validHotels())
		if err != nil {
			t.Fatalf("SearchHotels failed: %v", err)
		}
		if res.Properties[0].Name != "Hotel Paris" {
			t.Errorf("Unexpected result %+v", res)
		}
	}
	if inner.hotelCalls != 1 {
		t.Errorf("Expected 1 provider call, got %d", inner.hotelCalls)
	}

	other := validHotels()
	other.Query = "Rome"
	if _, err := cached.SearchHotels(ctx, other); err != nil {
		t.Fatalf("SearchHotels failed: %v", err)
	}
	if inner.hotelCalls != 2 {
		t.Errorf("Expected a different query to miss, got %d calls", inner.hotelCalls)
	}

	for i := 0; i < 2; i++ {
		if _, err := cached.SearchFlights(ctx, validFlights()); err != nil {
			t.Fatalf("SearchFlights failed: %v", err)
		}
	}
	if inner.flightCalls != 1 {
		t.Errorf("Expected 1 flight provider call, got %d", inner.flightCalls)
	}
}

func TestCachedSearcher_DoesNotCacheErrors(t *testing.T) {
	inner := &countingSearcher{fail: true}
	cached := NewCachedSearcher(inner, lookupcache.NewLRUCache(16, time.Minute))

	for i := 0; i < 2; i++ {
		if _, err := cached.SearchHotels(context.Background(), validHotels()); err == nil {
			t.Fatal("Expected error to pass through")
		}
	}
	if inner.hotelCalls != 2 {
		t.Errorf("Expected every failing call to reach the provider, got %d", inner.hotelCalls)
	}
}

func TestRegistry_Execute(t *testing.T) {
	inner := &countingSearcher{}
	reg := NewRegistry(inner)
	ctx := context.Background()

	res, err := reg.Execute(ctx, HotelRequest(validHotels()))
	if err != nil {
		t.Fatalf("Execute hotels failed: %v", err)
	}
	if _, ok := res.(*HotelResults); !ok {
		t.Errorf("Expected *HotelResults, got %T", res)
	}

	res, err = reg.Execute(ctx, FlightRequest(validFlights()))
	if err != nil {
		t.Fatalf("Execute flights failed: %v", err)
	}
	if _, ok := res.(*FlightResults); !ok {
		t.Errorf("Expected *FlightResults, got %T", res)
	}

	bad := validFlights()
	bad.ArrivalAirport = ""
	if _, err := reg.Execute(ctx, FlightRequest(bad)); err == nil {
		t.Error("Expected invalid request to be rejected before dispatch")
	}
	if inner.flightCalls != 1 {
		t.Errorf("Expected one flight dispatch, got %d", inner.flightCalls)
	}

	empty := &Registry{}
	if _, err := empty.Execute(ctx, HotelRequest(validHotels())); err == nil {
		t.Error("Expected error when no provider is configured")
	}
}
