package session

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
)

//go:embed cities_iata.json
var embeddedAirports []byte

// AirportMap is an immutable lowercase-city to IATA code mapping. It is safe
// for concurrent readers; nothing writes to it after construction.
type AirportMap struct {
	codes map[string]string
}

var (
	defaultAirports     *AirportMap
	defaultAirportsOnce sync.Once
)

// DefaultAirportMap returns the built-in mapping, parsed once per process
func DefaultAirportMap() *AirportMap {
	defaultAirportsOnce.Do(func() {
		m, err := ParseAirportMap(embeddedAirports)
		if err != nil {
			panic(fmt.Sprintf("embedded airport map is invalid: %v", err))
		}
		defaultAirports = m
	})
	return defaultAirports
}

// LoadAirportMap reads a JSON object of {"city": "IATA"} from path
func LoadAirportMap(path string) (*AirportMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read airport map: %w", err)
	}
	m, err := ParseAirportMap(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse airport map %s: %w", path, err)
	}
	return m, nil
}

// ParseAirportMap builds a map from JSON, normalizing city keys and codes
func ParseAirportMap(data []byte) (*AirportMap, error) {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return NewAirportMap(raw), nil
}

// NewAirportMap copies entries into a new map
func NewAirportMap(entries map[string]string) *AirportMap {
	codes := make(map[string]string, len(entries))
	for city, code := range entries {
		codes[normalizeCity(city)] = strings.ToUpper(strings.TrimSpace(code))
	}
	return &AirportMap{codes: codes}
}

// Lookup returns the IATA code for city, matching case-insensitively
func (m *AirportMap) Lookup(city string) (string, bool) {
	if m == nil {
		return "", false
	}
	code, ok := m.codes[normalizeCity(city)]
	if !ok || code == "" {
		return "", false
	}
	return code, true
}

// Len returns the number of mapped cities
func (m *AirportMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.codes)
}

func normalizeCity(city string) string {
	return strings.Join(strings.Fields(strings.ToLower(city)), " ")
}
