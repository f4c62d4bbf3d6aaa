package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// RouteFare overrides the default seat price for one departure/arrival pair
type RouteFare struct {
	From      string `yaml:"from"`
	To        string `yaml:"to"`
	SeatPrice int64  `yaml:"seat_price"`
}

// FareTable is the server-held price list. Prices are in the smallest currency subunit.
type FareTable struct {
	Currency  string      `yaml:"currency"`
	SeatPrice int64       `yaml:"seat_price"`
	Stops     []string    `yaml:"stops"`
	Routes    []RouteFare `yaml:"routes"`
}

// DefaultFareTable mirrors the stops offered by the booking form: 100 INR per seat
func DefaultFareTable() *FareTable {
	return &FareTable{
		Currency:  "INR",
		SeatPrice: 10000,
		Stops:     []string{"City A", "City B", "City C"},
	}
}

// LoadFareTable reads the fare table from path, or returns the default table when path is empty
func LoadFareTable(path string) (*FareTable, error) {
	if path == "" {
		return DefaultFareTable(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fare table: %w", err)
	}

	return ParseFareTable(data)
}

// ParseFareTable decodes and validates a YAML fare table
func ParseFareTable(data []byte) (*FareTable, error) {
	table := &FareTable{}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(table); err != nil {
		return nil, fmt.Errorf("failed to parse fare table: %w", err)
	}

	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}

// Validate checks the table is usable for pricing
func (t *FareTable) Validate() error {
	if len(t.Currency) != 3 {
		return fmt.Errorf("fare table currency must be a 3-letter code, got %q", t.Currency)
	}
	t.Currency = strings.ToUpper(t.Currency)

	if t.SeatPrice <= 0 {
		return fmt.Errorf("fare table seat_price must be positive")
	}
	if len(t.Stops) < 2 {
		return fmt.Errorf("fare table needs at least two stops")
	}

	seen := make(map[string]bool, len(t.Stops))
	for _, stop := range t.Stops {
		if strings.TrimSpace(stop) == "" {
			return fmt.Errorf("fare table contains an empty stop name")
		}
		if seen[stop] {
			return fmt.Errorf("fare table lists stop %q twice", stop)
		}
		seen[stop] = true
	}

	for _, route := range t.Routes {
		if !seen[route.From] || !seen[route.To] {
			return fmt.Errorf("route %s -> %s references an unknown stop", route.From, route.To)
		}
		if route.SeatPrice <= 0 {
			return fmt.Errorf("route %s -> %s seat_price must be positive", route.From, route.To)
		}
	}

	return nil
}

// HasStop reports whether name is a configured stop
func (t *FareTable) HasStop(name string) bool {
	for _, stop := range t.Stops {
		if stop == name {
			return true
		}
	}
	return false
}

// SeatPriceFor returns the per-seat price for a route, falling back to the default price
func (t *FareTable) SeatPriceFor(from, to string) int64 {
	for _, route := range t.Routes {
		if route.From == from && route.To == to {
			return route.SeatPrice
		}
	}
	return t.SeatPrice
}

// Amount computes the chargeable amount for a number of seats
func (t *FareTable) Amount(seats int, from, to string) (int64, error) {
	if seats < 1 {
		return 0, fmt.Errorf("seats must be at least 1")
	}
	return int64(seats) * t.SeatPriceFor(from, to), nil
}
