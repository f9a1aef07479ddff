// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package venues is the Dallas restaurant, bar and event dataset behind the planner tools.
package venues

import (
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"gnoagent/internal/geo"
)

//go:embed dallas.yaml
var dallasYAML []byte

// DayHours are opening hours for one weekday in HH:MM, where a close earlier than open means after midnight.
type DayHours struct {
	Open  string `yaml:"open" json:"open"`
	Close string `yaml:"close" json:"close"`
}

type Restaurant struct {
	ID             string              `yaml:"id" json:"id"`
	Name           string              `yaml:"name" json:"name"`
	Cuisine        string              `yaml:"cuisine" json:"cuisine"`
	PriceLevel     int                 `yaml:"priceLevel" json:"priceLevel"`
	Rating         float64             `yaml:"rating" json:"rating"`
	ReviewCount    int                 `yaml:"reviewCount" json:"reviewCount"`
	Address        string              `yaml:"address" json:"address"`
	Neighborhood   string              `yaml:"neighborhood" json:"neighborhood"`
	City           string              `yaml:"city" json:"city"`
	Phone          string              `yaml:"phone" json:"phone,omitempty"`
	Hours          map[string]DayHours `yaml:"hours" json:"hours,omitempty"`
	Vibes          []string            `yaml:"vibes" json:"vibes"`
	DietaryOptions []string            `yaml:"dietaryOptions" json:"dietaryOptions,omitempty"`
	Features       []string            `yaml:"features" json:"features,omitempty"`
	YelpURL        string              `yaml:"yelpUrl" json:"yelpUrl,omitempty"`
	BookingURL     string              `yaml:"bookingUrl" json:"bookingUrl,omitempty"`
	Coordinates    geo.Point           `yaml:"coordinates" json:"coordinates"`
}

type Bar struct {
	ID           string              `yaml:"id" json:"id"`
	Name         string              `yaml:"name" json:"name"`
	BarType      string              `yaml:"barType" json:"barType"`
	PriceLevel   int                 `yaml:"priceLevel" json:"priceLevel"`
	Rating       float64             `yaml:"rating" json:"rating"`
	ReviewCount  int                 `yaml:"reviewCount" json:"reviewCount"`
	Address      string              `yaml:"address" json:"address"`
	Neighborhood string              `yaml:"neighborhood" json:"neighborhood"`
	City         string              `yaml:"city" json:"city"`
	Phone        string              `yaml:"phone" json:"phone,omitempty"`
	Hours        map[string]DayHours `yaml:"hours" json:"hours,omitempty"`
	Vibes        []string            `yaml:"vibes" json:"vibes"`
	MusicType    string              `yaml:"musicType" json:"musicType,omitempty"`
	DressCode    string              `yaml:"dressCode" json:"dressCode,omitempty"`
	Features     []string            `yaml:"features" json:"features,omitempty"`
	YelpURL      string              `yaml:"yelpUrl" json:"yelpUrl,omitempty"`
	Coordinates  geo.Point           `yaml:"coordinates" json:"coordinates"`
}

// RelativeTime is a local time expressed as whole days from today plus an hour of day.
type RelativeTime struct {
	DaysFromNow int `yaml:"daysFromNow"`
	Hour        int `yaml:"hour"`
}

// At resolves the relative time against now, in now's location.
func (r RelativeTime) At(now time.Time) time.Time {
	year, month, day := now.Date()
	return time.Date(year, month, day+r.DaysFromNow, r.Hour, 0, 0, 0, now.Location())
}

type TicketPrice struct {
	Min      float64 `yaml:"min" json:"min"`
	Max      float64 `yaml:"max" json:"max"`
	Currency string  `yaml:"currency" json:"currency"`
}

// EventTemplate is an event as stored in the dataset, with times relative to the current day.
type EventTemplate struct {
	ID             string       `yaml:"id"`
	Name           string       `yaml:"name"`
	EventType      string       `yaml:"eventType"`
	Venue          string       `yaml:"venue"`
	Address        string       `yaml:"address"`
	Neighborhood   string       `yaml:"neighborhood"`
	City           string       `yaml:"city"`
	Start          RelativeTime `yaml:"start"`
	End            RelativeTime `yaml:"end"`
	PriceLevel     int          `yaml:"priceLevel"`
	TicketPrice    TicketPrice  `yaml:"ticketPrice"`
	Description    string       `yaml:"description"`
	Vibes          []string     `yaml:"vibes"`
	AgeRestriction string       `yaml:"ageRestriction"`
	Features       []string     `yaml:"features"`
	TicketURL      string       `yaml:"ticketUrl"`
	Coordinates    geo.Point    `yaml:"coordinates"`
}

// Event is an event with concrete start and end times.
type Event struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	EventType      string      `json:"eventType"`
	Venue          string      `json:"venue"`
	Address        string      `json:"address"`
	Neighborhood   string      `json:"neighborhood"`
	City           string      `json:"city"`
	StartTime      time.Time   `json:"startTime"`
	EndTime        time.Time   `json:"endTime"`
	PriceLevel     int         `json:"priceLevel"`
	TicketPrice    TicketPrice `json:"ticketPrice"`
	Description    string      `json:"description"`
	Vibes          []string    `json:"vibes"`
	AgeRestriction string      `json:"ageRestriction,omitempty"`
	Features       []string    `json:"features,omitempty"`
	TicketURL      string      `json:"ticketUrl,omitempty"`
	Coordinates    geo.Point   `json:"coordinates"`
}

// Materialize resolves the template's relative times against now.
func (e EventTemplate) Materialize(now time.Time) Event {
	return Event{
		ID:             e.ID,
		Name:           e.Name,
		EventType:      e.EventType,
		Venue:          e.Venue,
		Address:        e.Address,
		Neighborhood:   e.Neighborhood,
		City:           e.City,
		StartTime:      e.Start.At(now),
		EndTime:        e.End.At(now),
		PriceLevel:     e.PriceLevel,
		TicketPrice:    e.TicketPrice,
		Description:    e.Description,
		Vibes:          e.Vibes,
		AgeRestriction: e.AgeRestriction,
		Features:       e.Features,
		TicketURL:      e.TicketURL,
		Coordinates:    e.Coordinates,
	}
}

// Dataset is the full venue and event catalog.
type Dataset struct {
	Restaurants []Restaurant    `yaml:"restaurants"`
	Bars        []Bar           `yaml:"bars"`
	Events      []EventTemplate `yaml:"events"`
}

// Dallas parses the embedded Dallas dataset.
func Dallas() (*Dataset, error) {
	return Parse(dallasYAML)
}

// Parse reads a dataset from YAML.
func Parse(data []byte) (*Dataset, error) {
	var dataset Dataset
	if err := yaml.Unmarshal(data, &dataset); err != nil {
		return nil, fmt.Errorf("parsing venue dataset: %w", err)
	}

	seen := map[string]bool{}
	check := func(id string) error {
		if id == "" {
			return fmt.Errorf("venue dataset contains an entry without an id")
		}
		if seen[id] {
			return fmt.Errorf("venue dataset contains duplicate id %q", id)
		}
		seen[id] = true
		return nil
	}

	for _, r := range dataset.Restaurants {
		if err := check(r.ID); err != nil {
			return nil, err
		}
	}
	for _, b := range dataset.Bars {
		if err := check(b.ID); err != nil {
			return nil, err
		}
	}
	for _, e := range dataset.Events {
		if err := check(e.ID); err != nil {
			return nil, err
		}
	}

	return &dataset, nil
}

// Venue is the bookable subset of a restaurant or bar.
type Venue struct {
	ID         string
	Name       string
	BookingURL string
}

// FindVenue looks up a restaurant or bar by id.
func (d *Dataset) FindVenue(id string) (Venue, bool) {
	for _, r := range d.Restaurants {
		if r.ID == id {
			return Venue{ID: r.ID, Name: r.Name, BookingURL: r.BookingURL}, true
		}
	}
	for _, b := range d.Bars {
		if b.ID == id {
			return Venue{ID: b.ID, Name: b.Name}, true
		}
	}

	return Venue{}, false
}
