// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package toolbackend

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gnoagent/internal/exterrors"
	"gnoagent/internal/venues"
)

const dateLayout = "2006-01-02"

type searchRestaurantsArgs struct {
	Location   string   `json:"location"`
	Cuisine    string   `json:"cuisine"`
	PriceLevel int      `json:"price_level"`
	PartySize  int      `json:"party_size"`
	Vibes      []string `json:"vibes"`
}

type RestaurantResults struct {
	Restaurants []venues.Restaurant `json:"restaurants"`
	Total       int                 `json:"total"`
	PartySize   int                 `json:"partySize"`
	SearchedAt  time.Time           `json:"searchedAt"`
	Source      string              `json:"source"`
}

func (b *Backend) searchRestaurants(_ context.Context, raw json.RawMessage) (any, error) {
	args, err := decode[searchRestaurantsArgs](raw)
	if err != nil {
		return nil, err
	}

	restaurants := b.data.SearchRestaurants(venues.RestaurantQuery{
		Location: args.Location,
		Cuisine:  args.Cuisine,
		MaxPrice: args.PriceLevel,
		Vibes:    args.Vibes,
	})

	return &RestaurantResults{
		Restaurants: nonNil(restaurants),
		Total:       len(restaurants),
		PartySize:   args.PartySize,
		SearchedAt:  b.now(),
		Source:      Source,
	}, nil
}

type searchBarsArgs struct {
	Location   string   `json:"location"`
	Vibes      []string `json:"vibes"`
	PriceLevel int      `json:"price_level"`
	OpenLate   bool     `json:"open_late"`
}

type BarResults struct {
	Bars       []venues.Bar `json:"bars"`
	Total      int          `json:"total"`
	SearchedAt time.Time    `json:"searchedAt"`
	Source     string       `json:"source"`
}

func (b *Backend) searchBars(_ context.Context, raw json.RawMessage) (any, error) {
	args, err := decode[searchBarsArgs](raw)
	if err != nil {
		return nil, err
	}

	bars := b.data.SearchBars(venues.BarQuery{
		Location: args.Location,
		Vibes:    args.Vibes,
		MaxPrice: args.PriceLevel,
		OpenLate: args.OpenLate,
	})

	return &BarResults{
		Bars:       nonNil(bars),
		Total:      len(bars),
		SearchedAt: b.now(),
		Source:     Source,
	}, nil
}

type searchEventsArgs struct {
	Location   string   `json:"location"`
	Date       string   `json:"date"`
	Categories []string `json:"categories"`
	MaxPrice   *float64 `json:"max_price"`
}

type EventResults struct {
	Events     []venues.Event `json:"events"`
	Total      int            `json:"total"`
	Date       string         `json:"date"`
	SearchedAt time.Time      `json:"searchedAt"`
	Source     string         `json:"source"`
}

func (b *Backend) searchEvents(_ context.Context, raw json.RawMessage) (any, error) {
	args, err := decode[searchEventsArgs](raw)
	if err != nil {
		return nil, err
	}

	now := b.now()
	day, err := time.ParseInLocation(dateLayout, args.Date, now.Location())
	if err != nil {
		return nil, exterrors.Validation(
			exterrors.CodeInvalidToolArguments,
			fmt.Sprintf("date %q is not in YYYY-MM-DD format", args.Date),
			"",
		)
	}

	query := venues.EventQuery{
		Location:   args.Location,
		Categories: args.Categories,
		Day:        day,
	}
	if args.MaxPrice != nil {
		query.MaxTicketMin = *args.MaxPrice
		query.HasMaxPrice = true
	}

	events := b.data.SearchEvents(now, query)

	return &EventResults{
		Events:     nonNil(events),
		Total:      len(events),
		Date:       args.Date,
		SearchedAt: now,
		Source:     Source,
	}, nil
}

func nonNil[T any](values []T) []T {
	if values == nil {
		return []T{}
	}
	return values
}
