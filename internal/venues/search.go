// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package venues

import (
	"slices"
	"strconv"
	"strings"
	"time"
)

// DefaultLimit caps search results when a query sets no limit.
const DefaultLimit = 10

type RestaurantQuery struct {
	Location string
	Cuisine  string
	MaxPrice int
	Vibes    []string
	Limit    int
}

type BarQuery struct {
	Location string
	Vibes    []string
	MaxPrice int
	OpenLate bool
	Limit    int
}

type EventQuery struct {
	Location   string
	Categories []string
	Limit      int

	// Day keeps events starting on that calendar day. The zero value keeps all.
	Day time.Time

	// MaxTicketMin drops events whose cheapest ticket costs more, when HasMaxPrice is set.
	MaxTicketMin float64
	HasMaxPrice  bool
}

// SearchRestaurants filters restaurants and returns them best rated first.
func (d *Dataset) SearchRestaurants(q RestaurantQuery) []Restaurant {
	vibes := lowerAll(q.Vibes)
	cuisine := strings.ToLower(q.Cuisine)

	var results []Restaurant
	for _, r := range d.Restaurants {
		if !matchesLocation(q.Location, r.Neighborhood, r.City, r.Address) {
			continue
		}
		if cuisine != "" && !strings.Contains(strings.ToLower(r.Cuisine), cuisine) {
			continue
		}
		if q.MaxPrice > 0 && r.PriceLevel > q.MaxPrice {
			continue
		}
		if len(vibes) > 0 && !anyContains(r.Vibes, vibes) {
			continue
		}
		results = append(results, r)
	}

	slices.SortStableFunc(results, func(a, b Restaurant) int {
		return compareRating(a.Rating, b.Rating)
	})

	return truncate(results, q.Limit)
}

// SearchBars filters bars and returns them best rated first. Vibes match either the bar's vibes or its type.
func (d *Dataset) SearchBars(q BarQuery) []Bar {
	vibes := lowerAll(q.Vibes)

	var results []Bar
	for _, b := range d.Bars {
		if !matchesLocation(q.Location, b.Neighborhood, b.City, b.Address) {
			continue
		}
		if len(vibes) > 0 && !anyContains(b.Vibes, vibes) && !anyContains([]string{b.BarType}, vibes) {
			continue
		}
		if q.MaxPrice > 0 && b.PriceLevel > q.MaxPrice {
			continue
		}
		if q.OpenLate && !OpenPastMidnight(b.Hours["friday"]) {
			continue
		}
		results = append(results, b)
	}

	slices.SortStableFunc(results, func(a, b Bar) int {
		return compareRating(a.Rating, b.Rating)
	})

	return truncate(results, q.Limit)
}

// SearchEvents materializes events against now, filters them and returns them soonest first.
// Categories match either the event's vibes or its type.
func (d *Dataset) SearchEvents(now time.Time, q EventQuery) []Event {
	categories := lowerAll(q.Categories)

	var results []Event
	for _, template := range d.Events {
		e := template.Materialize(now)
		if !matchesLocation(q.Location, e.Neighborhood, e.City, e.Venue, e.Address) {
			continue
		}
		if len(categories) > 0 && !anyContains(e.Vibes, categories) && !anyContains([]string{e.EventType}, categories) {
			continue
		}
		if !q.Day.IsZero() && !sameDay(e.StartTime, q.Day) {
			continue
		}
		if q.HasMaxPrice && e.TicketPrice.Min > q.MaxTicketMin {
			continue
		}
		results = append(results, e)
	}

	slices.SortStableFunc(results, func(a, b Event) int {
		return a.StartTime.Compare(b.StartTime)
	})

	return truncate(results, q.Limit)
}

// OpenPastMidnight reports whether hours close at or after midnight, i.e. a closing hour of 00 to 05.
func OpenPastMidnight(hours DayHours) bool {
	if hours.Close == "" {
		return false
	}

	hour, err := strconv.Atoi(strings.SplitN(hours.Close, ":", 2)[0])
	if err != nil {
		return false
	}

	return hour >= 0 && hour < 6
}

// matchesLocation matches in both directions so "Deep Ellum, Dallas" finds venues in "Deep Ellum" and
// "Dallas" finds every venue in the city. The last fields are only searched for the location.
func matchesLocation(location string, neighborhood string, city string, others ...string) bool {
	loc := strings.ToLower(strings.TrimSpace(location))
	if loc == "" {
		return true
	}

	n := strings.ToLower(neighborhood)
	c := strings.ToLower(city)
	if (n != "" && strings.Contains(loc, n)) || (c != "" && strings.Contains(loc, c)) {
		return true
	}
	if strings.Contains(n, loc) || strings.Contains(c, loc) {
		return true
	}
	for _, other := range others {
		if strings.Contains(strings.ToLower(other), loc) {
			return true
		}
	}

	return false
}

func anyContains(values []string, needles []string) bool {
	for _, v := range values {
		v = strings.ToLower(v)
		for _, needle := range needles {
			if strings.Contains(v, needle) {
				return true
			}
		}
	}

	return false
}

func lowerAll(values []string) []string {
	var lowered []string
	for _, v := range values {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			lowered = append(lowered, v)
		}
	}

	return lowered
}

func compareRating(a, b float64) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	default:
		return 0
	}
}

func sameDay(t time.Time, day time.Time) bool {
	y1, m1, d1 := t.Date()
	y2, m2, d2 := day.In(t.Location()).Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func truncate[T any](values []T, limit int) []T {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if len(values) > limit {
		return values[:limit]
	}

	return values
}
