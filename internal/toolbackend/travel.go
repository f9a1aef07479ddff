// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package toolbackend

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"gnoagent/internal/geo"
)

type rideClass struct {
	Type        string
	DisplayName string
	BasePrice   float64
	PerMile     float64
	PerMinute   float64
	Capacity    int
	EtaMin      int
	EtaMax      int
}

var rideClasses = []rideClass{
	{
		Type:        "economy",
		DisplayName: "UberX / Lyft",
		BasePrice:   2.50,
		PerMile:     1.25,
		PerMinute:   0.20,
		Capacity:    4,
		EtaMin:      3,
		EtaMax:      8,
	},
	{
		Type:        "standard",
		DisplayName: "Uber Comfort / Lyft XL",
		BasePrice:   4.00,
		PerMile:     1.75,
		PerMinute:   0.30,
		Capacity:    4,
		EtaMin:      5,
		EtaMax:      12,
	},
	{
		Type:        "premium",
		DisplayName: "Uber Black / Lyft Lux",
		BasePrice:   8.00,
		PerMile:     3.50,
		PerMinute:   0.50,
		Capacity:    4,
		EtaMin:      8,
		EtaMax:      15,
	},
	{
		Type:        "xl",
		DisplayName: "UberXL / Lyft XL",
		BasePrice:   5.00,
		PerMile:     2.25,
		PerMinute:   0.35,
		Capacity:    6,
		EtaMin:      5,
		EtaMax:      15,
	},
}

type rideshareArgs struct {
	PickupAddress  string `json:"pickup_address"`
	DropoffAddress string `json:"dropoff_address"`
	PassengerCount int    `json:"passenger_count"`
}

type PriceRange struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Currency string  `json:"currency"`
}

type RideOption struct {
	Type          string     `json:"type"`
	DisplayName   string     `json:"displayName"`
	PriceEstimate PriceRange `json:"priceEstimate"`
	EtaMinutes    int        `json:"etaMinutes"`
	Capacity      int        `json:"capacity"`
}

type RideshareEstimate struct {
	Origin          string       `json:"origin"`
	Destination     string       `json:"destination"`
	DistanceMiles   float64      `json:"distanceMiles"`
	DurationMinutes int          `json:"durationMinutes"`
	Options         []RideOption `json:"options"`
	SurgeMultiplier float64      `json:"surgeMultiplier"`
	RequestedAt     time.Time    `json:"requestedAt"`
	Source          string       `json:"source"`
}

func (b *Backend) rideshareEstimate(_ context.Context, raw json.RawMessage) (any, error) {
	args, err := decode[rideshareArgs](raw)
	if err != nil {
		return nil, err
	}

	now := b.now()
	distance := geo.Distance(geo.Resolve(args.PickupAddress), geo.Resolve(args.DropoffAddress))
	duration := geo.DrivingMinutes(distance)
	surge := b.surgeMultiplier(now)

	options := []RideOption{}
	for _, class := range rideClasses {
		if args.PassengerCount > 4 && class.Capacity < args.PassengerCount {
			continue
		}

		price := (class.BasePrice + distance*class.PerMile + float64(duration)*class.PerMinute) * surge
		eta := class.EtaMin + int(math.Round(b.float64()*float64(class.EtaMax-class.EtaMin)))

		options = append(options, RideOption{
			Type:        class.Type,
			DisplayName: class.DisplayName,
			PriceEstimate: PriceRange{
				Min:      geo.RoundTo(price*0.9, 2),
				Max:      geo.RoundTo(price*1.1, 2),
				Currency: "USD",
			},
			EtaMinutes: eta,
			Capacity:   class.Capacity,
		})
	}

	return &RideshareEstimate{
		Origin:          args.PickupAddress,
		Destination:     args.DropoffAddress,
		DistanceMiles:   geo.RoundTo(distance, 1),
		DurationMinutes: duration,
		Options:         options,
		SurgeMultiplier: geo.RoundTo(surge, 1),
		RequestedAt:     now,
		Source:          Source,
	}, nil
}

// surgeMultiplier is 1.5-2.0 on Friday and Saturday nights from 22:00 through 02:59, 1.2-1.5 in weekday
// rush hours (07-09 and 16-19) and 1.0 otherwise.
func (b *Backend) surgeMultiplier(now time.Time) float64 {
	hour := now.Hour()
	weekday := now.Weekday()

	if (weekday == time.Friday || weekday == time.Saturday) && (hour >= 22 || hour <= 2) {
		return 1.5 + b.float64()*0.5
	}

	if weekday >= time.Monday && weekday <= time.Friday {
		if (hour >= 7 && hour <= 9) || (hour >= 16 && hour <= 19) {
			return 1.2 + b.float64()*0.3
		}
	}

	return 1.0
}

type directionsArgs struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Mode        string `json:"mode"`
}

type Directions struct {
	Origin           string   `json:"origin"`
	Destination      string   `json:"destination"`
	Mode             string   `json:"mode"`
	DistanceMiles    float64  `json:"distanceMiles"`
	DurationMinutes  int      `json:"durationMinutes"`
	Steps            []string `json:"steps"`
	Polyline         string   `json:"polyline"`
	TrafficCondition string   `json:"trafficCondition"`
	Source           string   `json:"source"`
}

func (b *Backend) directions(_ context.Context, raw json.RawMessage) (any, error) {
	args, err := decode[directionsArgs](raw)
	if err != nil {
		return nil, err
	}

	origin := geo.Resolve(args.Origin)
	destination := geo.Resolve(args.Destination)
	distance := geo.Distance(origin, destination)

	var duration int
	var verb string
	switch args.Mode {
	case "walking":
		duration = int(math.Round(distance * 20))
		verb = "Walk"
	case "transit":
		duration = int(math.Round(distance*8 + 5))
		verb = "Transit"
	default:
		duration = geo.DrivingMinutes(distance)
		verb = "Drive"
	}

	return &Directions{
		Origin:          args.Origin,
		Destination:     args.Destination,
		Mode:            args.Mode,
		DistanceMiles:   geo.RoundTo(distance, 1),
		DurationMinutes: duration,
		Steps: []string{
			"Start at " + args.Origin,
			"Head northeast on Main St",
			"Turn right onto Commerce St",
			"Continue for 0.5 miles",
			"Turn left onto Elm St",
			verb + " for 0.8 miles",
			"Turn right onto destination street",
			"Arrive at " + args.Destination,
		},
		Polyline: fmt.Sprintf("mock_polyline_%.4f_%.4f_to_%.4f_%.4f",
			origin.Lat, origin.Lng, destination.Lat, destination.Lng),
		TrafficCondition: trafficCondition(b.now()),
		Source:           Source,
	}, nil
}

func trafficCondition(now time.Time) string {
	hour := now.Hour()

	switch {
	case (hour >= 7 && hour <= 9) || (hour >= 16 && hour <= 18):
		return "heavy"
	case (hour >= 11 && hour <= 13) || (hour >= 19 && hour <= 21):
		return "moderate"
	default:
		return "light"
	}
}
