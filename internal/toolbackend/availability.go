// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package toolbackend

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const (
	defaultReservationHour = 19
	unknownVenueName       = "Unknown Venue"
)

type availabilityArgs struct {
	VenueID   string `json:"venue_id"`
	VenueName string `json:"venue_name"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	PartySize int    `json:"party_size"`
}

type Availability struct {
	VenueID        string   `json:"venueId"`
	VenueName      string   `json:"venueName"`
	Date           string   `json:"date"`
	PartySize      int      `json:"partySize"`
	AvailableSlots []string `json:"availableSlots"`
	BookingURL     *string  `json:"bookingUrl"`
	Source         string   `json:"source"`
}

func (b *Backend) checkAvailability(_ context.Context, raw json.RawMessage) (any, error) {
	args, err := decode[availabilityArgs](raw)
	if err != nil {
		return nil, err
	}

	result := &Availability{
		VenueID:        args.VenueID,
		VenueName:      unknownVenueName,
		Date:           args.Date,
		PartySize:      args.PartySize,
		AvailableSlots: []string{},
		Source:         Source,
	}

	venue, ok := b.data.FindVenue(args.VenueID)
	if !ok {
		return result, nil
	}

	result.VenueName = venue.Name
	if venue.BookingURL != "" {
		url := venue.BookingURL
		result.BookingURL = &url
	}

	chance := 0.8
	if args.PartySize > 4 {
		chance = 0.5
	}

	for _, slot := range candidateSlots(args.Time) {
		if b.float64() < chance {
			result.AvailableSlots = append(result.AvailableSlots, slot)
		}
	}

	return result, nil
}

// candidateSlots returns half-hour slots from one hour before to two and a half hours after the requested
// hour, skipping any that fall outside the day.
func candidateSlots(requested string) []string {
	target := defaultReservationHour
	if hour, err := strconv.Atoi(strings.SplitN(strings.TrimSpace(requested), ":", 2)[0]); err == nil {
		target = hour
	}

	var slots []string
	for hour := target - 1; hour <= target+2; hour++ {
		if hour < 0 || hour > 23 {
			continue
		}
		for _, minute := range []int{0, 30} {
			slots = append(slots, fmt.Sprintf("%02d:%02d", hour, minute))
		}
	}

	return slots
}
