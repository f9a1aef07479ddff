// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package toolserver

import (
	"fmt"
	"log"
	"maps"
	"slices"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"gnoagent/internal/exterrors"
	"gnoagent/internal/toolcatalog"
)

// functionRequest maps the request body of a planner function route onto the catalog arguments of its tool.
type functionRequest struct {
	tool string
	// rename maps function fields (gjson paths) to catalog argument names.
	rename map[string]string
	// required lists function fields the route rejects requests without.
	required []string
	// defaults holds raw JSON for catalog arguments the function route lets callers omit.
	defaults map[string]string
}

var functionRequests = map[string]functionRequest{
	"searchRestaurants": {
		tool:     "search_restaurants",
		rename:   map[string]string{"priceLevel": "price_level", "partySize": "party_size"},
		defaults: map[string]string{"location": `""`, "party_size": `0`},
	},
	"searchBars": {
		tool:     "search_bars",
		rename:   map[string]string{"priceLevel": "price_level", "openLate": "open_late"},
		defaults: map[string]string{"location": `""`},
	},
	"searchEvents": {
		tool: "search_events",
		// Planner callers pass the agent's max_price through as priceLevel.
		rename:   map[string]string{"dateRange.start": "date", "vibes": "categories", "priceLevel": "max_price"},
		defaults: map[string]string{"location": `""`},
	},
	"getRideshareEstimate": {
		tool: "get_rideshare_estimate",
		rename: map[string]string{
			"origin":      "pickup_address",
			"destination": "dropoff_address",
			"partySize":   "passenger_count",
		},
		required: []string{"origin", "destination"},
	},
	"getDirections": {
		tool:     "get_directions",
		required: []string{"origin", "destination"},
		defaults: map[string]string{"mode": `"driving"`},
	},
	"checkAvailability": {
		tool: "check_availability",
		rename: map[string]string{
			"venueId":       "venue_id",
			"venueName":     "venue_name",
			"partySize":     "party_size",
			"preferredTime": "time",
		},
		required: []string{"venueId", "date", "partySize"},
		defaults: map[string]string{"venue_name": `""`, "time": `""`},
	},
}

// translateFunctionRequest converts a function route body to the catalog arguments of its tool. Catalog
// argument names pass through unchanged, so snake_case bodies keep working. Fields neither side knows are
// dropped. Bodies that are not JSON objects are passed on for the tool to reject.
func translateFunctionRequest(function string, body []byte) (string, []byte, error) {
	request, ok := functionRequests[function]
	if !ok {
		return function, body, nil
	}

	if !gjson.ValidBytes(body) || !gjson.ParseBytes(body).IsObject() {
		return request.tool, body, nil
	}
	parsed := gjson.ParseBytes(body)

	var missing []string
	for _, field := range request.required {
		if value := parsed.Get(field); !value.Exists() || value.Type == gjson.Null || value.String() == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return "", nil, exterrors.Validation(
			exterrors.CodeInvalidToolArguments,
			fmt.Sprintf("%s: %s required", function, strings.Join(missing, ", ")),
			"",
		)
	}

	tool, _ := toolcatalog.Lookup(request.tool)
	properties := tool.Properties()

	args := []byte("{}")
	set := func(name string, raw string) error {
		var err error
		args, err = sjson.SetRawBytes(args, name, []byte(raw))
		return err
	}

	known := map[string]bool{}
	for _, name := range properties {
		known[name] = true
		if value := parsed.Get(gjson.Escape(name)); value.Exists() {
			if err := set(name, value.Raw); err != nil {
				return "", nil, err
			}
		}
	}

	for _, from := range slices.Sorted(maps.Keys(request.rename)) {
		known[strings.SplitN(from, ".", 2)[0]] = true
		if value := parsed.Get(from); value.Exists() && value.Type != gjson.Null {
			if err := set(request.rename[from], value.Raw); err != nil {
				return "", nil, err
			}
		}
	}

	for name, raw := range request.defaults {
		if !gjson.GetBytes(args, gjson.Escape(name)).Exists() {
			if err := set(name, raw); err != nil {
				return "", nil, err
			}
		}
	}

	parsed.ForEach(func(key, _ gjson.Result) bool {
		if !known[key.String()] {
			log.Printf("%s: ignoring field %q", function, key.String())
		}
		return true
	})

	return request.tool, args, nil
}
