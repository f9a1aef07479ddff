// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package toolbackend executes the planner's function tools against the venue dataset.
package toolbackend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"gnoagent/internal/exterrors"
	"gnoagent/internal/toolcatalog"
	"gnoagent/internal/venues"
)

// Source identifies results produced by this backend.
const Source = "gnoagent-dallas"

type handlerFunc func(b *Backend, ctx context.Context, args json.RawMessage) (any, error)

var handlers = map[string]handlerFunc{
	"search_restaurants":     (*Backend).searchRestaurants,
	"search_bars":            (*Backend).searchBars,
	"search_events":          (*Backend).searchEvents,
	"get_rideshare_estimate": (*Backend).rideshareEstimate,
	"get_directions":         (*Backend).directions,
	"check_availability":     (*Backend).checkAvailability,
}

// Backend serves tool calls. It is safe for concurrent use.
type Backend struct {
	data  *venues.Dataset
	clock clock.Clock

	randMu sync.Mutex
	rand   *rand.Rand
}

type Option func(*Backend)

// WithClock replaces the wall clock, for surge pricing, traffic and event dates.
func WithClock(c clock.Clock) Option {
	return func(b *Backend) {
		b.clock = c
	}
}

// WithRand replaces the random source used for surge, ETA and availability variance.
func WithRand(r *rand.Rand) Option {
	return func(b *Backend) {
		b.rand = r
	}
}

func New(data *venues.Dataset, options ...Option) *Backend {
	b := &Backend{
		data:  data,
		clock: clock.New(),
	}
	for _, option := range options {
		option(b)
	}
	if b.rand == nil {
		b.rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	return b
}

// Invoke validates args against the catalog schema of the named tool and runs it.
// name may be the snake_case tool name or its camelCase function name.
func (b *Backend) Invoke(ctx context.Context, name string, args json.RawMessage) (any, error) {
	tool, ok := toolcatalog.Lookup(name)
	if !ok {
		return nil, exterrors.Validation(
			exterrors.CodeUnknownTool,
			fmt.Sprintf("unknown tool %q", name),
			"run `gnoagent tools catalog` to list the available tools",
		)
	}

	if err := tool.Validate(args); err != nil {
		return nil, exterrors.Wrap(exterrors.Validation(
			exterrors.CodeInvalidToolArguments,
			err.Error(),
			"",
		), err)
	}

	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	log.Printf("tool %s invoked with %s", tool.Name, string(args))

	return handlers[tool.Name](b, ctx, args)
}

func (b *Backend) now() time.Time {
	return b.clock.Now()
}

func (b *Backend) float64() float64 {
	b.randMu.Lock()
	defer b.randMu.Unlock()

	return b.rand.Float64()
}

func decode[T any](args json.RawMessage) (T, error) {
	var value T
	if err := json.Unmarshal(args, &value); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return value, exterrors.Validation(
				exterrors.CodeInvalidToolArguments,
				fmt.Sprintf("argument %q has the wrong type", typeErr.Field),
				"",
			)
		}
		return value, exterrors.Wrap(exterrors.Validation(exterrors.CodeInvalidToolArguments, err.Error(), ""), err)
	}

	return value, nil
}
