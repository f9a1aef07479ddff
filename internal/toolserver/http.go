// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package toolserver exposes the tool backend to the hosted agent over HTTP and to local clients over MCP.
package toolserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"gnoagent/internal/exterrors"
	"gnoagent/internal/toolcatalog"
)

const maxBodyBytes = 1 << 20

// Invoker runs a named tool with JSON arguments.
type Invoker interface {
	Invoke(ctx context.Context, name string, args json.RawMessage) (any, error)
}

type errorBody struct {
	Error      string `json:"error"`
	Code       string `json:"code,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// NewHandler routes tool calls to invoker:
//
//	GET  /healthz
//	GET  /api/tools               the catalog
//	POST /api/tools/{name}        snake_case tool name
//	POST /api/{function}          planner function route, e.g. /api/searchRestaurants, taking the
//	                              function's camelCase body (venueId, partySize, ...)
func NewHandler(invoker Invoker) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("GET /api/tools", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, toolcatalog.All())
	})

	mux.Handle("POST /api/tools/{name}", invokeHandler(invoker, "name", nil))
	mux.Handle("POST /api/{function}", invokeHandler(invoker, "function", translateFunctionRequest))

	return otelhttp.NewHandler(mux, "gnoagent.tools")
}

type translateFunc func(name string, body []byte) (string, []byte, error)

func invokeHandler(invoker Invoker, pathValue string, translate translateFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue(pathValue)

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "reading request body: " + err.Error()})
			return
		}

		if translate != nil {
			if name, body, err = translate(name, body); err != nil {
				writeError(w, r.PathValue(pathValue), err)
				return
			}
		}

		result, err := invoker.Invoke(r.Context(), name, body)
		if err != nil {
			writeError(w, name, err)
			return
		}

		writeJSON(w, http.StatusOK, result)
	})
}

func writeError(w http.ResponseWriter, name string, err error) {
	var localErr *exterrors.LocalError
	if !errors.As(err, &localErr) {
		log.Printf("tool %s failed: %v", name, err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Internal server error"})
		return
	}

	status := http.StatusBadRequest
	if localErr.Code == exterrors.CodeUnknownTool {
		status = http.StatusNotFound
	}

	writeJSON(w, status, errorBody{
		Error:      localErr.Message,
		Code:       localErr.Code,
		Suggestion: localErr.Suggestion,
	})
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(value); err != nil {
		log.Printf("encoding response: %v", err)
	}
}

// Serve listens on addr until ctx is cancelled, then shuts the server down gracefully.
// ready, when non-nil, receives the bound address once the listener is open.
func Serve(ctx context.Context, addr string, handler http.Handler, ready func(net.Addr)) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:      handler,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	if ready != nil {
		ready(listener.Addr())
	}

	errs := make(chan error, 1)
	go func() {
		errs <- srv.Serve(listener)
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if err := <-errs; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
