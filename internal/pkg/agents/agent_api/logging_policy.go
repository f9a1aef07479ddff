// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package agent_api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
)

// maxLoggedString bounds string values in logged bodies. Agent instructions run to several KB.
const maxLoggedString = 200

// requestIDHeaders are echoed in the response line, first match wins.
var requestIDHeaders = []string{"x-ms-request-id", "apim-request-id", "x-request-id"}

type loggingPolicy struct {
	logger *log.Logger
}

// NewLoggingPolicy logs every agents API call to logger, one line per request, response and body.
// Long string values inside JSON bodies are shortened.
func NewLoggingPolicy(logger *log.Logger) policy.Policy {
	return &loggingPolicy{logger: logger}
}

func (p *loggingPolicy) Do(req *policy.Request) (*http.Response, error) {
	raw := req.Raw()
	p.logger.Printf("agents api request: %s %s", raw.Method, raw.URL.Redacted())
	if raw.Body != nil {
		body, err := io.ReadAll(raw.Body)
		raw.Body = io.NopCloser(bytes.NewReader(body))
		if err != nil {
			p.logger.Printf("agents api request body: (error reading: %v)", err)
		} else if len(body) > 0 {
			p.logger.Printf("agents api request body: %s", summarizeBody(body))
		}
	}

	start := time.Now()
	resp, err := req.Next()
	elapsed := time.Since(start).Round(time.Millisecond)
	if err != nil {
		p.logger.Printf("agents api error after %s: %v", elapsed, err)
		return resp, err
	}

	p.logger.Printf(
		"agents api response: %d %s in %s%s",
		resp.StatusCode,
		http.StatusText(resp.StatusCode),
		elapsed,
		requestID(resp.Header),
	)
	if resp.Body != nil {
		body, err := io.ReadAll(resp.Body)
		resp.Body = io.NopCloser(bytes.NewReader(body))
		if err != nil {
			p.logger.Printf("agents api response body: (error reading: %v)", err)
		} else if len(body) > 0 {
			p.logger.Printf("agents api response body: %s", summarizeBody(body))
		}
	}

	return resp, nil
}

func requestID(header http.Header) string {
	for _, name := range requestIDHeaders {
		if value := header.Get(name); value != "" {
			return fmt.Sprintf(" (%s: %s)", name, value)
		}
	}
	return ""
}

// summarizeBody renders a JSON body on one line with long strings shortened. Non-JSON bodies are
// cut to the same bound.
func summarizeBody(body []byte) string {
	var value any
	if err := json.Unmarshal(body, &value); err != nil {
		return shorten(string(body))
	}

	compact, err := json.Marshal(shortenStrings(value))
	if err != nil {
		return shorten(string(body))
	}

	return string(compact)
}

func shortenStrings(value any) any {
	switch v := value.(type) {
	case string:
		return shorten(v)
	case []any:
		for i := range v {
			v[i] = shortenStrings(v[i])
		}
		return v
	case map[string]any:
		for key := range v {
			v[key] = shortenStrings(v[key])
		}
		return v
	default:
		return v
	}
}

func shorten(s string) string {
	count := utf8.RuneCountInString(s)
	if count <= maxLoggedString {
		return s
	}

	runes := []rune(s)
	return fmt.Sprintf("%s... (%d more characters)", string(runes[:maxLoggedString]), count-maxLoggedString)
}
