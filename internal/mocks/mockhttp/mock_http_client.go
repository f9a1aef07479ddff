// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package mockhttp provides a policy.Transporter whose responses are registered per request predicate.
package mockhttp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
)

type RequestPredicate func(request *http.Request) bool
type RespondFn func(request *http.Request) (*http.Response, error)

type MockHttpClient struct {
	mu          sync.Mutex
	expressions []*HttpExpression
	requests    []*RecordedRequest
}

// RecordedRequest is a request seen by the mock, with its body already read.
type RecordedRequest struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

type HttpExpression struct {
	http        *MockHttpClient
	predicateFn RequestPredicate
	responseFn  RespondFn
}

func NewMockHttpUtil() *MockHttpClient {
	return &MockHttpClient{}
}

// Do implements policy.Transporter.
func (c *MockHttpClient) Do(request *http.Request) (*http.Response, error) {
	var body []byte
	if request.Body != nil {
		data, err := io.ReadAll(request.Body)
		if err != nil {
			return nil, err
		}
		body = data
		request.Body = io.NopCloser(bytes.NewReader(body))
	}

	c.mu.Lock()
	c.requests = append(c.requests, &RecordedRequest{
		Method: request.Method,
		URL:    request.URL.String(),
		Header: request.Header.Clone(),
		Body:   body,
	})

	var match *HttpExpression
	for _, expr := range c.expressions {
		if expr.predicateFn(request) {
			match = expr
			break
		}
	}
	c.mu.Unlock()

	if match == nil {
		panic(fmt.Sprintf("No mock found for request: '%s %s'", request.Method, request.URL))
	}

	return match.responseFn(request)
}

func (c *MockHttpClient) When(predicate RequestPredicate) *HttpExpression {
	c.mu.Lock()
	defer c.mu.Unlock()

	expr := &HttpExpression{
		http:        c,
		predicateFn: predicate,
	}
	c.expressions = append(c.expressions, expr)

	return expr
}

// Requests returns every request the mock has received, in order.
func (c *MockHttpClient) Requests() []*RecordedRequest {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]*RecordedRequest(nil), c.requests...)
}

func (e *HttpExpression) RespondFn(responseFn RespondFn) *MockHttpClient {
	e.responseFn = responseFn
	return e.http
}

// Respond replies with the given status code and body marshalled to JSON.
// A string or []byte body is sent as is.
func (e *HttpExpression) Respond(statusCode int, body any) *MockHttpClient {
	return e.RespondFn(func(request *http.Request) (*http.Response, error) {
		return CreateHttpResponseWithBody(request, statusCode, body)
	})
}

// SetError makes the matched request fail at the transport level.
func (e *HttpExpression) SetError(err error) *MockHttpClient {
	return e.RespondFn(func(*http.Request) (*http.Response, error) {
		return nil, err
	})
}

func CreateHttpResponseWithBody(request *http.Request, statusCode int, body any) (*http.Response, error) {
	var data []byte
	switch value := body.(type) {
	case nil:
	case string:
		data = []byte(value)
	case []byte:
		data = value
	default:
		jsonBytes, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		data = jsonBytes
	}

	return &http.Response{
		Request:    request,
		StatusCode: statusCode,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader(data)),
	}, nil
}
