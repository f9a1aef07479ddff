// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package azure

import (
	"context"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"go.opentelemetry.io/otel/trace"
)

// MsCorrelationIdHeader carries the trace id of the command that issued the request.
const MsCorrelationIdHeader = "x-ms-correlation-request-id"

type noOpPolicy struct{}

func (p *noOpPolicy) Do(req *policy.Request) (*http.Response, error) {
	return req.Next()
}

type correlationPolicy struct {
	correlationId string
}

func (p *correlationPolicy) Do(req *policy.Request) (*http.Response, error) {
	req.Raw().Header.Set(MsCorrelationIdHeader, p.correlationId)
	return req.Next()
}

// NewMsCorrelationPolicy creates a policy that sets the correlation header from the trace id found in ctx.
// If ctx carries no trace, the policy does nothing.
func NewMsCorrelationPolicy(ctx context.Context) policy.Policy {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.HasTraceID() {
		return &noOpPolicy{}
	}

	return &correlationPolicy{correlationId: spanCtx.TraceID().String()}
}

type userAgentPolicy struct {
	userAgent string
}

// NewUserAgentPolicy prepends userAgent to the User-Agent header of every request.
func NewUserAgentPolicy(userAgent string) policy.Policy {
	return &userAgentPolicy{userAgent: userAgent}
}

func (p *userAgentPolicy) Do(req *policy.Request) (*http.Response, error) {
	rawRequest := req.Raw()
	if existing := rawRequest.Header.Get("User-Agent"); existing != "" {
		rawRequest.Header.Set("User-Agent", p.userAgent+" "+existing)
	} else {
		rawRequest.Header.Set("User-Agent", p.userAgent)
	}

	return req.Next()
}
