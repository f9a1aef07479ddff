// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package azure

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
)

type ClientOptionsBuilder struct {
	transport       policy.Transporter
	perCallPolicies []policy.Policy

	userAgentPolicy   policy.Policy
	correlationPolicy policy.Policy
}

func NewClientOptionsBuilder() *ClientOptionsBuilder {
	return &ClientOptionsBuilder{}
}

// Sets the underlying transport used for executing HTTP requests
func (b *ClientOptionsBuilder) WithTransport(transport policy.Transporter) *ClientOptionsBuilder {
	b.transport = transport
	return b
}

// Sets the user agent to be used for all requests. Set userAgent to "" to not use a user agent policy.
func (b *ClientOptionsBuilder) SetUserAgent(userAgent string) *ClientOptionsBuilder {
	if userAgent == "" {
		b.userAgentPolicy = nil
	} else {
		b.userAgentPolicy = NewUserAgentPolicy(userAgent)
	}
	return b
}

// Sets the context whose trace id is sent as the correlation id. Set ctx to nil to not use a correlation policy.
func (b *ClientOptionsBuilder) SetContext(ctx context.Context) *ClientOptionsBuilder {
	if ctx == nil {
		b.correlationPolicy = nil
	} else {
		b.correlationPolicy = NewMsCorrelationPolicy(ctx)
	}
	return b
}

// Appends per-call policies into the HTTP pipeline
func (b *ClientOptionsBuilder) WithPerCallPolicy(policy policy.Policy) *ClientOptionsBuilder {
	b.perCallPolicies = append(b.perCallPolicies, policy)
	return b
}

func (b *ClientOptionsBuilder) buildPerCallPolicies() []policy.Policy {
	if b.perCallPolicies == nil && b.userAgentPolicy == nil && b.correlationPolicy == nil {
		return nil
	}

	policies := make([]policy.Policy, 0, len(b.perCallPolicies)+2)
	if b.userAgentPolicy != nil {
		policies = append(policies, b.userAgentPolicy)
	}
	if b.correlationPolicy != nil {
		policies = append(policies, b.correlationPolicy)
	}

	return append(policies, b.perCallPolicies...)
}

// Builds the az core client options for data plane operations
func (b *ClientOptionsBuilder) BuildCoreClientOptions() *azcore.ClientOptions {
	return &azcore.ClientOptions{
		Transport:       b.transport,
		PerCallPolicies: b.buildPerCallPolicies(),
		Logging: policy.LogOptions{
			AllowedHeaders: []string{MsCorrelationIdHeader},
		},
	}
}
