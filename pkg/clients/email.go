// Package clients declares the narrow contracts of the external collaborators
// the engine consumes: email delivery, calendar, and AI matching. The engine
// never implements these services; processors call them through these
// interfaces.
package clients

import "context"

// SendOptions carries the optional context used for template rendering and
// AI personalization.
type SendOptions struct {
	CandidateProfile     map[string]any
	JobTitle             string
	CompanyName          string
	UseAIPersonalization bool
	// IdempotencyKey lets the delivery service deduplicate retried sends.
	IdempotencyKey string
}

// EmailService delivers templated email through the external provider.
type EmailService interface {
	SendPersonalizedEmail(
		ctx context.Context,
		templateName string,
		recipientEmail string,
		recipientName string,
		variables map[string]any,
		opts SendOptions,
	) (bool, error)
}
