package domain

import "errors"

// Error kinds. Each is absorbed by the component that produces it.
var (
	// ErrProviderFetch marks a single query/region/section that could not be collected.
	ErrProviderFetch = errors.New("provider fetch failed")
	// ErrModelUnavailable marks a failed model discovery or generation call.
	ErrModelUnavailable = errors.New("model unavailable")
	// ErrMalformedOutput marks model text that could not be parsed into curated items.
	ErrMalformedOutput = errors.New("malformed model output")
	// ErrDelivery marks a failed webhook or mirror delivery.
	ErrDelivery = errors.New("delivery failed")
)
