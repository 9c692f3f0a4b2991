package health

import "context"

// Pinger checks storage availability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// LLMChecker checks completion provider availability.
type LLMChecker interface {
	HealthCheck(ctx context.Context) error
}

// Sizer reports how many documents the search index holds.
type Sizer interface {
	Len() int
}
