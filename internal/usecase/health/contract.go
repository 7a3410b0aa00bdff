package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// ReaderChecker checks inference provider availability.
type ReaderChecker interface {
	HealthCheck(ctx context.Context) error
}
