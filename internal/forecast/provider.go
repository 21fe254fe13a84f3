package forecast

import "context"

// Provider fetches a short, already formatted forecast for coordinates
type Provider interface {
	Fetch(ctx context.Context, lat, lon float64) (string, error)
}

// MetarProvider fetches formatted aviation weather reports by station ID
type MetarProvider interface {
	FetchMetar(ctx context.Context, station string) (string, error)
}
