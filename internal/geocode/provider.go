package geocode

import "context"

// Location is a resolved place: a pretty "City, ST" descriptor plus coordinates
type Location struct {
	Descriptor string  `json:"descriptor"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
}

// Resolver turns a free-text place descriptor into coordinates
type Resolver interface {
	Resolve(ctx context.Context, text string) (*Location, error)
}
