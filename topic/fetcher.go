package topic

import "context"

// Fetcher pulls topics from an external data source.
type Fetcher interface {
	Fetch(ctx context.Context) ([]*Topic, error)
}
