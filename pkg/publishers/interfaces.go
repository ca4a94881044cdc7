package publishers

import "context"

// Publisher sends probe outcome events to a downstream sink (HTTP, SQS, SNS, Pub/Sub).
type Publisher interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt Event) error
}
