package publishers

import "context"

// Publisher delivers a generated digest article to a downstream sink
// (HTTP bridge, SQS, SNS, Pub/Sub).
type Publisher interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt Event) error
}
