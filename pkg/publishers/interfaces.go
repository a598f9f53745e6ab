package publishers

import "context"

// Publisher mirrors report events to a downstream sink (HTTP, SQS, SNS, Pub/Sub).
type Publisher interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt ReportEvent) error
}
