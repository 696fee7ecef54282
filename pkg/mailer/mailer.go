package mailer

import "context"

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer is the transport-level delivery primitive. Retry policy, templating
// and bounce handling belong to the transport behind it.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
