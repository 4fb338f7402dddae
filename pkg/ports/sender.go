package ports

import "context"

// CodeSender delivers one-time codes to the user (email, SMS, a terminal).
// The reference gateways generate codes and hand them to a CodeSender.
type CodeSender interface {
	SendCode(ctx context.Context, email, code string) error
}

// CodeSenderFunc adapts a function to CodeSender.
type CodeSenderFunc func(ctx context.Context, email, code string) error

// SendCode calls f.
func (f CodeSenderFunc) SendCode(ctx context.Context, email, code string) error {
	return f(ctx, email, code)
}
