package application

import "context"

// MailMeta carries request context stamped into notification emails.
type MailMeta struct {
	IP        string
	UserAgent string
}

// Notifier dispatches account lifecycle emails out-of-band. Implementations
// are fire-and-forget from the caller's perspective; a returned error means
// the message could not be handed off at all.
type Notifier interface {
	SendVerificationMail(ctx context.Context, to, token, displayName string, meta MailMeta) error
	SendPasswordResetMail(ctx context.Context, to, token, displayName string, meta MailMeta) error
}
