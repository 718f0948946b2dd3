package mailer

import "context"

// Sender abstracts the outbound email collaborator.
// It allows use cases to stay transport-agnostic.
type Sender interface {
	SendVerificationOTP(ctx context.Context, to, firstName, otp string) error
	SendPasswordReset(ctx context.Context, to, firstName, resetURL string) error
}
