// Package mail sends transactional mail for the exchange. The Mailer
// interface is what handlers depend on, so tests can swap in a fake
// without touching SMTP.
package mail

// Mailer delivers a password reset link to a user. A returned error
// means the mail definitely did not go out and the caller has to roll
// back whatever state depended on it.
type Mailer interface {
	SendPasswordReset(to, resetLink string) error
}
