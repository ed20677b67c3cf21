package otp

import "context"

// ChallengeStore is the persistence contract for outstanding challenges,
// keyed by lowercase email. Implementations live in
// infrastructure/persistence.
type ChallengeStore interface {
	// Get returns the challenge for the key, reporting whether one
	// exists. A corrupt store reads as empty.
	Get(ctx context.Context, key string) (Challenge, bool, error)

	// Put stores the challenge, overwriting any existing one.
	Put(ctx context.Context, key string, challenge Challenge) error

	// Delete removes the challenge for the key, if any.
	Delete(ctx context.Context, key string) error
}

// DirectoryChecker answers whether an email belongs to a registered
// lecturer. lecturer.Directory satisfies it.
type DirectoryChecker interface {
	EmailExists(ctx context.Context, email string) (bool, error)
}

// CodeSender dispatches a freshly issued code to its recipient.
// Implementations live in infrastructure/mail.
type CodeSender interface {
	SendCode(ctx context.Context, email, code string) error
}
