package lecturer

import "context"

// Repository is the persistence contract for lecturer accounts. Two
// copies are persisted: the canonical directory, and the login mirror
// that login reads exclusively. Signup rewrites both together.
type Repository interface {
	// ReadDirectory returns the canonical directory. Missing or corrupt
	// data reads as an empty directory.
	ReadDirectory(ctx context.Context) ([]Account, error)

	// WriteDirectory replaces the canonical directory wholesale.
	WriteDirectory(ctx context.Context, accounts []Account) error

	// ReadMirror returns the login mirror.
	ReadMirror(ctx context.Context) ([]Account, error)

	// WriteMirror replaces the login mirror wholesale.
	WriteMirror(ctx context.Context, accounts []Account) error
}

// Notifier dispatches lecturer-facing email. Implementations live in
// infrastructure/mail; the directory never retries a failed dispatch.
type Notifier interface {
	// SendWelcome sends the post-signup welcome message.
	SendWelcome(ctx context.Context, account Account) error

	// SendCredentials mails the account its stored credentials.
	SendCredentials(ctx context.Context, account Account) error
}
