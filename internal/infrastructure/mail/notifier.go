package mail

import (
	"context"
	"fmt"

	"github.com/landmark-lsms/lsms-backend/internal/domain/lecturer"
)

// Notifier renders and dispatches every lecturer-facing message. It
// satisfies lecturer.Notifier and otp.CodeSender.
type Notifier struct {
	dispatcher Dispatcher

	// LandingURL is linked from the HTML messages.
	LandingURL string
}

// NewNotifier creates a Notifier over the given dispatcher.
func NewNotifier(dispatcher Dispatcher, landingURL string) *Notifier {
	return &Notifier{dispatcher: dispatcher, LandingURL: landingURL}
}

// SendWelcome sends the post-signup welcome message.
func (n *Notifier) SendWelcome(ctx context.Context, account lecturer.Account) error {
	return n.dispatcher.Send(ctx, Message{
		To:      account.SigninEmail,
		Subject: "Welcome to Landmark Student Management System",
		TextBody: fmt.Sprintf(
			"Welcome, %s!\n\nYour lecturer account has been created successfully. "+
				"You can now log in with the email and password you registered.\n\n"+
				"Best regards,\nLandmark Student Record Team\n",
			account.LecName),
		HTMLBody: welcomeHTML(account.LecName, n.LandingURL),
	})
}

// SendCredentials mails an account its stored credentials.
func (n *Notifier) SendCredentials(ctx context.Context, account lecturer.Account) error {
	return n.dispatcher.Send(ctx, Message{
		To:      account.SigninEmail,
		Subject: "Your LSMS Account Credentials",
		TextBody: fmt.Sprintf(
			"Hello, %s!\n\nYour lecturer account credentials:\n\n"+
				"Email: %s\nPassword: %s\n\n"+
				"Best regards,\nLandmark Student Record Team\n",
			account.LecName, account.SigninEmail, account.SigninPassword),
		HTMLBody: credentialsHTML(account, n.LandingURL),
	})
}

// SendCode mails a freshly issued login code.
func (n *Notifier) SendCode(ctx context.Context, email, code string) error {
	return n.dispatcher.Send(ctx, Message{
		To:      email,
		Subject: "Your LSMS Login OTP",
		TextBody: fmt.Sprintf(
			"Your LSMS login OTP is: %s\n\nThis code is valid for 1 minute.\n", code),
	})
}

// SendApprovalRequest mails an account-approval request to an
// administrator, attaching the requester's identification image.
func (n *Notifier) SendApprovalRequest(ctx context.Context, adminEmail, requesterEmail string, id Attachment) error {
	return n.dispatcher.Send(ctx, Message{
		To:      adminEmail,
		Subject: "LSMS Account Approval Request",
		TextBody: fmt.Sprintf(
			"Greetings sir/madam, I am a lecturer at Landmark, and I want your "+
				"permission to create an account in the LSMS.\n\n"+
				"My email address is: %s\n", requesterEmail),
		Attachments: []Attachment{id},
	})
}
