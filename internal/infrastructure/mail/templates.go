package mail

import (
	"fmt"
	"html"

	"github.com/landmark-lsms/lsms-backend/internal/domain/lecturer"
)

// The HTML templates keep the original system's navy-on-white identity.

const htmlShell = `<div style="max-width:700px;margin:40px auto;background:#fff;border-radius:18px;font-family:'Segoe UI',Arial,sans-serif;overflow:hidden;border:1px solid #e0e6ed;">
  <div style="background:#0a2342;padding:40px 0 24px 0;text-align:center;">
    <h1 style="color:#fff;margin:0;font-weight:700;font-size:2em;letter-spacing:1px;">Landmark Student Management System</h1>
  </div>
  <div style="padding:36px 40px 24px 40px;color:#0a2342;">
%s
    <div style="text-align:center;margin:32px 0;">
      <a href="%s" style="background:#0a2342;color:#fff;text-decoration:none;padding:14px 36px;border-radius:24px;font-weight:600;font-size:1.1em;display:inline-block;">Visit Website</a>
    </div>
    <p style="font-size:1.05em;">Best regards,<br>Landmark Student Record Team</p>
  </div>
  <div style="background:#0a2342;color:#fff;text-align:center;padding:14px 0;font-size:1em;">
    &copy; Landmark Student Management System
  </div>
</div>`

func welcomeHTML(name, landingURL string) string {
	body := fmt.Sprintf(`    <h2 style="margin-top:0;font-size:1.3em;">Welcome, %s!</h2>
    <p style="font-size:1.1em;">Your lecturer account has been created successfully.<br>You can now log in with the email and password you registered.</p>`,
		html.EscapeString(name))
	return fmt.Sprintf(htmlShell, body, landingURL)
}

func credentialsHTML(account lecturer.Account, landingURL string) string {
	body := fmt.Sprintf(`    <h2 style="margin-top:0;font-size:1.3em;">Hello, %s!</h2>
    <p style="font-size:1.1em;">Your lecturer account credentials:</p>
    <div style="background:#f0f4fa;border-radius:10px;margin:28px 0 20px 0;font-size:1.1em;padding:16px 22px;">
      <b>Email:</b> %s<br>
      <b>Password:</b> %s
    </div>`,
		html.EscapeString(account.LecName),
		html.EscapeString(account.SigninEmail),
		html.EscapeString(account.SigninPassword))
	return fmt.Sprintf(htmlShell, body, landingURL)
}
