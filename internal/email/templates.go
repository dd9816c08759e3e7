package email

import (
	"fmt"
	"time"
)

// VerificationOTPMessage arma asunto y cuerpo HTML del codigo de verificacion de registro.
func VerificationOTPMessage(code string, ttl time.Duration) (string, string) {
	subject := "DevPort Email Verification Code"
	body := fmt.Sprintf(`
<h2>Your DevPort Verification Code</h2>
<p>Your OTP is:</p>
<h1>%s</h1>
<p>This code is valid for %s.</p>
`, code, humanMinutes(ttl))
	return subject, body
}

// PasswordResetMessage arma asunto y cuerpo HTML del codigo de reset de password.
func PasswordResetMessage(code string, ttl time.Duration) (string, string) {
	subject := "DevPort - Your Password Reset Code"
	body := fmt.Sprintf(`
<h1>You have requested a password reset</h1>
<p>Your password reset code is:</p>
<h2 style="font-size: 24px; letter-spacing: 2px;">%s</h2>
<p>This code will expire in %s.</p>
`, code, humanMinutes(ttl))
	return subject, body
}

func humanMinutes(d time.Duration) string {
	m := int(d.Round(time.Minute) / time.Minute)
	if m <= 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", m)
}
