package service

import (
	"fmt"
	"time"
)

func verificationEmailTemplate(name, code string, ttl time.Duration, appName string) (string, string) {
	subject := fmt.Sprintf("Verify your email for %s", appName)
	body := fmt.Sprintf(`Hi %s,

Your verification code is: %s

Enter it in the app to activate your account. The code expires in %s.

If you didn't create an account, you can safely ignore this email.

Best,
The %s Team`, name, code, humanDuration(ttl), appName)

	return subject, body
}

func passwordResetEmailTemplate(name, code string, ttl time.Duration, appName string) (string, string) {
	subject := fmt.Sprintf("Reset your password for %s", appName)
	body := fmt.Sprintf(`Hi %s,

Your password reset code is: %s

Enter it in the app together with your new password. The code expires in %s and can only be used once.

If you didn't request this, you can safely ignore this email. Your password won't be changed.

Best,
The %s Team`, name, code, humanDuration(ttl), appName)

	return subject, body
}

func humanDuration(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		hours := int(d / time.Hour)
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	case d >= time.Minute && d%time.Minute == 0:
		minutes := int(d / time.Minute)
		if minutes == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", minutes)
	default:
		return d.String()
	}
}
