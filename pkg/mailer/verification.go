package mailer

import (
	"context"

	tpl "github.com/promanhq/proman/pkg/mailer/templates"
)

// VerificationSender sends OTP verification mail synchronously via
// Mailgun. The registration flow depends on the send result to decide
// whether to roll back the just-created account.
type VerificationSender struct {
	MG *Mailgun
}

func NewVerificationSender(mg *Mailgun) *VerificationSender {
	return &VerificationSender{MG: mg}
}

func (s *VerificationSender) SendVerificationOTP(ctx context.Context, to, name, code string) error {
	subject, html, err := tpl.Render("verify_otp", map[string]any{
		"Name": name,
		"Code": code,
	})
	if err != nil {
		return err
	}
	return s.MG.Send(ctx, to, subject, "", html)
}
