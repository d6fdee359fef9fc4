package email

import (
	"context"
	"errors"
)

// Sender define la interfaz para envío de correos de verificación.
// El código OTP viaja en texto plano solo por este canal.
type Sender interface {
	SendVerificationOTP(ctx context.Context, toEmail, code, link string) error
}

type disabledSender struct {
	reason string
}

// NewDisabledSender devuelve un Sender que siempre falla con la razón dada.
func NewDisabledSender(reason string) Sender {
	return &disabledSender{reason: reason}
}

func (s *disabledSender) SendVerificationOTP(_ context.Context, _ string, _ string, _ string) error {
	if s.reason == "" {
		return errors.New("email sender disabled")
	}
	return errors.New(s.reason)
}
