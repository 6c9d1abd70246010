package services

import (
	"context"

	"go.uber.org/zap"
)

// Transactional email templates.
const (
	TemplateRegistration  = 506
	TemplateLogin         = 507
	TemplatePasswordReset = 508
)

type Email struct {
	To         string
	TemplateID int
	Params     map[string]string
}

// Mailer delivers templated transactional emails.
type Mailer interface {
	Send(ctx context.Context, e Email) error
}

// LogMailer writes emails to the log instead of sending them.
type LogMailer struct{ Log *zap.Logger }

func (m LogMailer) Send(_ context.Context, e Email) error {
	log := m.Log
	if log == nil {
		log = zap.NewNop()
	}
	fields := []zap.Field{zap.String("to", e.To), zap.Int("template_id", e.TemplateID)}
	for k, v := range e.Params {
		fields = append(fields, zap.String("param."+k, v))
	}
	log.Info("email", fields...)
	return nil
}
