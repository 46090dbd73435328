// Package gateway provides small concrete implementations of the engine's
// outward-facing collaborators (SMS, email, shell) suitable for a
// standalone deployment, grounded on linknx's SendSmsAction/SendEmailAction/
// ShellCommandAction, which are themselves thin dispatchers to an external
// notifier or the host shell.
package gateway

import (
	"github.com/linknx-go/ruled/engine"
)

// Logging is a no-op SMS/email gateway that records sent messages through a
// Logf instead of delivering them anywhere, useful for development and for
// rule tests that exercise SendSms/SendEmail without a real carrier
// integration configured.
type Logging struct {
	Logf engine.Logf
}

func (g *Logging) SendSms(to, text string) error {
	g.Logf("sms to=%s text=%q", to, text)
	return nil
}

func (g *Logging) SendEmail(to, subject, body string) error {
	g.Logf("email to=%s subject=%q body=%q", to, subject, body)
	return nil
}

var (
	_ engine.SmsGateway   = (*Logging)(nil)
	_ engine.EmailGateway = (*Logging)(nil)
)
