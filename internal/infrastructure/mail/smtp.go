package mail

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/jhoicas/policyminders-api/internal/application/ports"
)

var _ ports.Mailer = (*SMTPMailer)(nil)

const smtpProvider = "smtp"

// dialer abstrae gomail.Dialer para poder sustituirlo en pruebas.
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer adaptador SMTP sobre gomail.
type SMTPMailer struct {
	dialer dialer
}

// NewSMTPMailer construye el adaptador. Con host vacío devuelve nil: no hay SMTP configurado.
func NewSMTPMailer(host string, port int, username, password string) *SMTPMailer {
	if host == "" {
		return nil
	}
	return &SMTPMailer{dialer: gomail.NewDialer(host, port, username, password)}
}

// Send arma el mensaje MIME y lo entrega. gomail no acepta contexto, así que el envío corre
// en una goroutine y Send retorna al cancelarse ctx (el envío en curso puede completarse igual).
func (m *SMTPMailer) Send(ctx context.Context, msg ports.Message) error {
	if m == nil || m.dialer == nil {
		return ports.ErrMailerUnconfigured
	}
	gm := gomail.NewMessage()
	gm.SetAddressHeader("From", msg.From, msg.FromName)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/html", msg.HTMLBody)

	done := make(chan error, 1)
	go func() { done <- m.dialer.DialAndSend(gm) }()

	select {
	case <-ctx.Done():
		return &ports.DeliveryError{Provider: smtpProvider, Cause: ctx.Err()}
	case err := <-done:
		if err != nil {
			return &ports.DeliveryError{Provider: smtpProvider, Cause: fmt.Errorf("dial and send: %w", err)}
		}
		return nil
	}
}
