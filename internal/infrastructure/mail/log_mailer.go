package mail

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jhoicas/policyminders-api/internal/application/ports"
)

var _ ports.Mailer = (*LogMailer)(nil)

// LogMailer se usa cuando no hay proveedor configurado: deja constancia del mensaje en logs
// y responde ErrMailerUnconfigured, de modo que nada se marque como enviado.
type LogMailer struct {
	log zerolog.Logger
}

// NewLogMailer construye el adaptador.
func NewLogMailer(log zerolog.Logger) *LogMailer {
	return &LogMailer{log: log.With().Str("component", "mail").Logger()}
}

func (m *LogMailer) Send(ctx context.Context, msg ports.Message) error {
	m.log.Warn().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Int("html_bytes", len(msg.HTMLBody)).
		Msg("Correo no enviado: MAIL_PROVIDER no configurado")
	return ports.ErrMailerUnconfigured
}
