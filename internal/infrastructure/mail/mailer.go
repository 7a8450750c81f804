package mail

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/policyminders-api/internal/application/ports"
	"github.com/jhoicas/policyminders-api/pkg/config"
)

// NewMailer selecciona el adaptador según MAIL_PROVIDER. Sin proveedor, o sin credenciales,
// devuelve un LogMailer: el arranque no falla y los envíos quedan como no configurados.
func NewMailer(cfg config.MailConfig, log zerolog.Logger) (ports.Mailer, error) {
	switch cfg.Provider {
	case "":
		return NewLogMailer(log), nil
	case config.MailProviderSendGrid:
		if cfg.SendGridAPIKey == "" {
			log.Warn().Msg("SENDGRID_API_KEY vacío; los correos no se enviarán")
			return NewLogMailer(log), nil
		}
		return NewSendGridMailer(cfg.SendGridAPIKey), nil
	case config.MailProviderSMTP:
		smtp := NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password)
		if smtp == nil {
			log.Warn().Msg("SMTP_HOST vacío; los correos no se enviarán")
			return NewLogMailer(log), nil
		}
		return smtp, nil
	default:
		return nil, fmt.Errorf("MAIL_PROVIDER desconocido: %q", cfg.Provider)
	}
}
