// Package policy contiene las reglas de validación de pólizas y de los emails
// que se capturan en formularios (contacto, notificaciones, registro).
package policy

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/jhoicas/policyminders-api/internal/domain/entity"
)

// ErrInvalidPolicy agrupa errores de validación de póliza.
var ErrInvalidPolicy = errors.New("póliza inválida")

// ErrInvalidEmail email con formato inválido o demasiado largo.
var ErrInvalidEmail = errors.New("email inválido")

// ErrWeakPassword contraseña fuera de la política de registro.
var ErrWeakPassword = errors.New("contraseña débil")

// Política de contraseñas: 8 a 72 caracteres (límite de bcrypt) con al menos una
// minúscula, una mayúscula y un dígito.
const (
	passwordLengthRule = "min=8,max=72"
	passwordCharsRule  = "containsany=abcdefghijklmnopqrstuvwxyz,containsany=ABCDEFGHIJKLMNOPQRSTUVWXYZ,containsany=0123456789"
)

const (
	maxTextLen   = 200
	maxNotesLen  = 2000
	maxEmailLen  = 255
	maxPhoneLen  = 20
	maxCount     = 1000000
	sanitizedLen = 500
)

var (
	phonePattern = regexp.MustCompile(`^[\d\s\-\+\(\)]+$`)
	validate     = validator.New()
)

// ValidateEmail comprueba formato y longitud de un email ya normalizado.
func ValidateEmail(email string) error {
	if email == "" || utf8.RuneCountInString(email) > maxEmailLen {
		return ErrInvalidEmail
	}
	if err := validate.Var(email, "email"); err != nil {
		return ErrInvalidEmail
	}
	return nil
}

// ValidatePassword aplica la política de contraseñas con validator.
func ValidatePassword(password string) error {
	if err := validate.Var(password, passwordLengthRule); err != nil {
		return fmt.Errorf("%w: debe tener entre 8 y 72 caracteres", ErrWeakPassword)
	}
	if err := validate.Var(password, passwordCharsRule); err != nil {
		return fmt.Errorf("%w: debe incluir mayúscula, minúscula y número", ErrWeakPassword)
	}
	return nil
}

// Normalize recorta espacios, normaliza el email de contacto y aplica la anticipación por defecto.
// Se llama antes de Validate tanto al crear como al actualizar.
func Normalize(p *entity.Policy) {
	p.ClientName = sanitize(p.ClientName)
	p.InsurerName = sanitize(p.InsurerName)
	p.ContactName = sanitize(p.ContactName)
	p.ContactPhone = strings.TrimSpace(p.ContactPhone)
	p.ContactEmail = entity.NormalizeEmail(p.ContactEmail)
	p.LineDetail = sanitizeOptional(p.LineDetail)
	p.Notes = sanitizeOptional(p.Notes)
	if p.ReminderLeadDays == 0 {
		p.ReminderLeadDays = entity.DefaultReminderLeadDays
	}
	if p.Documents == nil {
		p.Documents = []string{}
	}
}

// Validate valida enumerados, obligatorios y longitudes. Devuelve todos los errores
// encontrados unidos, envueltos en ErrInvalidPolicy.
func Validate(p *entity.Policy) error {
	if p == nil {
		return fmt.Errorf("%w: póliza nula", ErrInvalidPolicy)
	}
	var errs []error

	errs = appendRequired(errs, "client_name", p.ClientName)
	errs = appendRequired(errs, "insurer_name", p.InsurerName)
	errs = appendRequired(errs, "contact_name", p.ContactName)

	if p.ClientStatus != entity.ClientStatusExisting && p.ClientStatus != entity.ClientStatusProspect {
		errs = append(errs, fmt.Errorf("client_status %q no admitido", p.ClientStatus))
	}
	switch p.Line {
	case entity.LineMedical, entity.LineMotor, entity.LineGeneral:
	default:
		errs = append(errs, fmt.Errorf("line %q no admitido", p.Line))
	}
	if p.ChannelType != entity.ChannelDirect && p.ChannelType != entity.ChannelBroker {
		errs = append(errs, fmt.Errorf("channel_type %q no admitido", p.ChannelType))
	}
	if p.LineDetail != nil && utf8.RuneCountInString(*p.LineDetail) > maxTextLen {
		errs = append(errs, fmt.Errorf("line_detail supera %d caracteres", maxTextLen))
	}
	if p.EndDate.IsZero() {
		errs = append(errs, errors.New("end_date es obligatorio"))
	}
	if p.Count != nil && (*p.Count <= 0 || *p.Count > maxCount) {
		errs = append(errs, fmt.Errorf("count debe estar entre 1 y %d", maxCount))
	}
	if err := ValidateEmail(p.ContactEmail); err != nil {
		errs = append(errs, fmt.Errorf("contact_email: %w", err))
	}
	switch {
	case p.ContactPhone == "":
		errs = append(errs, errors.New("contact_phone es obligatorio"))
	case utf8.RuneCountInString(p.ContactPhone) > maxPhoneLen:
		errs = append(errs, fmt.Errorf("contact_phone supera %d caracteres", maxPhoneLen))
	case !phonePattern.MatchString(p.ContactPhone):
		errs = append(errs, errors.New("contact_phone contiene caracteres no válidos"))
	}
	if p.Notes != nil && utf8.RuneCountInString(*p.Notes) > maxNotesLen {
		errs = append(errs, fmt.Errorf("notes supera %d caracteres", maxNotesLen))
	}
	if !entity.ValidReminderLeadDays(p.ReminderLeadDays) {
		errs = append(errs, fmt.Errorf("reminder_lead_days debe ser 14, 30 o 45 (recibido %d)", p.ReminderLeadDays))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidPolicy, errors.Join(errs...))
	}
	return nil
}

func appendRequired(errs []error, field, value string) []error {
	switch {
	case value == "":
		return append(errs, fmt.Errorf("%s es obligatorio", field))
	case utf8.RuneCountInString(value) > maxTextLen:
		return append(errs, fmt.Errorf("%s supera %d caracteres", field, maxTextLen))
	}
	return errs
}

func sanitize(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > sanitizedLen {
		s = string([]rune(s)[:sanitizedLen])
	}
	return s
}

func sanitizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := sanitize(*s)
	if v == "" {
		return nil
	}
	return &v
}
