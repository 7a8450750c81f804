package ports

import (
	"context"
	"errors"
	"fmt"
)

// ErrMailerUnconfigured no hay proveedor de correo configurado (o faltan credenciales).
// Es un resultado "suave": se registra en logs y el envío se reintenta en otra pasada.
var ErrMailerUnconfigured = errors.New("proveedor de correo no configurado")

// Message un email HTML a un único destinatario.
type Message struct {
	To       string
	From     string
	FromName string
	Subject  string
	HTMLBody string
}

// DeliveryError el proveedor rechazó o no pudo entregar el mensaje.
// Envuelve la causa concreta para que la forma del error del proveedor no salga del adaptador.
type DeliveryError struct {
	Provider string
	Cause    error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("entrega fallida (%s): %v", e.Provider, e.Cause)
}

func (e *DeliveryError) Unwrap() error { return e.Cause }

// Mailer define el puerto de salida para el envío de correos.
// Cualquier adaptador (SendGrid, SMTP, log) debe implementar esta interfaz.
// Send devuelve nil, ErrMailerUnconfigured o *DeliveryError.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
