// Package mail implementa el puerto ports.Mailer con los proveedores de correo soportados.
package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/jhoicas/policyminders-api/internal/application/ports"
)

var _ ports.Mailer = (*SendGridMailer)(nil)

const (
	sendGridProvider = "sendgrid"
	sendGridURL      = "https://api.sendgrid.com/v3/mail/send"
	sendGridTries    = 3
)

// SendGridMailer adaptador de la API v3 de SendGrid sobre net/http. El seguimiento de clics
// se desactiva para que los enlaces de aceptación lleguen intactos.
type SendGridMailer struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
	backOff    func() backoff.BackOff
}

// NewSendGridMailer construye el adaptador. Con apiKey vacío Send devuelve ErrMailerUnconfigured.
func NewSendGridMailer(apiKey string) *SendGridMailer {
	return &SendGridMailer{
		apiKey:     apiKey,
		endpoint:   sendGridURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		backOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 500 * time.Millisecond
			b.MaxInterval = 5 * time.Second
			return b
		},
	}
}

// ── Estructuras internas del protocolo SendGrid Mail Send ─────────────────────

type sendGridAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sendGridRequest struct {
	Personalizations []struct {
		To []sendGridAddress `json:"to"`
	} `json:"personalizations"`
	From    sendGridAddress `json:"from"`
	Subject string          `json:"subject"`
	Content []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"content"`
	TrackingSettings struct {
		ClickTracking struct {
			Enable     bool `json:"enable"`
			EnableText bool `json:"enable_text"`
		} `json:"click_tracking"`
	} `json:"tracking_settings"`
}

type sendGridErrorResponse struct {
	Errors []struct {
		Message string `json:"message"`
		Field   string `json:"field"`
	} `json:"errors"`
}

func buildSendGridRequest(msg ports.Message) sendGridRequest {
	var req sendGridRequest
	req.Personalizations = make([]struct {
		To []sendGridAddress `json:"to"`
	}, 1)
	req.Personalizations[0].To = []sendGridAddress{{Email: msg.To}}
	req.From = sendGridAddress{Email: msg.From, Name: msg.FromName}
	req.Subject = msg.Subject
	req.Content = make([]struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	}, 1)
	req.Content[0].Type = "text/html"
	req.Content[0].Value = msg.HTMLBody
	return req
}

// Send envía msg. Reintenta ante 429 y 5xx; cualquier otro rechazo es definitivo.
func (m *SendGridMailer) Send(ctx context.Context, msg ports.Message) error {
	if m.apiKey == "" {
		return ports.ErrMailerUnconfigured
	}
	body, err := json.Marshal(buildSendGridRequest(msg))
	if err != nil {
		return &ports.DeliveryError{Provider: sendGridProvider, Cause: fmt.Errorf("serializar request: %w", err)}
	}

	_, err = backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, m.post(ctx, body)
	}, backoff.WithBackOff(m.backOff()), backoff.WithMaxTries(sendGridTries))
	if err != nil {
		return &ports.DeliveryError{Provider: sendGridProvider, Cause: err}
	}
	return nil
}

func (m *SendGridMailer) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(body))
	if err != nil {
		return backoff.Permanent(fmt.Errorf("crear HTTP request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return backoff.Permanent(fmt.Errorf("timeout o cancelación: %w", ctx.Err()))
		}
		return fmt.Errorf("llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 16*1024))
	apiErr := sendGridError(resp.StatusCode, raw)

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		if secs, convErr := strconv.Atoi(resp.Header.Get("Retry-After")); convErr == nil && secs > 0 {
			return backoff.RetryAfter(secs)
		}
		return apiErr
	case resp.StatusCode >= 500:
		return apiErr
	default:
		return backoff.Permanent(apiErr)
	}
}

func sendGridError(status int, raw []byte) error {
	var errResp sendGridErrorResponse
	if err := json.Unmarshal(raw, &errResp); err == nil && len(errResp.Errors) > 0 {
		msgs := make([]error, 0, len(errResp.Errors))
		for _, e := range errResp.Errors {
			msgs = append(msgs, errors.New(e.Message))
		}
		return fmt.Errorf("SendGrid HTTP %d: %w", status, errors.Join(msgs...))
	}
	return fmt.Errorf("SendGrid HTTP %d: %s", status, string(raw))
}
