package mail

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/jhoicas/policyminders-api/internal/application/ports"
	"github.com/jhoicas/policyminders-api/pkg/config"
)

func testMessage() ports.Message {
	return ports.Message{
		To:       "ops@example.com",
		From:     "alerts@policyminders.app",
		FromName: "PolicyMinders Alerts",
		Subject:  "Policy renewal reminder: 1 policy expiring soon",
		HTMLBody: `<a href="https://app.example.com/accept-invitation?token=abc">Accept</a>`,
	}
}

func newTestSendGrid(url string) *SendGridMailer {
	m := NewSendGridMailer("SG.test")
	m.endpoint = url
	m.backOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	return m
}

func TestSendGrid_EnviaSinSeguimientoDeClics(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer SG.test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	err := newTestSendGrid(srv.URL).Send(context.Background(), testMessage())
	require.NoError(t, err)

	tracking := got["tracking_settings"].(map[string]any)["click_tracking"].(map[string]any)
	assert.Equal(t, false, tracking["enable"])
	assert.Equal(t, false, tracking["enable_text"])
	assert.Equal(t, "Policy renewal reminder: 1 policy expiring soon", got["subject"])
	from := got["from"].(map[string]any)
	assert.Equal(t, "PolicyMinders Alerts", from["name"])
}

func TestSendGrid_ReintentaErroresTransitorios(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	require.NoError(t, newTestSendGrid(srv.URL).Send(context.Background(), testMessage()))
	assert.Equal(t, int32(3), calls.Load())
}

func TestSendGrid_RechazoDefinitivo(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors":[{"message":"The from address does not match a verified Sender Identity.","field":"from"}]}`))
	}))
	defer srv.Close()

	err := newTestSendGrid(srv.URL).Send(context.Background(), testMessage())
	var de *ports.DeliveryError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "sendgrid", de.Provider)
	assert.Contains(t, err.Error(), "Sender Identity")
	assert.Equal(t, int32(1), calls.Load())
}

func TestSendGrid_AgotaReintentos(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := newTestSendGrid(srv.URL).Send(context.Background(), testMessage())
	var de *ports.DeliveryError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, int32(sendGridTries), calls.Load())
}

func TestSendGrid_SinAPIKey(t *testing.T) {
	err := NewSendGridMailer("").Send(context.Background(), testMessage())
	assert.ErrorIs(t, err, ports.ErrMailerUnconfigured)
}

type fakeDialer struct {
	err  error
	sent int
}

func (d *fakeDialer) DialAndSend(...*gomail.Message) error {
	d.sent++
	return d.err
}

func TestSMTP_Send(t *testing.T) {
	d := &fakeDialer{}
	m := &SMTPMailer{dialer: d}
	require.NoError(t, m.Send(context.Background(), testMessage()))
	assert.Equal(t, 1, d.sent)

	d.err = errors.New("535 auth failed")
	err := m.Send(context.Background(), testMessage())
	var de *ports.DeliveryError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "smtp", de.Provider)
}

func TestSMTP_SinHost(t *testing.T) {
	m := NewSMTPMailer("", 587, "", "")
	assert.ErrorIs(t, m.Send(context.Background(), testMessage()), ports.ErrMailerUnconfigured)
}

func TestNewMailer(t *testing.T) {
	log := zerolog.Nop()

	m, err := NewMailer(config.MailConfig{}, log)
	require.NoError(t, err)
	assert.IsType(t, &LogMailer{}, m)
	assert.ErrorIs(t, m.Send(context.Background(), testMessage()), ports.ErrMailerUnconfigured)

	m, err = NewMailer(config.MailConfig{Provider: config.MailProviderSendGrid, SendGridAPIKey: "k"}, log)
	require.NoError(t, err)
	assert.IsType(t, &SendGridMailer{}, m)

	m, err = NewMailer(config.MailConfig{Provider: config.MailProviderSMTP, SMTP: config.SMTPConfig{Host: "smtp.example.com", Port: 587}}, log)
	require.NoError(t, err)
	assert.IsType(t, &SMTPMailer{}, m)

	m, err = NewMailer(config.MailConfig{Provider: config.MailProviderSMTP}, log)
	require.NoError(t, err)
	assert.IsType(t, &LogMailer{}, m)

	_, err = NewMailer(config.MailConfig{Provider: "pigeon"}, log)
	assert.Error(t, err)
}
