package reminder_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/policyminders-api/internal/application/ports"
	"github.com/jhoicas/policyminders-api/internal/application/reminder"
	"github.com/jhoicas/policyminders-api/internal/domain"
	"github.com/jhoicas/policyminders-api/internal/domain/entity"
	"github.com/jhoicas/policyminders-api/internal/domain/repository"
	"github.com/jhoicas/policyminders-api/internal/infrastructure/memory"
)

// ---------------------------------------------------------------------------
// Dobles de prueba
// ---------------------------------------------------------------------------

type fakeMailer struct {
	mu   sync.Mutex
	sent []ports.Message
	err  error
}

func (m *fakeMailer) Send(ctx context.Context, msg ports.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

var morning = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

type fixture struct {
	store     *memory.Store
	mailer    *fakeMailer
	scheduler *reminder.Scheduler
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()
	st := memory.NewStore()
	mailer := &fakeMailer{}
	clock := ports.FixedClock{T: now}
	settings := reminder.NewSettingsResolver(st.Settings, clock)
	s := reminder.NewScheduler(st.Policies, settings, mailer, nil, clock,
		reminder.Config{From: "alerts@policyminders.test", FromName: "PolicyMinders Alerts"}, zerolog.Nop())
	return &fixture{store: st, mailer: mailer, scheduler: s}
}

func (f *fixture) addPolicy(t *testing.T, id, org string, days, lead int) {
	t.Helper()
	today := time.Date(morning.Year(), morning.Month(), morning.Day(), 0, 0, 0, 0, time.UTC)
	require.NoError(t, f.store.Policies.Create(context.Background(), &entity.Policy{
		ID:               id,
		OrganizationID:   org,
		ClientName:       "Client " + id,
		ClientStatus:     entity.ClientStatusExisting,
		Line:             entity.LineMedical,
		EndDate:          today.AddDate(0, 0, days),
		InsurerName:      "Acme",
		ChannelType:      entity.ChannelBroker,
		ContactName:      "Jane",
		ContactEmail:     "jane@example.com",
		ContactPhone:     "300",
		ReminderLeadDays: lead,
	}))
}

func (f *fixture) setRecipient(t *testing.T, org, email string) {
	t.Helper()
	require.NoError(t, f.store.Settings.Upsert(context.Background(), &entity.NotificationSetting{
		ID: "s-" + org, OrganizationID: org, NotificationEmail: email,
	}))
}

func (f *fixture) sentAt(t *testing.T, org, id string) *time.Time {
	t.Helper()
	p, err := f.store.Policies.GetByID(context.Background(), org, id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.ReminderSentAt
}

// ---------------------------------------------------------------------------
// RunReminderPass
// ---------------------------------------------------------------------------

func TestRunReminderPass_DosPasadasMismoDia(t *testing.T) {
	f := newFixture(t, morning)
	f.addPolicy(t, "p1", "org-a", 30, 30)
	f.setRecipient(t, "org-a", "broker@example.com")
	ctx := context.Background()

	first, err := f.scheduler.RunReminderPass(ctx, reminder.PassOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, first.SentCount())
	assert.Empty(t, first.Errors)

	sent := f.sentAt(t, "org-a", "p1")
	require.NotNil(t, sent)
	assert.Equal(t, "2025-03-10", sent.UTC().Format("2006-01-02"))

	second, err := f.scheduler.RunReminderPass(ctx, reminder.PassOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, second.SentCount())
	assert.Equal(t, 1, f.mailer.count(), "un solo digest por organización y día")
}

func TestRunReminderPass_AnticipacionNoCoincide(t *testing.T) {
	f := newFixture(t, morning)
	f.addPolicy(t, "p1", "org-a", 30, 14)
	f.setRecipient(t, "org-a", "broker@example.com")

	res, err := f.scheduler.RunReminderPass(context.Background(), reminder.PassOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, res.SentCount())
	assert.Zero(t, f.mailer.count())
}

func TestRunReminderPass_UnDigestPorOrganizacion(t *testing.T) {
	f := newFixture(t, morning)
	f.addPolicy(t, "a1", "org-a", 30, 30)
	f.addPolicy(t, "a2", "org-a", 14, 14)
	f.addPolicy(t, "b1", "org-b", 45, 45)
	f.setRecipient(t, "org-a", "a@example.com")
	f.setRecipient(t, "org-b", "b@example.com")

	res, err := f.scheduler.RunReminderPass(context.Background(), reminder.PassOptions{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a1", "a2", "b1"}, res.Sent)
	require.Equal(t, 2, f.mailer.count())

	assert.Equal(t, "a@example.com", f.mailer.sent[0].To)
	assert.Equal(t, "Policy Expiry Reminder – 2 Policies Expiring Soon", f.mailer.sent[0].Subject)
	assert.Equal(t, "b@example.com", f.mailer.sent[1].To)
	assert.Equal(t, "PolicyMinders Alerts", f.mailer.sent[1].FromName)
}

func TestRunReminderPass_FiltroPorOrganizacion(t *testing.T) {
	f := newFixture(t, morning)
	f.addPolicy(t, "a1", "org-a", 30, 30)
	f.addPolicy(t, "b1", "org-b", 30, 30)
	f.setRecipient(t, "org-a", "a@example.com")
	f.setRecipient(t, "org-b", "b@example.com")

	res, err := f.scheduler.RunReminderPass(context.Background(), reminder.PassOptions{OrganizationID: "org-b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"b1"}, res.Sent)
	assert.Nil(t, f.sentAt(t, "org-a", "a1"))
}

func TestRunReminderPass_SinDestinatario(t *testing.T) {
	f := newFixture(t, morning)
	f.addPolicy(t, "p1", "org-a", 30, 30)

	res, err := f.scheduler.RunReminderPass(context.Background(), reminder.PassOptions{})
	require.NoError(t, err)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, reminder.ReasonRecipientNotConfigured, res.Errors[0].Reason)
	assert.Equal(t, "org-a", res.Errors[0].OrganizationID)
	assert.Nil(t, f.sentAt(t, "org-a", "p1"), "sin envío no se marca")
}

func TestRunReminderPass_FalloDeEntregaNoMarca(t *testing.T) {
	f := newFixture(t, morning)
	f.addPolicy(t, "p1", "org-a", 30, 30)
	f.setRecipient(t, "org-a", "broker@example.com")
	f.mailer.err = &ports.DeliveryError{Provider: "sendgrid", Cause: errors.New("503")}

	res, err := f.scheduler.RunReminderPass(context.Background(), reminder.PassOptions{})
	require.NoError(t, err)
	assert.Empty(t, res.Sent)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Reason, reminder.ReasonDeliveryFailed)
	assert.Nil(t, f.sentAt(t, "org-a", "p1"))

	// La siguiente pasada reintenta.
	f.mailer.err = nil
	res, err = f.scheduler.RunReminderPass(context.Background(), reminder.PassOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, res.Sent)
}

func TestRunReminderPass_CorreoNoConfigurado(t *testing.T) {
	f := newFixture(t, morning)
	f.addPolicy(t, "p1", "org-a", 30, 30)
	f.setRecipient(t, "org-a", "broker@example.com")
	f.mailer.err = ports.ErrMailerUnconfigured

	res, err := f.scheduler.RunReminderPass(context.Background(), reminder.PassOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, res.Skipped)
	assert.Empty(t, res.Errors)
	assert.Nil(t, f.sentAt(t, "org-a", "p1"))
}

func TestRunReminderPass_ErrorDeAlmacenAborta(t *testing.T) {
	f := newFixture(t, morning)
	boom := errors.New("conexión perdida")
	f.store.DB.FailOn("policies.ListReminderCandidates", boom)

	_, err := f.scheduler.RunReminderPass(context.Background(), reminder.PassOptions{})
	var storeErr *reminder.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.ErrorIs(t, err, boom)
}

// racingPolicies simula otra pasada que reclama las pólizas entre el listado y el reclamo.
type racingPolicies struct {
	repository.PolicyRepository
}

func (r racingPolicies) ListReminderCandidates(ctx context.Context, today time.Time, loc *time.Location, orgID string) ([]*entity.Policy, error) {
	out, err := r.PolicyRepository.ListReminderCandidates(ctx, today, loc, orgID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(out))
	for _, p := range out {
		ids = append(ids, p.ID)
	}
	if _, err := r.PolicyRepository.ClaimReminders(ctx, ids, morning.Add(-time.Minute), today, loc); err != nil {
		return nil, err
	}
	return out, nil
}

func TestRunReminderPass_ReclamoPerdido(t *testing.T) {
	st := memory.NewStore()
	mailer := &fakeMailer{}
	clock := ports.FixedClock{T: morning}
	s := reminder.NewScheduler(racingPolicies{st.Policies}, reminder.NewSettingsResolver(st.Settings, clock), mailer, nil, clock,
		reminder.Config{}, zerolog.Nop())
	f := &fixture{store: st, mailer: mailer, scheduler: s}
	f.addPolicy(t, "p1", "org-a", 30, 30)
	f.setRecipient(t, "org-a", "broker@example.com")

	res, err := s.RunReminderPass(context.Background(), reminder.PassOptions{})
	require.NoError(t, err)
	assert.Empty(t, res.Sent)
	assert.Equal(t, []string{"p1"}, res.Skipped)
	assert.Zero(t, mailer.count(), "el perdedor de la carrera no reenvía")
}

func TestRunReminderPass_PasadasConcurrentes(t *testing.T) {
	f := newFixture(t, morning)
	f.addPolicy(t, "p1", "org-a", 30, 30)
	f.setRecipient(t, "org-a", "broker@example.com")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.scheduler.RunReminderPass(context.Background(), reminder.PassOptions{})
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, f.mailer.count())
}

func TestRunReminderPass_CandadoOcupado(t *testing.T) {
	st := memory.NewStore()
	mailer := &fakeMailer{}
	clock := ports.FixedClock{T: morning}
	locker := memory.NewLocker()
	s := reminder.NewScheduler(st.Policies, reminder.NewSettingsResolver(st.Settings, clock), mailer, locker, clock,
		reminder.Config{}, zerolog.Nop())
	f := &fixture{store: st, mailer: mailer, scheduler: s}
	f.addPolicy(t, "p1", "org-a", 30, 30)
	f.setRecipient(t, "org-a", "broker@example.com")

	unlock, ok, err := locker.TryLock(context.Background(), "reminders:org-a")
	require.NoError(t, err)
	require.True(t, ok)

	res, err := s.RunReminderPass(context.Background(), reminder.PassOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, res.Skipped)

	unlock()
	res, err = s.RunReminderPass(context.Background(), reminder.PassOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, res.Sent)
}

func TestRunReminderPass_ContextoCancelado(t *testing.T) {
	f := newFixture(t, morning)
	f.addPolicy(t, "p1", "org-a", 30, 30)
	f.setRecipient(t, "org-a", "broker@example.com")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := f.scheduler.RunReminderPass(ctx, reminder.PassOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, res.Skipped)
	assert.Nil(t, f.sentAt(t, "org-a", "p1"))
}

func TestRunReminderPass_NuevoCicloAlAnoSiguiente(t *testing.T) {
	f := newFixture(t, morning)
	f.addPolicy(t, "p1", "org-a", 30, 30)
	f.setRecipient(t, "org-a", "broker@example.com")
	ctx := context.Background()

	_, err := f.scheduler.RunReminderPass(ctx, reminder.PassOptions{})
	require.NoError(t, err)

	// Se renueva la póliza un año y se simula el día de su nuevo recordatorio.
	p, err := f.store.Policies.GetByID(ctx, "org-a", "p1")
	require.NoError(t, err)
	p.EndDate = p.EndDate.AddDate(1, 0, 0)
	require.NoError(t, f.store.Policies.Update(ctx, p))

	next := reminder.NewScheduler(f.store.Policies, reminder.NewSettingsResolver(f.store.Settings, ports.FixedClock{T: morning.AddDate(1, 0, 0)}),
		f.mailer, nil, ports.FixedClock{T: morning.AddDate(1, 0, 0)}, reminder.Config{}, zerolog.Nop())
	res, err := next.RunReminderPass(ctx, reminder.PassOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, res.Sent)
}

// ---------------------------------------------------------------------------
// SendTest / SendManual
// ---------------------------------------------------------------------------

func TestSendTest_PolizaDeEjemplo(t *testing.T) {
	f := newFixture(t, morning)

	res, err := f.scheduler.SendTest(context.Background(), "org-a", "Someone@Example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, res.SentCount)
	assert.Equal(t, "someone@example.com", res.Recipient)
	require.Equal(t, 1, f.mailer.count())
	assert.Equal(t, "PolicyMinders – Test Email", f.mailer.sent[0].Subject)
	assert.Contains(t, f.mailer.sent[0].HTMLBody, "Sample Client")
}

func TestSendTest_NoMarcaPolizas(t *testing.T) {
	f := newFixture(t, morning)
	f.addPolicy(t, "p1", "org-a", 30, 30)
	f.setRecipient(t, "org-a", "broker@example.com")

	res, err := f.scheduler.SendTest(context.Background(), "org-a", "")
	require.NoError(t, err)
	assert.Equal(t, "broker@example.com", res.Recipient)
	assert.Contains(t, f.mailer.sent[0].HTMLBody, "Client p1")
	assert.Nil(t, f.sentAt(t, "org-a", "p1"))
}

func TestSendTest_SinDestinatario(t *testing.T) {
	f := newFixture(t, morning)
	_, err := f.scheduler.SendTest(context.Background(), "org-a", "")
	assert.ErrorIs(t, err, domain.ErrRecipientNotConfigured)
}

func TestSendManual(t *testing.T) {
	f := newFixture(t, morning)
	f.addPolicy(t, "p1", "org-a", 90, 30)
	f.setRecipient(t, "org-a", "broker@example.com")

	res, err := f.scheduler.SendManual(context.Background(), "org-a", "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, res.SentCount)
	assert.Equal(t, "Policy Expiry Reminder – Client p1 – Medical", f.mailer.sent[0].Subject)
	assert.Nil(t, f.sentAt(t, "org-a", "p1"))

	_, err = f.scheduler.SendManual(context.Background(), "org-b", "p1")
	assert.ErrorIs(t, err, domain.ErrNotFound, "la póliza de otra organización no es visible")
}

func TestSendManual_FalloDeEntrega(t *testing.T) {
	f := newFixture(t, morning)
	f.addPolicy(t, "p1", "org-a", 90, 30)
	f.setRecipient(t, "org-a", "broker@example.com")
	f.mailer.err = &ports.DeliveryError{Provider: "smtp", Cause: errors.New("dial")}

	res, err := f.scheduler.SendManual(context.Background(), "org-a", "p1")
	var derr *ports.DeliveryError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, 0, res.SentCount)
	assert.Equal(t, "broker@example.com", res.Recipient)
}
