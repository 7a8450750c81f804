package reminder_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/policyminders-api/internal/domain/entity"
	"github.com/jhoicas/policyminders-api/internal/domain/reminder"
)

func samplePolicy(id, client string, days int) *entity.Policy {
	detail := "PAR"
	count := 50
	return &entity.Policy{
		ID:               id,
		OrganizationID:   "org-1",
		ClientName:       client,
		ClientStatus:     entity.ClientStatusExisting,
		Line:             entity.LineMedical,
		LineDetail:       &detail,
		EndDate:          today.AddDate(0, 0, days),
		Count:            &count,
		InsurerName:      "Acme Insurance",
		ChannelType:      entity.ChannelBroker,
		ContactName:      "Jane Roe",
		ContactEmail:     "jane@example.com",
		ContactPhone:     "300 000 0000",
		ReminderLeadDays: 30,
	}
}

func TestBuildDigest_AsuntoUnaPoliza(t *testing.T) {
	d, err := reminder.BuildDigest([]*entity.Policy{samplePolicy("p1", "Globex", 30)}, reminder.ModeAutomatic)
	require.NoError(t, err)
	assert.Equal(t, "Policy Expiry Reminder – Globex – Medical – PAR", d.Subject)
}

func TestBuildDigest_AsuntoPlural(t *testing.T) {
	d, err := reminder.BuildDigest([]*entity.Policy{
		samplePolicy("p1", "Globex", 30),
		samplePolicy("p2", "Initech", 30),
	}, reminder.ModeAutomatic)
	require.NoError(t, err)
	assert.Equal(t, "Policy Expiry Reminder – 2 Policies Expiring Soon", d.Subject)
}

func TestBuildDigest_AsuntoModoPrueba(t *testing.T) {
	d, err := reminder.BuildDigest([]*entity.Policy{samplePolicy("p1", "Globex", 30)}, reminder.ModeTest)
	require.NoError(t, err)
	assert.Equal(t, "PolicyMinders – Test Email", d.Subject)
	assert.Contains(t, d.Body, "test email")
}

// Pólizas que vencen en los días 5, 1 y 3 se listan 1, 3, 5.
func TestBuildDigest_OrdenPorVencimiento(t *testing.T) {
	d, err := reminder.BuildDigest([]*entity.Policy{
		samplePolicy("p5", "Day Five", 5),
		samplePolicy("p1", "Day One", 1),
		samplePolicy("p3", "Day Three", 3),
	}, reminder.ModeAutomatic)
	require.NoError(t, err)

	one := strings.Index(d.Body, "Day One")
	three := strings.Index(d.Body, "Day Three")
	five := strings.Index(d.Body, "Day Five")
	require.True(t, one >= 0 && three >= 0 && five >= 0)
	assert.Less(t, one, three)
	assert.Less(t, three, five)
}

func TestBuildDigest_IncluyeTodosLosCampos(t *testing.T) {
	p := samplePolicy("p1", "Globex", 30)
	d, err := reminder.BuildDigest([]*entity.Policy{p}, reminder.ModeAutomatic)
	require.NoError(t, err)

	for _, want := range []string{
		"Globex", "Medical – PAR", "existing", p.EndDate.Format("2006-01-02"), "50",
		"Acme Insurance – broker", "Jane Roe", "300 000 0000", "jane@example.com",
	} {
		assert.Contains(t, d.Body, want)
	}
}

func TestBuildDigest_CountNoDisponible(t *testing.T) {
	p := samplePolicy("p1", "Globex", 30)
	p.Count = nil
	p.LineDetail = nil
	d, err := reminder.BuildDigest([]*entity.Policy{p}, reminder.ModeAutomatic)
	require.NoError(t, err)
	assert.Contains(t, d.Body, "N/A")
	assert.Equal(t, "Policy Expiry Reminder – Globex – Medical", d.Subject)
}

func TestBuildDigest_EscapaHTML(t *testing.T) {
	p := samplePolicy("p1", "<script>alert(1)</script>", 30)
	d, err := reminder.BuildDigest([]*entity.Policy{p}, reminder.ModeAutomatic)
	require.NoError(t, err)
	assert.NotContains(t, d.Body, "<script>")
	assert.Contains(t, d.Body, "&lt;script&gt;")
}

func TestBuildDigest_Determinista(t *testing.T) {
	in := []*entity.Policy{samplePolicy("b", "B", 3), samplePolicy("a", "A", 3)}
	d1, err := reminder.BuildDigest(in, reminder.ModeAutomatic)
	require.NoError(t, err)
	d2, err := reminder.BuildDigest([]*entity.Policy{in[1], in[0]}, reminder.ModeAutomatic)
	require.NoError(t, err)
	assert.Equal(t, d1, d2, "el mismo conjunto en distinto orden produce el mismo digest")
	assert.Equal(t, "b", in[0].ID, "BuildDigest no reordena el slice del caller")
}
