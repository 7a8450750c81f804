package reminder

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"

	"github.com/jhoicas/policyminders-api/internal/domain/entity"
)

// Mode modo del digest: automático (pasada programada o envío manual) o de prueba.
type Mode string

const (
	ModeAutomatic Mode = "automatic"
	ModeTest      Mode = "test"
)

// Digest un email que agrupa todas las pólizas pendientes de una organización.
type Digest struct {
	Subject string
	Body    string // HTML
}

const (
	subjectPrefix    = "Policy Expiry Reminder"
	subjectTestEmail = "PolicyMinders – Test Email"
	notAvailable     = "N/A"
)

type digestRow struct {
	ClientName   string
	Coverage     string
	ClientStatus string
	EndDate      string
	Count        string
	Insurer      string
	ContactName  string
	ContactPhone string
	ContactEmail string
}

type digestView struct {
	Title       string
	HeaderTitle string
	Test        bool
	Rows        []digestRow
}

var digestTemplate = template.Must(template.New("digest").Parse(digestHTML))

// BuildDigest construye asunto y cuerpo para las pólizas dadas. Es una función pura:
// ordena una copia por end_date (desempate por ID) y no trunca ni omite datos,
// de modo que la salida es reproducible byte a byte para la misma entrada.
func BuildDigest(policies []*entity.Policy, mode Mode) (Digest, error) {
	sorted := make([]*entity.Policy, len(policies))
	copy(sorted, policies)
	SortForDigest(sorted)

	view := digestView{
		Title:       "Policy Expiry Reminder",
		HeaderTitle: "Renewal Reminder",
		Test:        mode == ModeTest,
		Rows:        make([]digestRow, 0, len(sorted)),
	}
	if view.Test {
		view.Title = "PolicyMinders Test Email"
		view.HeaderTitle = "Test Email"
	}
	for _, p := range sorted {
		view.Rows = append(view.Rows, toRow(p))
	}

	var buf bytes.Buffer
	if err := digestTemplate.Execute(&buf, view); err != nil {
		return Digest{}, fmt.Errorf("reminder: renderizar digest: %w", err)
	}
	return Digest{Subject: Subject(sorted, mode), Body: buf.String()}, nil
}

// Subject asunto del digest. Con una sola póliza incluye el cliente y el ramo.
// policies debe venir ya ordenado (ver SortForDigest).
func Subject(policies []*entity.Policy, mode Mode) string {
	if mode == ModeTest {
		return subjectTestEmail
	}
	if len(policies) == 1 {
		p := policies[0]
		return fmt.Sprintf("%s – %s – %s", subjectPrefix, p.ClientName, p.Coverage())
	}
	return fmt.Sprintf("%s – %d Policies Expiring Soon", subjectPrefix, len(policies))
}

func toRow(p *entity.Policy) digestRow {
	count := notAvailable
	if p.Count != nil && *p.Count > 0 {
		count = strconv.Itoa(*p.Count)
	}
	return digestRow{
		ClientName:   p.ClientName,
		Coverage:     p.Coverage(),
		ClientStatus: p.ClientStatus,
		EndDate:      CalendarDate(p.EndDate).Format("2006-01-02"),
		Count:        count,
		Insurer:      p.InsurerName + " – " + p.ChannelType,
		ContactName:  p.ContactName,
		ContactPhone: p.ContactPhone,
		ContactEmail: p.ContactEmail,
	}
}

const digestHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Title}}</title>
</head>
<body style="margin: 0; padding: 0; background-color: #f1f5f9; font-family: Arial, sans-serif;">
  <table width="100%" cellpadding="0" cellspacing="0" style="background-color: #f1f5f9; padding: 40px 20px;">
    <tr>
      <td align="center">
        <table width="100%" cellpadding="0" cellspacing="0" style="max-width: 600px; background: #ffffff; border-radius: 12px;">
          <tr>
            <td style="background: #1d4ed8; padding: 32px 40px; text-align: center;">
              <h1 style="margin: 0; color: #ffffff; font-size: 26px;">PolicyMinders</h1>
              <p style="margin: 10px 0 0 0; color: #ffffff; font-size: 15px;">{{.HeaderTitle}}</p>
            </td>
          </tr>
          <tr>
            <td style="padding: 40px;">
              <p style="margin: 0 0 24px 0; font-size: 16px; color: #334155;">
{{- if .Test}}
                This is a <strong>test email</strong> showing how your policy reminders will look. The following are sample policies from your account:
{{- else}}
                Dear Broker,<br><br>The following insurance policies are <strong>approaching their renewal date</strong>:
{{- end}}
              </p>
{{- range .Rows}}
              <table width="100%" cellpadding="0" cellspacing="0" style="margin-bottom: 16px; border: 1px solid #e2e8f0;">
                <tr><td colspan="2" style="padding: 12px; font-weight: 700; color: #1e293b;">{{.ClientName}} — {{.Coverage}}</td></tr>
                <tr><td style="padding: 4px 12px; color: #64748b;"><strong>Status:</strong></td><td style="padding: 4px 12px;">{{.ClientStatus}}</td></tr>
                <tr><td style="padding: 4px 12px; color: #64748b;"><strong>End Date:</strong></td><td style="padding: 4px 12px;">{{.EndDate}}</td></tr>
                <tr><td style="padding: 4px 12px; color: #64748b;"><strong>Count:</strong></td><td style="padding: 4px 12px;">{{.Count}}</td></tr>
                <tr><td style="padding: 4px 12px; color: #64748b;"><strong>Insurer:</strong></td><td style="padding: 4px 12px;">{{.Insurer}}</td></tr>
                <tr><td style="padding: 4px 12px; color: #64748b;"><strong>Contact:</strong></td><td style="padding: 4px 12px;">{{.ContactName}} ({{.ContactPhone}} – <a href="mailto:{{.ContactEmail}}">{{.ContactEmail}}</a>)</td></tr>
              </table>
{{- end}}
            </td>
          </tr>
          <tr>
            <td style="background: #f8fafc; padding: 28px 40px; border-top: 1px solid #e2e8f0;">
              <p style="margin: 0; font-size: 12px; color: #94a3b8; text-align: center;">
                This reminder was sent automatically by PolicyMinders.<br>
                For support, contact your system admin.
              </p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>
`
