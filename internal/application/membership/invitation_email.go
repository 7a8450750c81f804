package membership

import (
	"bytes"
	"fmt"
	"html/template"
)

type invitationEmailView struct {
	InviterEmail     string
	OrganizationName string
	AcceptURL        string
	ExpiresInDays    int
}

var invitationEmailTemplate = template.Must(template.New("invitation").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>You've been invited!</h2>
  <p>{{.InviterEmail}} has invited you to join <strong>{{.OrganizationName}}</strong> on PolicyMinders.</p>
  <p>Click the link below to accept your invitation:</p>
  <p><a href="{{.AcceptURL}}" style="background-color: #0066cc; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; display: inline-block;">Accept Invitation</a></p>
  <p style="color: #666; font-size: 12px; margin-top: 20px;">This invitation expires in {{.ExpiresInDays}} days.</p>
</div>
`))

func invitationSubject(organizationName string) string {
	return fmt.Sprintf("You've been invited to join %s on PolicyMinders", organizationName)
}

func renderInvitationEmail(v invitationEmailView) (string, error) {
	var buf bytes.Buffer
	if err := invitationEmailTemplate.Execute(&buf, v); err != nil {
		return "", fmt.Errorf("renderizar email de invitación: %w", err)
	}
	return buf.String(), nil
}
