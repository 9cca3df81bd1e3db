package email

import (
	"bytes"
	"fmt"
	"html/template"

	"company-invites/internal/domain"
)

const inviteHTML = `<!DOCTYPE html>
<html>
	<body>
		<h2>You have been invited</h2>
		<p>An account has been created for you. Sign in with the credentials below.</p>
		<p>Email: <strong>{{.Email}}</strong></p>
		<p>Password: <strong>{{.Password}}</strong></p>
		{{- if .InviteURL}}
		<p><a href="{{.InviteURL}}">Accept your invitation</a></p>
		{{- end}}
	</body>
</html>
`

var inviteTemplate = template.Must(template.New("invite").Parse(inviteHTML))

// InviteComposer renders the invitation email for a provisioned account
type InviteComposer struct {
	subject string
}

func NewInviteComposer(subject string) *InviteComposer {
	return &InviteComposer{subject: subject}
}

func (c *InviteComposer) Compose(item domain.ProvisioningOutcome) (string, string, error) {
	var buf bytes.Buffer
	if err := inviteTemplate.Execute(&buf, item); err != nil {
		return "", "", fmt.Errorf("failed to render invite email: %w", err)
	}
	return c.subject, buf.String(), nil
}
