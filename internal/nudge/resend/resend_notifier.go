package resend

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/brk3/habitbattles/internal/nudge"
	"github.com/resend/resend-go/v2"
)

type ResendNotifier struct {
	ApiKey string
	Email  string
	From   string
}

const htmlTemplate = `
{{if .Expiring}}
<p>These daily streaks end in {{.HoursLeft}} hours unless you check in today:</p>
<ul>
{{range .Expiring}}
  <li>{{.}}</li>
{{end}}
</ul>
{{end}}
{{if .QuotaRisk}}
<p>These habits need a check-in every remaining day to hit this week's target:</p>
<ul>
{{range .QuotaRisk}}
  <li>{{.HabitName}}: {{.Remaining}} more in {{.DaysLeft}} days</li>
{{end}}
</ul>
{{end}}
`

var tmpl = template.Must(template.New("email").Parse(htmlTemplate))

func subject(r nudge.Report) string {
	switch {
	case len(r.Expiring) > 0:
		return "Streaks are expiring soon"
	default:
		return "Weekly targets at risk"
	}
}

func render(r nudge.Report) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, r); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (n *ResendNotifier) SendNudge(ctx context.Context, r nudge.Report) error {
	body, err := render(r)
	if err != nil {
		return fmt.Errorf("render nudge: %w", err)
	}

	from := n.From
	if from == "" {
		from = "onboarding@resend.dev"
	}
	client := resend.NewClient(n.ApiKey)
	params := &resend.SendEmailRequest{
		From:    from,
		To:      []string{n.Email},
		Subject: subject(r),
		Html:    body,
	}

	_, err = client.Emails.SendWithContext(ctx, params)
	return err
}
