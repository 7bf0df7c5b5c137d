// Package email sends deadline digests by e-mail through SendGrid.
package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/alem-hub/course-schedule/internal/domain/schedule"
)

var (
	host     = "https://api.sendgrid.com"
	endpoint = "/v3/mail/send"
)

// Config holds SendGrid settings.
type Config struct {
	APIKey    string
	AppName   string
	FromEmail string
	// Recipients are RFC 5322 addresses, e.g. "Mentors <mentors@example.com>".
	Recipients []string
}

// DeadlineMailer implements schedule.DeadlineNotifier over SendGrid.
type DeadlineMailer struct {
	key        string
	host       string
	from       *sgmail.Email
	to         []*sgmail.Email
	subjPrefix string
}

// NewDeadlineMailer parses recipients and creates a mailer.
func NewDeadlineMailer(cfg Config) (*DeadlineMailer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("sendgrid api key is empty")
	}
	if len(cfg.Recipients) == 0 {
		return nil, fmt.Errorf("no digest recipients configured")
	}

	to := make([]*sgmail.Email, 0, len(cfg.Recipients))
	for _, raw := range cfg.Recipients {
		addr, err := mail.ParseAddress(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid recipient %q: %w", raw, err)
		}
		to = append(to, sgmail.NewEmail(addr.Name, addr.Address))
	}

	return &DeadlineMailer{
		key:        cfg.APIKey,
		host:       host,
		from:       sgmail.NewEmail(cfg.AppName, cfg.FromEmail),
		to:         to,
		subjPrefix: "[" + cfg.AppName + "] ",
	}, nil
}

// NotifyDeadlines sends one message per digest to all recipients.
func (m *DeadlineMailer) NotifyDeadlines(ctx context.Context, digest schedule.DeadlineDigest) error {
	msg, err := m.prepare(digest)
	if err != nil {
		return err
	}

	req := sendgrid.GetRequest(m.key, endpoint, m.host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(msg)

	if err := ctx.Err(); err != nil {
		return err
	}
	res, err := sendgrid.API(req)
	if err != nil {
		return fmt.Errorf("send deadline digest for course %d: %w", digest.CourseID, err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("send deadline digest for course %d: status %d: %s", digest.CourseID, res.StatusCode, res.Body)
	}
	return nil
}

func (m *DeadlineMailer) prepare(digest schedule.DeadlineDigest) (*sgmail.SGMailV3, error) {
	p := sgmail.NewPersonalization()
	p.Subject = fmt.Sprintf("%sCourse %d: %d task(s) due soon", m.subjPrefix, digest.CourseID, len(digest.Tasks))
	p.AddTos(m.to...)

	htmlBody, err := renderHTML(digest)
	if err != nil {
		return nil, err
	}

	msg := sgmail.NewV3Mail()
	msg.SetFrom(m.from)
	msg.AddPersonalizations(p)
	msg.AddContent(
		sgmail.NewContent("text/plain", renderText(digest)),
		sgmail.NewContent("text/html", htmlBody),
	)
	return msg, nil
}

func formatDeadline(t *time.Time) string {
	if t == nil {
		return "no deadline"
	}
	return t.UTC().Format("2006-01-02 15:04 MST")
}

func renderText(digest schedule.DeadlineDigest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Tasks of course %d with deadlines ahead:\n\n", digest.CourseID)
	for _, t := range digest.Tasks {
		fmt.Fprintf(&b, "- %s (#%d): %s\n", t.Name, t.ID, formatDeadline(t.EndDate))
	}
	return b.String()
}

var digestHTML = template.Must(template.New("digest").Funcs(template.FuncMap{
	"deadline": formatDeadline,
}).Parse(`<p>Tasks of course {{.CourseID}} with deadlines ahead:</p>
<ul>{{range .Tasks}}
<li><b>{{.Name}}</b> (#{{.ID}}): {{deadline .EndDate}}</li>{{end}}
</ul>`))

func renderHTML(digest schedule.DeadlineDigest) (string, error) {
	var buf bytes.Buffer
	if err := digestHTML.Execute(&buf, digest); err != nil {
		return "", fmt.Errorf("render digest: %w", err)
	}
	return buf.String(), nil
}

var _ schedule.DeadlineNotifier = (*DeadlineMailer)(nil)
