package report

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/carlmjohnson/requests"
	"github.com/osteele/liquid"

	"github.com/dbsmedya/cdosync/internal/config"
	"github.com/dbsmedya/cdosync/internal/logger"
	"github.com/dbsmedya/cdosync/internal/pipeline"
)

// DefaultSubjectTemplate is used when notification.subject_template is empty.
const DefaultSubjectTemplate = `{{ client }} - KORE Integration - {{ label }} {% if success %}Successful{% else %}Unsuccessful{% endif %} for {{ date }}`

// DefaultBodyTemplate is used when notification.body_template is empty.
const DefaultBodyTemplate = `<html><body style="font-family: Arial, sans-serif;">
<h2>{{ client }} - {{ label }} integration {% if success %}completed{% else %}failed{% endif %}</h2>
<p>Date: {{ date }}<br>Mode: {{ mode }}<br>Attempts: {{ attempts }}</p>
{% if success %}<table>
<tr><td>Records created</td><td>{{ created }}</td></tr>
<tr><td>Records updated</td><td>{{ updated }}</td></tr>
</table>{% else %}<p>All attempts failed. Last error:</p>
<pre>{{ error }}</pre>{% endif %}
</body></html>`

// Notifier emails the final outcome of a run through the Mailgun API.
type Notifier struct {
	cfg     config.NotificationConfig
	client  string
	loc     *time.Location
	http    *http.Client
	subject *liquid.Template
	body    *liquid.Template
	logger  *logger.Logger
}

// NewNotifier parses the configured templates. Dates render in loc; nil
// means UTC.
func NewNotifier(cfg config.NotificationConfig, client string, loc *time.Location, log *logger.Logger) (*Notifier, error) {
	if log == nil {
		log = logger.NewDefault()
	}
	if loc == nil {
		loc = time.UTC
	}

	subjectSrc, bodySrc := cfg.SubjectTemplate, cfg.BodyTemplate
	if subjectSrc == "" {
		subjectSrc = DefaultSubjectTemplate
	}
	if bodySrc == "" {
		bodySrc = DefaultBodyTemplate
	}

	engine := liquid.NewEngine()
	subject, err := engine.ParseString(subjectSrc)
	if err != nil {
		return nil, fmt.Errorf("subject template: %w", err)
	}
	body, err := engine.ParseString(bodySrc)
	if err != nil {
		return nil, fmt.Errorf("body template: %w", err)
	}

	return &Notifier{
		cfg:     cfg,
		client:  client,
		loc:     loc,
		http:    &http.Client{Timeout: 30 * time.Second},
		subject: subject,
		body:    body,
		logger:  log,
	}, nil
}

func (n *Notifier) bindings(r *pipeline.RunResult) liquid.Bindings {
	errMsg := ""
	if err := r.LastError(); err != nil {
		errMsg = err.Error()
	}
	return liquid.Bindings{
		"client":      n.client,
		"integration": r.Integration,
		"label":       r.Label,
		"mode":        r.Mode,
		"success":     r.Success,
		"created":     r.Created,
		"updated":     r.Updated,
		"attempts":    len(r.Attempts),
		"error":       errMsg,
		"date":        r.CompletedAt.In(n.loc).Format("2006-01-02"),
	}
}

// Render returns the subject and HTML body for r.
func (n *Notifier) Render(r *pipeline.RunResult) (string, string, error) {
	b := n.bindings(r)
	subject, err := n.subject.RenderString(b)
	if err != nil {
		return "", "", fmt.Errorf("render subject: %w", err)
	}
	body, err := n.body.RenderString(b)
	if err != nil {
		return "", "", fmt.Errorf("render body: %w", err)
	}
	return subject, body, nil
}

// ReportAttempt is a no-op; only the final outcome is emailed.
func (n *Notifier) ReportAttempt(context.Context, pipeline.Attempt) error {
	return nil
}

// ReportRun sends the outcome email.
func (n *Notifier) ReportRun(ctx context.Context, r *pipeline.RunResult) error {
	subject, body, err := n.Render(r)
	if err != nil {
		return err
	}

	form := url.Values{
		"from":    {n.cfg.From},
		"to":      n.cfg.To,
		"subject": {subject},
		"html":    {body},
	}

	var errBody string
	err = requests.
		URL(n.cfg.APIURL).
		Client(n.http).
		BasicAuth("api", n.cfg.APIKey).
		BodyForm(form).
		AddValidator(requests.ValidatorHandler(requests.DefaultValidator, requests.ToString(&errBody))).
		Fetch(ctx)
	if err != nil {
		if errBody != "" {
			return fmt.Errorf("send notification: %w: %s", err, errBody)
		}
		return fmt.Errorf("send notification: %w", err)
	}

	n.logger.Infof("Sent notification %q to %d recipients", subject, len(n.cfg.To))
	return nil
}
