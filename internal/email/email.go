// Package email renders and delivers agent-facing notification emails.
package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"terraflow_backend/platform/config"
)

// Sender delivers notification emails to agents.
type Sender interface {
	// SendHotLeadAlert notifies an agent that a new lead scored above the
	// hot-lead threshold.
	SendHotLeadAlert(ctx context.Context, toEmail, agentName, leadName string, aiScore int, leadURL string) error

	// SendAttentionDigest sends the list of leads that have sat in
	// Contacted too long.
	SendAttentionDigest(ctx context.Context, toEmail, agentName string, leads []DigestLead, dashboardURL string) error
}

// DigestLead is one row of the needs-attention digest.
type DigestLead struct {
	Name        string
	Status      string
	DaysStalled int
}

const (
	subjectHotLead         = "New hot lead: %s"
	subjectAttentionDigest = "%d leads need your attention"
)

// NewSender builds the configured email sender. A nil Sender means delivery
// is disabled; callers treat that as a logged no-op.
func NewSender(cfg config.EmailConfig) (Sender, error) {
	if !cfg.GetEmailEnabled() {
		return nil, nil
	}
	if cfg.GetSMTPHost() == "" {
		return nil, fmt.Errorf("SMTP_HOST is required when email is enabled")
	}

	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	), nil
}

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type hotLeadData struct {
	AgentName string
	LeadName  string
	AIScore   int
	LeadURL   string
}

type attentionDigestData struct {
	AgentName    string
	Leads        []DigestLead
	DashboardURL string
}

func renderTemplate(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render email template %s: %w", name, err)
	}
	return buf.String(), nil
}
