package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"os"

	"github.com/sirupsen/logrus"
)

var mailTemplates = map[string]*template.Template{
	"issue-notification": template.Must(template.New("issue-notification").Parse(`<html>
<body>
  <p>Hello {{.userName}},</p>
  <p>{{.message}}</p>
  <table>
    <tr><td>Issue</td><td>{{.issueTitle}}</td></tr>
    <tr><td>Category</td><td>{{.category}}</td></tr>
    <tr><td>Status</td><td>{{.status}}</td></tr>
    <tr><td>Priority</td><td>{{.priority}}</td></tr>
  </table>
  <p>CivicPulse</p>
</body>
</html>`)),
}

// SMTPMailer sends templated HTML mail over plain SMTP. Delivery is
// best-effort everywhere it is used; callers log and move on.
type SMTPMailer struct {
	host     string
	port     string
	from     string
	username string
	password string
	log      *logrus.Logger
}

func NewSMTPMailerFromEnv(log *logrus.Logger) *SMTPMailer {
	return &SMTPMailer{
		host:     os.Getenv("SMTP_HOST"),
		port:     os.Getenv("SMTP_PORT"),
		from:     os.Getenv("SMTP_FROM"),
		username: os.Getenv("SMTP_USER"),
		password: os.Getenv("SMTP_PASSWORD"),
		log:      log,
	}
}

func (m *SMTPMailer) Send(to, subject, templateName string, data map[string]interface{}) error {
	if m.host == "" {
		return fmt.Errorf("SMTP_HOST not configured")
	}

	tmpl, ok := mailTemplates[templateName]
	if !ok {
		return fmt.Errorf("unknown mail template %q", templateName)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return err
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		m.from, to, subject, body.String())

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	return smtp.SendMail(m.host+":"+m.port, auth, m.from, []string{to}, []byte(msg))
}
