// Package mail sends notification emails over SMTP. When the SMTP
// environment is not configured the mailer logs a mock line and reports
// success, so local development never needs a mail server.
package mail

import (
    "fmt"
    "log"
    "net/smtp"
    "os"
    "strings"
)

// Mailer holds SMTP settings resolved at startup and is injected into
// the queue consumer. A zero-config Mailer operates in mock mode.
type Mailer struct {
    Host     string
    Port     string
    Username string
    Password string
    FromName string
}

// NewFromEnv builds a Mailer from SMTP_HOST/PORT/USERNAME/PASSWORD and
// SMTP_FROM_NAME. Missing values leave the mailer in mock mode.
func NewFromEnv() *Mailer {
    return &Mailer{
        Host:     os.Getenv("SMTP_HOST"),
        Port:     os.Getenv("SMTP_PORT"),
        Username: os.Getenv("SMTP_USERNAME"),
        Password: os.Getenv("SMTP_PASSWORD"),
        FromName: os.Getenv("SMTP_FROM_NAME"),
    }
}

func (m *Mailer) configured() bool {
    return m.Host != "" && m.Port != "" && m.Username != "" && m.Password != ""
}

// Send delivers a plain-text email. In mock mode it logs the message
// and returns nil. Callers treat errors as best-effort: a failed send
// never fails the operation that triggered it.
func (m *Mailer) Send(to, subject, body string) error {
    if !m.configured() {
        log.Printf("[MOCK EMAIL] to:%s subject:%q", to, subject)
        return nil
    }

    safe := func(s string) string {
        return strings.ReplaceAll(strings.TrimSpace(s), "\r\n", " ")
    }
    subject = safe(subject)

    from := m.Username
    if m.FromName != "" {
        from = fmt.Sprintf("%s <%s>", m.FromName, m.Username)
    }

    var sb strings.Builder
    sb.WriteString("From: " + from + "\r\n")
    sb.WriteString("To: " + to + "\r\n")
    sb.WriteString("Subject: " + subject + "\r\n")
    sb.WriteString("MIME-Version: 1.0\r\n")
    sb.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
    sb.WriteString("\r\n")
    sb.WriteString(body)

    auth := smtp.PlainAuth("", m.Username, m.Password, m.Host)
    addr := m.Host + ":" + m.Port
    return smtp.SendMail(addr, auth, m.Username, []string{to}, []byte(sb.String()))
}
