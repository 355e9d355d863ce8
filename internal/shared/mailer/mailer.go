package mailer

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/benalimarwa/gestion-stock-sub003/internal/config"
)

// Message outbound email payload
type Message struct {
	Sender     string
	Recipients []string
	Subject    string
	HTMLBody   string
}

// Result per-recipient delivery outcome
type Result struct {
	Accepted []string
	Rejected []string
}

// Mailer SMTP delivery client. Failures are reported per recipient; a send is
// a best-effort side effect and never blocks a state transition.
type Mailer struct {
	host        string
	port        int
	user        string
	password    string
	sender      string
	dialTimeout time.Duration
}

func New(cfg config.SMTPConfig) *Mailer {
	return &Mailer{
		host:        cfg.Host,
		port:        cfg.Port,
		user:        cfg.User,
		password:    cfg.Password,
		sender:      cfg.Sender,
		dialTimeout: 30 * time.Second,
	}
}

// Enabled reports whether an SMTP host is configured
func (m *Mailer) Enabled() bool {
	return m != nil && m.host != ""
}

// Send delivers one message to every recipient.
func (m *Mailer) Send(ctx context.Context, msg Message) (*Result, error) {
	result := &Result{}
	if !m.Enabled() {
		result.Rejected = append(result.Rejected, msg.Recipients...)
		return result, fmt.Errorf("smtp not configured")
	}

	sender := msg.Sender
	if sender == "" {
		sender = m.sender
	}

	addr := fmt.Sprintf("%s:%d", m.host, m.port)

	timeout := m.dialTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if d := time.Until(deadline); d < timeout {
			timeout = d
		}
	}

	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		result.Rejected = append(result.Rejected, msg.Recipients...)
		return result, fmt.Errorf("dial smtp: %w", err)
	}

	client, err := smtp.NewClient(conn, m.host)
	if err != nil {
		conn.Close()
		result.Rejected = append(result.Rejected, msg.Recipients...)
		return result, fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if m.user != "" {
		if ok, _ := client.Extension("AUTH"); ok {
			auth := smtp.PlainAuth("", m.user, m.password, m.host)
			if err := client.Auth(auth); err != nil {
				result.Rejected = append(result.Rejected, msg.Recipients...)
				return result, fmt.Errorf("smtp auth: %w", err)
			}
		}
	}

	if err := client.Mail(sender); err != nil {
		result.Rejected = append(result.Rejected, msg.Recipients...)
		return result, fmt.Errorf("smtp mail from: %w", err)
	}

	for _, rcpt := range msg.Recipients {
		if err := client.Rcpt(rcpt); err != nil {
			result.Rejected = append(result.Rejected, rcpt)
			continue
		}
		result.Accepted = append(result.Accepted, rcpt)
	}

	if len(result.Accepted) == 0 {
		return result, fmt.Errorf("no recipient accepted")
	}

	w, err := client.Data()
	if err != nil {
		result.Rejected = append(result.Rejected, result.Accepted...)
		result.Accepted = nil
		return result, fmt.Errorf("smtp data: %w", err)
	}

	if _, err := w.Write([]byte(m.buildBody(sender, msg))); err != nil {
		w.Close()
		result.Rejected = append(result.Rejected, result.Accepted...)
		result.Accepted = nil
		return result, fmt.Errorf("write body: %w", err)
	}
	if err := w.Close(); err != nil {
		result.Rejected = append(result.Rejected, result.Accepted...)
		result.Accepted = nil
		return result, fmt.Errorf("close body: %w", err)
	}

	client.Quit()
	return result, nil
}

func (m *Mailer) buildBody(sender string, msg Message) string {
	var b strings.Builder
	b.WriteString("From: " + sender + "\r\n")
	b.WriteString("To: " + strings.Join(msg.Recipients, ", ") + "\r\n")
	b.WriteString("Subject: " + msg.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("Date: " + time.Now().Format(time.RFC1123Z) + "\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTMLBody)
	b.WriteString("\r\n")
	return b.String()
}
