// Package mailer composes and sends the account lifecycle emails over
// SMTP. Sends run in the background so the views never block on a mail
// server round trip.
package mailer

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"io"
	"log"
	netmail "net/mail"
	"net/smtp"
	"time"

	"github.com/emersion/go-message/mail"
)

// SMTPMailer sends mail through a single SMTP account.
type SMTPMailer struct {
	host     string
	port     string
	username string
	password string
	from     string
	tls      bool
}

// NewSMTPMailer creates a new mailer configuration. With tls set the
// connection is implicit TLS, otherwise STARTTLS is negotiated.
func NewSMTPMailer(host, port, username, password, from string, useTLS bool) *SMTPMailer {
	return &SMTPMailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		tls:      useTLS,
	}
}

// SendRegisterEmail mails an activation token to a new account.
func (m *SMTPMailer) SendRegisterEmail(to, token string) {
	body := fmt.Sprintf(
		"Welcome to listkeeper.\n\n"+
			"Activate your account by entering this token on the login screen:\n\n"+
			"    %s\n\n"+
			"The token expires in 48 hours.\n", token)
	m.sendAsync(to, "Activate your listkeeper account", body)
}

// SendResetPasswordEmail mails a password reset token.
func (m *SMTPMailer) SendResetPasswordEmail(to, token string) {
	body := fmt.Sprintf(
		"A password reset was requested for your listkeeper account.\n\n"+
			"Enter this token on the login screen to choose a new password:\n\n"+
			"    %s\n\n"+
			"The token expires in 2 hours. If you did not request a reset,\n"+
			"ignore this message.\n", token)
	m.sendAsync(to, "Reset your listkeeper password", body)
}

// sendAsync delivers in the background. Failures are logged, not surfaced;
// the user can always request another token.
func (m *SMTPMailer) sendAsync(to, subject, body string) {
	go func() {
		if err := m.send(to, subject, body); err != nil {
			log.Printf("mailer: sending %q to %s: %v", subject, to, err)
		}
	}()
}

func (m *SMTPMailer) send(to, subject, body string) error {
	msg, err := compose(m.from, to, subject, body)
	if err != nil {
		return err
	}

	addr := m.host + ":" + m.port
	auth := smtp.PlainAuth("", m.username, m.password, m.host)

	if m.tls {
		return m.sendImplicitTLS(addr, auth, to, msg)
	}
	return smtp.SendMail(addr, auth, m.from, []string{to}, msg)
}

// sendImplicitTLS dials a TLS socket first, for servers that do not speak
// STARTTLS on the submission port.
func (m *SMTPMailer) sendImplicitTLS(addr string, auth smtp.Auth, to string, msg []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: m.host})
	if err != nil {
		return fmt.Errorf("connecting to SMTP %s: %w", addr, err)
	}

	client, err := smtp.NewClient(conn, m.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("starting SMTP session: %w", err)
	}
	defer client.Close()

	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("authenticating as %s: %w", m.username, err)
	}
	if err := client.Mail(m.from); err != nil {
		return fmt.Errorf("setting sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("setting recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("opening message body: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("writing message body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing message body: %w", err)
	}
	return client.Quit()
}

// compose builds an RFC 5322 message with a plain text body.
func compose(from, to, subject, body string) ([]byte, error) {
	fromAddr, err := netmail.ParseAddress(from)
	if err != nil {
		return nil, fmt.Errorf("parsing sender address %q: %w", from, err)
	}
	toAddr, err := netmail.ParseAddress(to)
	if err != nil {
		return nil, fmt.Errorf("parsing recipient address %q: %w", to, err)
	}

	var header mail.Header
	header.SetDate(time.Now())
	header.SetAddressList("From", []*mail.Address{fromAddr})
	header.SetAddressList("To", []*mail.Address{toAddr})
	header.SetSubject(subject)

	var buf bytes.Buffer
	mw, err := mail.CreateSingleInlineWriter(&buf, header)
	if err != nil {
		return nil, fmt.Errorf("creating message writer: %w", err)
	}
	if _, err := io.WriteString(mw, body); err != nil {
		return nil, fmt.Errorf("writing message body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("closing message writer: %w", err)
	}
	return buf.Bytes(), nil
}
