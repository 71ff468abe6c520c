package utils

import (
	"fmt"
	"html"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

type EmailMessage struct {
	ToEmail string
	ToName  string
	Subject string
	HTML    string
}

// Mailer delivers messages in the background. Failures are logged, never
// returned to the caller.
type Mailer interface {
	SendMessages(messages ...EmailMessage)
}

type SendgridMailer struct {
	key  string
	from *sgmail.Email
	log  *zap.SugaredLogger
	host string
}

func NewSendgridMailer(key, senderName, senderEmail string, log *zap.SugaredLogger) *SendgridMailer {
	return &SendgridMailer{
		key:  key,
		from: sgmail.NewEmail(senderName, senderEmail),
		log:  log,
		host: "https://api.sendgrid.com",
	}
}

func (m *SendgridMailer) SendMessages(messages ...EmailMessage) {
	for _, msg := range messages {
		go func(msg EmailMessage) {
			if err := m.send(msg); err != nil {
				m.log.Errorw("[MAILER] Error sending email", "to", msg.ToEmail, "subject", msg.Subject, "error", err)
				return
			}
			m.log.Infow("[MAILER] Email sent", "to", msg.ToEmail, "subject", msg.Subject)
		}(msg)
	}
}

func (m *SendgridMailer) send(msg EmailMessage) error {
	to := sgmail.NewEmail(msg.ToName, msg.ToEmail)
	body := sgmail.NewSingleEmail(m.from, msg.Subject, to, "", msg.HTML)

	req := sendgrid.GetRequest(m.key, "/v3/mail/send", m.host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(body)

	res, err := sendgrid.API(req)
	if err != nil {
		return err
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid responded %d: %s", res.StatusCode, res.Body)
	}
	return nil
}

// ConsoleMailer writes messages to the log. Used when no SendGrid key is set.
type ConsoleMailer struct {
	log *zap.SugaredLogger
}

func NewConsoleMailer(log *zap.SugaredLogger) *ConsoleMailer {
	return &ConsoleMailer{log: log}
}

func (m *ConsoleMailer) SendMessages(messages ...EmailMessage) {
	for _, msg := range messages {
		m.log.Infow("[MAILER] --- Sending Email ---", "to", msg.ToEmail, "subject", msg.Subject, "bytes", len(msg.HTML))
	}
}

// HTML wrapper shared by every transactional email
func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; box-shadow: 0 4px 15px rgba(0,0,0,0.05); }
			.header { background-color: #1B3A5C; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #1B3A5C; line-height: 1.6; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; border-top: 1px solid #E0E0E0; }
			.btn { display: inline-block; padding: 12px 24px; background-color: #4CAF50; color: #FFFFFF; text-decoration: none; border-radius: 4px; font-weight: bold; margin-top: 20px; }
			.info-box { background: #E8F0FE; padding: 15px; border-radius: 4px; border-left: 4px solid #4CAF50; margin: 20px 0; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header">
				<h1>E-LEARNING</h1>
			</div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">
				You received this email because you have an account on our platform.
			</div>
		</div>
	</body>
	</html>
	`, title, bodyContent)
}

// EnrollmentEmail confirms an enrollment. For priced programs it carries the
// virtual account and the payment deadline.
func EnrollmentEmail(email, userName, programTitle string, amountIdr int64, virtualAccount, dueAt string) EmailMessage {
	body := fmt.Sprintf(`<p>Dear %s,</p><p>You have successfully enrolled in:</p><h3>%s</h3>`,
		html.EscapeString(userName), html.EscapeString(programTitle))
	if virtualAccount != "" {
		body += fmt.Sprintf(`<div class="info-box">Amount: <b>IDR %d</b><br>Virtual account: <b>%s</b><br>Pay before: <b>%s</b></div>
<p>Your enrollment is activated as soon as the payment is verified.</p>`, amountIdr, virtualAccount, dueAt)
	} else {
		body += `<p>You can now access the program and start learning.</p>`
	}
	return EmailMessage{
		ToEmail: email,
		ToName:  userName,
		Subject: "Enrollment Confirmation",
		HTML:    getEmailTemplate("Enrollment Successful!", body),
	}
}

// CertificateEmail announces an issued certificate
func CertificateEmail(email, userName, programTitle, credential, documentURL string) EmailMessage {
	body := fmt.Sprintf(`<p>Dear %s,</p><p>Congratulations on completing:</p><h3>%s</h3>
<div class="info-box">Your certificate credential: <b>%s</b></div>`,
		html.EscapeString(userName), html.EscapeString(programTitle), credential)
	if documentURL != "" {
		body += fmt.Sprintf(`<a class="btn" href="%s">Download certificate</a>`, html.EscapeString(documentURL))
	}
	return EmailMessage{
		ToEmail: email,
		ToName:  userName,
		Subject: "Certificate of Completion",
		HTML:    getEmailTemplate("Certificate of Completion", body),
	}
}
