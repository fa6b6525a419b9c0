package utils

import (
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"school/config"
	"school/logger"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// SendEmail delivers one HTML message through SendGrid. Without an API key
// the message is only logged.
func SendEmail(to, subject, htmlBody string) error {
	cfg := config.AppConfig
	log := logger.Log.With("to", MaskEmail(to), "subject", subject)
	if cfg.SendgridAPIKey == "" {
		log.Debug("email skipped, SENDGRID_API_KEY not set")
		return nil
	}

	m := sgmail.NewV3Mail()
	m.SetFrom(sgmail.NewEmail(cfg.EmailSenderName, cfg.EmailSender))
	p := sgmail.NewPersonalization()
	p.Subject = subject
	p.AddTos(sgmail.NewEmail("", to))
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/html", htmlBody))

	req := sendgrid.GetRequest(cfg.SendgridAPIKey, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m)

	res, err := sendgrid.API(req)
	if err != nil {
		log.Warn("sending email failed", "error", err)
		return err
	}
	if res.StatusCode >= http.StatusBadRequest {
		log.Warn("sendgrid rejected email", "status", res.StatusCode, "body", res.Body)
		return fmt.Errorf("sendgrid: status %d", res.StatusCode)
	}
	log.Info("email sent")
	return nil
}

func getEmailTemplate(title, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; }
			.header { background-color: #0B3D2E; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; }
			.content { padding: 40px 30px; color: #1F2937; line-height: 1.6; }
			.info-box { background: #ECFDF5; padding: 15px; border-radius: 4px; border-left: 4px solid #10B981; margin: 20px 0; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header"><h1>%s</h1></div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">&copy; %d %s</div>
		</div>
	</body>
	</html>
	`, esc(config.AppConfig.EmailSenderName), esc(title), bodyContent, time.Now().Year(), esc(config.AppConfig.EmailSenderName))
}

// SendEnrollmentEmail tells the student the course is unlocked. Best effort.
func SendEnrollmentEmail(email, courseTitle string, expiresAt time.Time) {
	body := fmt.Sprintf(`
		<p>Olá, %s!</p>
		<p>Seu pagamento foi confirmado e o acesso ao curso abaixo está liberado:</p>
		<div class="info-box"><strong>%s</strong><br>Acesso válido até %s</div>
		<p>Bons estudos!</p>`,
		esc(DisplayName(email)), esc(courseTitle), expiresAt.Format("02/01/2006"))
	_ = SendEmail(email, "Matrícula confirmada: "+courseTitle, getEmailTemplate("Matrícula confirmada", body))
}

// SendCertificateEmail sends the certificate number for verification. Best effort.
func SendCertificateEmail(email, courseTitle, certificateNumber string) {
	body := fmt.Sprintf(`
		<p>Parabéns, %s!</p>
		<p>Você concluiu o curso <strong>%s</strong>.</p>
		<div class="info-box">Número do certificado:<br><strong>%s</strong></div>
		<p>Use este número para validar o certificado.</p>`,
		esc(DisplayName(email)), esc(courseTitle), esc(certificateNumber))
	_ = SendEmail(email, "Certificado emitido: "+courseTitle, getEmailTemplate("Certificado de conclusão", body))
}

func esc(s string) string {
	return template.HTMLEscapeString(strings.TrimSpace(s))
}
