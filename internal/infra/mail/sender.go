package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"os"

	"gopkg.in/gomail.v2"

	"github.com/xavierca1/lead-reconciliation/internal/entity"
)

//go:embed templates/*.html
var templates embed.FS

// maxLostInBody: o resto da lista vai só no CSV anexo.
const maxLostInBody = 50

func NewEmailSender(host string, port int, user, password string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     "nao-responda@tpacademia.com.br",
	}
}

// SendAuditReport manda o resumo da auditoria; attachment (CSV dos perdidos) é opcional.
func (s *EmailSender) SendAuditReport(to string, report entity.AuditReport, attachment string) error {
	m, err := s.auditMessage(to, report, attachment)
	if err != nil {
		return err
	}

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("erro ao enviar email SMTP: %w", err)
	}

	return nil
}

func (s *EmailSender) auditMessage(to string, report entity.AuditReport, attachment string) (*gomail.Message, error) {
	body, err := RenderAuditReport(report)
	if err != nil {
		return nil, err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Auditoria de agendamentos %s: %d conversões, %d perdidos 📊",
		report.ProcessedAt.Format("02/01/2006"), report.Conversions, report.Lost))
	m.SetBody("text/html", body)

	if attachment != "" {
		if _, err := os.Stat(attachment); err == nil {
			m.Attach(attachment)
		}
	}

	return m, nil
}

func RenderAuditReport(report entity.AuditReport) (string, error) {
	t, err := template.ParseFS(templates, "templates/audit_report.html")
	if err != nil {
		return "", fmt.Errorf("erro ao ler template de email: %w", err)
	}

	data := AuditEmailData{
		ProcessedAt: report.ProcessedAt.Format("02/01/2006 15:04"),
		Lines:       report.Lines(),
	}
	if report.LostRows != nil {
		for i, rec := range report.LostRows.Records {
			if i == maxLostInBody {
				data.MoreLost = report.LostRows.Len() - maxLostInBody
				break
			}
			data.Lost = append(data.Lost, LostLead{
				Name:       rec.String(entity.ColStudent),
				Enrollment: rec.String(entity.ColEnrollment),
				EventType:  rec.String(entity.ColEventType),
				Date:       rec.String(entity.ColDate),
			})
		}
	}

	var body bytes.Buffer
	if err := t.Execute(&body, data); err != nil {
		return "", fmt.Errorf("erro ao processar template: %w", err)
	}

	return body.String(), nil
}
