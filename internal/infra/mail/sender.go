package mail

import (
	"bytes"
	"fmt"
	"os"
	"text/template"

	"gopkg.in/gomail.v2"
)

func NewReportSender(host string, port int, user, password, from, to string) *ReportSender {
	return &ReportSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
		To:       to,
	}
}

const failureTemplate = `
<h3>Job {{.JobName}} falhou</h3>
<p><b>Quando:</b> {{.FiredAt.Format "2006-01-02 15:04:05 MST"}}</p>
<p><b>Resultado:</b> {{.Message}}</p>
<p><b>Processados antes da falha:</b> {{.Count}}</p>
<p><small>host: {{.Hostname}}</small></p>
`

// SendJobFailure manda o digest de falha de um job agendado para o
// endereço de ops. Best effort: quem chama decide se o erro importa.
func (s *ReportSender) SendJobFailure(data JobReportData) error {
	t, err := template.New("failure").Parse(failureTemplate)
	if err != nil {
		return fmt.Errorf("erro no template de email: %w", err)
	}

	if data.Hostname == "" {
		data.Hostname, _ = os.Hostname()
	}

	var body bytes.Buffer
	if err := t.Execute(&body, data); err != nil {
		return fmt.Errorf("erro ao processar template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", s.To)
	m.SetHeader("Subject", fmt.Sprintf("⚠️ VisitorIQ: job %s falhou", data.JobName))
	m.SetBody("text/html", body.String())

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("erro ao enviar email SMTP: %w", err)
	}

	return nil
}
