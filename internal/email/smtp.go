package email

import (
	"bytes"
	"fmt"
	"log"
	"net/smtp"
	"text/template"
)

type Config struct {
	Host     string
	Port     int
	User     string
	Pass     string
	FromName string
	FromAddr string
}

func (c *Config) Send(to, subject, body string, html bool) error {
	if to == "" {
		log.Printf("[email] erro de config: destinatário (to) vazio")
		return fmt.Errorf("destinatário de e-mail vazio")
	}
	if c.Host == "" {
		log.Printf("[email] erro de config: SMTP host vazio (destinatário=%s)", to)
		return fmt.Errorf("SMTP host não configurado")
	}
	if c.FromAddr == "" {
		log.Printf("[email] erro de config: SMTP remetente vazio (destinatário=%s)", to)
		return fmt.Errorf("SMTP remetente (From) não configurado")
	}
	port := c.Port
	if port == 0 {
		port = 25
	}
	addr := fmt.Sprintf("%s:%d", c.Host, port)
	log.Printf("[email] enviando para %s assunto=%q via %s (from=%s)", to, subject, addr, c.FromAddr)
	from := c.FromAddr
	if c.FromName != "" {
		from = fmt.Sprintf("%s <%s>", c.FromName, c.FromAddr)
	}
	headers := map[string]string{
		"From":         from,
		"To":           to,
		"Subject":      subject,
		"Content-Type": "text/plain; charset=UTF-8",
	}
	if html {
		headers["Content-Type"] = "text/html; charset=UTF-8"
	}
	var buf bytes.Buffer
	for k, v := range headers {
		buf.WriteString(k + ": " + v + "\r\n")
	}
	buf.WriteString("\r\n")
	buf.WriteString(body)
	err := smtp.SendMail(addr, c.authForSend(), c.FromAddr, []string{to}, buf.Bytes())
	if err != nil {
		log.Printf("[email] falha ao enviar para %s assunto=%q: %v", to, subject, err)
		return err
	}
	log.Printf("[email] enviado com sucesso para %s assunto=%q", to, subject)
	return nil
}

// authForSend returns nil when User is empty (e.g. MailHog), so no AUTH is sent.
func (c *Config) authForSend() smtp.Auth {
	if c.User != "" {
		return smtp.PlainAuth("", c.User, c.Pass, c.Host)
	}
	return nil
}

// LogConfigSummary loga um resumo da config SMTP (sem senha) para diagnóstico.
func (c *Config) LogConfigSummary() {
	auth := "não"
	if c.User != "" {
		auth = "sim (user=" + c.User + ")"
	}
	log.Printf("[email] config SMTP: host=%s port=%d from=%q auth=%s", c.Host, c.Port, c.FromAddr, auth)
	if c.Host == "" || c.FromAddr == "" {
		log.Printf("[email] aviso: host ou from vazio; envios podem falhar")
	}
}

// SendAnamnesisFormLink envia o link público do formulário de anamnese ao responsável.
func (c *Config) SendAnamnesisFormLink(to, guardianName, patientName, formURL string, validDays int) error {
	if to == "" || formURL == "" {
		log.Printf("[email] SendAnamnesisFormLink: to ou formURL vazio")
		return fmt.Errorf("to ou formURL vazio")
	}
	tpl := `Olá{{if .GuardianName}}, {{.GuardianName}}{{end}},

Recebemos o cadastro de {{.PatientName}} e precisamos que você preencha o formulário de anamnese. Acesse o link abaixo (válido por {{.ValidDays}} dias):

{{.FormURL}}

O link só pode ser usado uma vez. Depois do envio, qualquer ajuste deve ser feito com a equipe da clínica.`
	t, err := template.New("").Parse(tpl)
	if err != nil {
		log.Printf("[email] SendAnamnesisFormLink: erro ao parsear template: %v", err)
		return err
	}
	var b bytes.Buffer
	if err := t.Execute(&b, map[string]interface{}{
		"GuardianName": guardianName,
		"PatientName":  patientName,
		"FormURL":      formURL,
		"ValidDays":    validDays,
	}); err != nil {
		log.Printf("[email] SendAnamnesisFormLink: erro ao executar template: %v", err)
		return err
	}
	return c.Send(to, "Formulário de anamnese - "+patientName, b.String(), false)
}

// SendReferralAssigned notifica a assistente de que um encaminhamento foi atribuído a ela.
func (c *Config) SendReferralAssigned(to, assistantName, patientName, reportURL string) error {
	if to == "" {
		log.Printf("[email] SendReferralAssigned: destinatário vazio")
		return fmt.Errorf("destinatário vazio")
	}
	tpl := `Olá, {{.AssistantName}},

Um novo encaminhamento do paciente {{.PatientName}} foi atribuído a você. O relatório com os campos liberados está disponível em:

{{.ReportURL}}

Qualquer dúvida, fale com a profissional responsável.`
	t, err := template.New("").Parse(tpl)
	if err != nil {
		log.Printf("[email] SendReferralAssigned: erro ao parsear template: %v", err)
		return err
	}
	var b bytes.Buffer
	if err := t.Execute(&b, map[string]string{
		"AssistantName": assistantName,
		"PatientName":   patientName,
		"ReportURL":     reportURL,
	}); err != nil {
		log.Printf("[email] SendReferralAssigned: erro ao executar template: %v", err)
		return err
	}
	return c.Send(to, "Novo encaminhamento - "+patientName, b.String(), false)
}
