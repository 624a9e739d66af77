// Package notify рассылает магазинам письма о смене состояния их заказов.
package notify

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"io/fs"
	"os"
	texttemplate "text/template"

	gomail "gopkg.in/gomail.v2"
)

//go:embed templates/*
var builtinTemplates embed.FS

type Notification struct {
	To       string
	Subject  string
	Template string // имя шаблона без расширения, например "status_changed"
	Data     map[string]any
}

type Mailer interface {
	SendEmail(n Notification) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	SSL      bool
	// TemplateDir переопределяет встроенные шаблоны
	TemplateDir string
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type EmailSender struct {
	from      string
	templates fs.FS
	dialer    dialer
}

func NewEmailSender(cfg SMTPConfig) *EmailSender {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	d.SSL = cfg.SSL
	return &EmailSender{from: cfg.From, templates: templateFS(cfg.TemplateDir), dialer: d}
}

func templateFS(dir string) fs.FS {
	if dir != "" {
		return os.DirFS(dir)
	}
	sub, err := fs.Sub(builtinTemplates, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

func (s *EmailSender) SendEmail(n Notification) error {
	m, err := s.message(n)
	if err != nil {
		return err
	}
	return s.dialer.DialAndSend(m)
}

func (s *EmailSender) message(n Notification) (*gomail.Message, error) {
	htmlBody, err := s.renderHTML(n.Template, n.Data)
	if err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	plainBody, err := s.renderPlain(n.Template, n.Data)
	if err != nil {
		return nil, fmt.Errorf("render plain: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", n.To)
	m.SetHeader("Subject", n.Subject)
	m.SetBody("text/plain", plainBody)
	m.AddAlternative("text/html", htmlBody)
	return m, nil
}

func (s *EmailSender) renderHTML(name string, data map[string]any) (string, error) {
	tmpl, err := htmltemplate.ParseFS(s.templates, name+".html")
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (s *EmailSender) renderPlain(name string, data map[string]any) (string, error) {
	tmpl, err := texttemplate.ParseFS(s.templates, name+".txt")
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
