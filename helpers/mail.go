package helpers

import (
	"bytes"
	"io"
	"strings"
	"text/template"

	"github.com/pkg/errors"
	"gopkg.in/gomail.v2"
)

var ErrEmptyRecipient = errors.New("email recipient is empty")

// MailSender is satisfied by *gomail.Dialer.
type MailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

type EmailData struct {
	EmailTo     string
	NameTo      string
	EmailFrom   string
	NameFrom    string
	Subject     string
	Template    *template.Template
	FileName    string
	FileContent []byte
	Sender      MailSender
}

// SendEmail renders the template with data as a plain text body and sends it.
func (ed *EmailData) SendEmail(data interface{}) error {
	if strings.TrimSpace(ed.EmailTo) == "" {
		return ErrEmptyRecipient
	}

	var tpl bytes.Buffer
	if err := ed.Template.Execute(&tpl, data); err != nil {
		return errors.Wrapf(err, "failed rendering %s", ed.Template.Name())
	}

	m := gomail.NewMessage()

	if ed.FileContent != nil {
		m.Attach(ed.FileName, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(ed.FileContent)
			return err
		}))
	}

	m.SetHeader("From", m.FormatAddress(ed.EmailFrom, ed.NameFrom))
	m.SetHeader("To", m.FormatAddress(ed.EmailTo, ed.NameTo))
	m.SetHeader("Subject", ed.Subject)
	m.SetBody("text/plain", tpl.String())
	if err := ed.Sender.DialAndSend(m); err != nil {
		return errors.Wrapf(err, "failed sending email to %s", ed.EmailTo)
	}
	return nil
}
