package email

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"academy-scheduler/config"
)

var ErrNotConfigured = errors.New("email: sendgrid not configured")

// Sender delivers a single rendered message to one recipient.
type Sender interface {
	Send(ctx context.Context, to, toName, subject, html string) error
}

type service struct {
	key  string
	from *sgmail.Email
}

func NewSender(cfg config.Email) (Sender, error) {
	if cfg.SendGridKey == "" || cfg.FromAddress == "" {
		return nil, ErrNotConfigured
	}
	return &service{
		key:  cfg.SendGridKey,
		from: sgmail.NewEmail(cfg.FromName, cfg.FromAddress),
	}, nil
}

func (svc *service) Send(ctx context.Context, to, toName, subject, html string) error {
	m := sgmail.NewV3Mail()
	m.SetFrom(svc.from)

	p := sgmail.NewPersonalization()
	p.Subject = subject
	p.AddTos(sgmail.NewEmail(toName, to))
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/html", html))

	req := sendgrid.GetRequest(svc.key, "/v3/mail/send", "https://api.sendgrid.com")
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m)

	res, err := sendgrid.API(req)
	if err != nil {
		return err
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("email: sendgrid returned %d", res.StatusCode)
	}
	return nil
}
