package email

import (
	"context"
	"fmt"
	"net/http"
	"net/mail"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// SendGridSender delivers mail through the SendGrid v3 API.
type SendGridSender struct {
	key  string
	host string
	from mail.Address
	// api is swapped in tests.
	api func(ctx context.Context, req rest.Request) (*rest.Response, error)
}

// NewSendGridSender creates a sender that uses from when a message leaves From empty.
func NewSendGridSender(key string, from mail.Address) *SendGridSender {
	return &SendGridSender{
		key:  key,
		host: sendgridHost,
		from: from,
		api: func(ctx context.Context, req rest.Request) (*rest.Response, error) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return sendgrid.API(req)
		},
	}
}

func (s *SendGridSender) prepare(msg Message) *sgmail.SGMailV3 {
	from := msg.From
	if from.Address == "" {
		from = s.from
	}

	p := sgmail.NewPersonalization()
	p.Subject = msg.Subject
	for _, to := range msg.To {
		p.AddTos(sgmail.NewEmail(to.Name, to.Address))
	}

	m := sgmail.NewV3Mail()
	m.SetFrom(sgmail.NewEmail(from.Name, from.Address))
	m.Subject = msg.Subject
	m.AddPersonalizations(p)

	if msg.Text != "" {
		m.AddContent(sgmail.NewContent("text/plain", msg.Text))
	}
	if msg.HTML != "" {
		m.AddContent(sgmail.NewContent("text/html", msg.HTML))
	}
	return m
}

func (s *SendGridSender) Send(ctx context.Context, msg Message) (string, error) {
	if len(msg.To) == 0 {
		return "", ErrNoRecipients
	}

	req := sendgrid.GetRequest(s.key, sendgridEndpoint, s.host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(s.prepare(msg))

	res, err := s.api(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("sendgrid rejected email: status %d: %s", res.StatusCode, res.Body)
	}

	for k, v := range res.Headers {
		if http.CanonicalHeaderKey(k) == "X-Message-Id" && len(v) > 0 {
			return v[0], nil
		}
	}
	return "", nil
}

var _ Sender = (*SendGridSender)(nil)
