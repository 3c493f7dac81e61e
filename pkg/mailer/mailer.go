package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/snapfield/sf-order/pkg/errors"
	"github.com/snapfield/sf-order/pkg/status"
)

// Mailer sends transactional email through the Brevo HTTP API.
type Mailer interface {
	Send(ctx context.Context, email Email) error
}

type Recipient struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type Email struct {
	To          []Recipient `json:"to"`
	Subject     string      `json:"subject"`
	HTMLContent string      `json:"htmlContent"`
}

type sendRequest struct {
	Sender      Recipient   `json:"sender"`
	To          []Recipient `json:"to"`
	Subject     string      `json:"subject"`
	HTMLContent string      `json:"htmlContent"`
}

type brevoMailer struct {
	baseURL   string
	apiKey    string
	fromName  string
	fromEmail string
	logger    *logrus.Logger
	hc        *http.Client
}

func NewBrevoMailer(baseURL, apiKey, fromName, fromEmail string, logger *logrus.Logger, hc *http.Client) Mailer {
	return &brevoMailer{
		baseURL:   baseURL,
		apiKey:    apiKey,
		fromName:  fromName,
		fromEmail: fromEmail,
		logger:    logger,
		hc:        hc,
	}
}

// Send implements Mailer.
func (m *brevoMailer) Send(ctx context.Context, email Email) error {
	req := sendRequest{
		Sender:      Recipient{Name: m.fromName, Email: m.fromEmail},
		To:          email.To,
		Subject:     email.Subject,
		HTMLContent: email.HTMLContent,
	}

	reqBuff, _ := json.Marshal(req)
	body := bytes.NewBuffer(reqBuff)
	url := fmt.Sprintf("%s/v3/smtp/email", m.baseURL)

	hr, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		m.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusBadGateway, status.BAD_GATEWAY, "an error occurred while sending email through brevo")
	}

	hr.Header.Add("Content-Type", "application/json")
	hr.Header.Add("Accept", "application/json")
	hr.Header.Add("api-key", m.apiKey)

	hresp, err := m.hc.Do(hr)
	if err != nil {
		m.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusBadGateway, status.BAD_GATEWAY, "an error occurred while sending email through brevo")
	}

	defer hresp.Body.Close()

	if hresp.StatusCode < 200 || hresp.StatusCode > 299 {
		respBody, _ := io.ReadAll(hresp.Body)
		err := fmt.Errorf("brevo responded with status %d: %s", hresp.StatusCode, string(respBody))
		m.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusBadGateway, status.BAD_GATEWAY, "an error occurred while sending email through brevo")
	}

	return nil
}
