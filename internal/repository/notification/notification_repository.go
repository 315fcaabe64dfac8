package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"time"

	"github.com/go-faster/errors"
)

type ResendConfig struct {
	ResendBaseURL     string
	ResendApiKey      string
	ResendSenderEmail string
	ResendSenderName  string
}

type ResendRepository struct {
	resendConfig ResendConfig
	client       *http.Client
}

func NewResendRepository(cfg ResendConfig) *ResendRepository {
	return &ResendRepository{
		resendConfig: cfg,
		client:       &http.Client{Timeout: 5 * time.Second},
	}
}

type payloadSendEmail struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Text    string   `json:"text"`
}

func (r *ResendRepository) SendVerification(ctx context.Context, name, email, code string) error {
	subject := "Verify your ToutAunClicLa account"
	text := fmt.Sprintf("Hello %s, your verification code is %s. It expires in 15 minutes.", name, code)
	body := fmt.Sprintf(
		"<p>Hello %s,</p><p>Your verification code is <strong>%s</strong>.</p><p>It expires in 15 minutes.</p>",
		html.EscapeString(name), html.EscapeString(code),
	)

	return r.SendEmail(ctx, email, subject, text, body)
}

func (r *ResendRepository) SendWelcome(ctx context.Context, name, email string) error {
	subject := "Welcome to ToutAunClicLa"
	text := fmt.Sprintf("Hello %s, your account is verified. Happy shopping!", name)
	body := fmt.Sprintf("<p>Hello %s,</p><p>Your account is verified. Happy shopping!</p>", html.EscapeString(name))

	return r.SendEmail(ctx, email, subject, text, body)
}

func (r *ResendRepository) SendEmail(ctx context.Context, toEmail, subject, text, htmlBody string) error {
	url := r.resendConfig.ResendBaseURL + "/emails"

	payload := payloadSendEmail{
		From:    fmt.Sprintf("%s <%s>", r.resendConfig.ResendSenderName, r.resendConfig.ResendSenderEmail),
		To:      []string{toEmail},
		Subject: subject,
		HTML:    htmlBody,
		Text:    text,
	}

	payloadByte, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "failed to marshal json payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payloadByte))
	if err != nil {
		return errors.Wrap(err, "failed to build mailer request")
	}

	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Authorization", "Bearer "+r.resendConfig.ResendApiKey)

	res, err := r.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to call mailer service")
	}
	defer res.Body.Close()

	if res.StatusCode >= 200 && res.StatusCode <= 299 {
		return nil
	}
	bodyBytes, _ := io.ReadAll(io.LimitReader(res.Body, 4096))

	return errors.Errorf("mailer service return negative response %v: %s", res.StatusCode, bodyBytes)
}
