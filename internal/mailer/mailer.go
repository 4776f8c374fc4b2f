// Package mailer delivers rendered newsletters through the SendGrid v3 REST
// API, one request per recipient so a bounced address never blocks the batch.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.sendgrid.com/v3"

// Failure records one recipient that could not be delivered to.
type Failure struct {
	Recipient string `json:"recipient"`
	Reason    string `json:"reason"`
}

// Report summarizes a batch delivery.
type Report struct {
	Status string    `json:"status"`
	Sent   int       `json:"successfulCount"`
	Failed []Failure `json:"failed,omitempty"`
}

type Mailer struct {
	BaseURL string
	Sender  string

	apiKey string
	client *http.Client
}

func New(apiKey, sender string) *Mailer {
	return &Mailer{
		BaseURL: defaultBaseURL,
		Sender:  sender,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// Send delivers htmlBody to every recipient, accumulating per-recipient
// failures. The returned error is non-nil only when no delivery was possible
// at all (for example a missing API key).
func (m *Mailer) Send(ctx context.Context, recipients []string, subject, htmlBody string) (Report, error) {
	if m.apiKey == "" {
		return Report{Status: "error"}, fmt.Errorf("mailer: no api key configured")
	}

	report := Report{Status: "success"}
	for _, recipient := range recipients {
		if err := m.sendOne(ctx, recipient, subject, htmlBody); err != nil {
			report.Failed = append(report.Failed, Failure{
				Recipient: recipient,
				Reason:    err.Error(),
			})
			continue
		}
		report.Sent++
	}

	if report.Sent == 0 && len(report.Failed) > 0 {
		report.Status = "error"
	} else if len(report.Failed) > 0 {
		report.Status = "partial"
	}
	return report, nil
}

func (m *Mailer) sendOne(ctx context.Context, recipient, subject, htmlBody string) error {
	payload, err := json.Marshal(map[string]any{
		"personalizations": []map[string]any{
			{"to": []map[string]string{{"email": recipient}}},
		},
		"from":    map[string]string{"email": m.Sender},
		"subject": subject,
		"content": []map[string]string{
			{"type": "text/html", "value": htmlBody},
		},
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.BaseURL+"/mail/send", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	return nil
}
