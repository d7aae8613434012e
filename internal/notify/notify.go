// Package notify delivers the parsed coverage report to an optional HTTP
// endpoint.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/checkmate-ci/covcheck/internal/report"
)

// Notifier POSTs report summaries as JSON. A zero URL disables it.
type Notifier struct {
	URL    string
	Client *http.Client
}

// Send posts the summary. Callers treat delivery errors as warnings, the
// gate result never depends on the webhook.
func (n *Notifier) Send(ctx context.Context, sum report.Summary) error {
	if n.URL == "" {
		return nil
	}

	body, err := json.Marshal(sum)
	if err != nil {
		return errors.Wrap(err, "cannot marshal report summary")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.URL, bytes.NewReader(body))
	if err != nil {
		return errors.Wrapf(err, "cannot build request to %s", n.URL)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client().Do(req)
	if err != nil {
		return errors.Wrapf(err, "cannot send report to %s", n.URL)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return errors.Errorf("report endpoint %s answered HTTP %d", n.URL, resp.StatusCode)
	}
	return nil
}

func (n *Notifier) client() *http.Client {
	if n.Client != nil {
		return n.Client
	}
	return &http.Client{Timeout: 30 * time.Second}
}
