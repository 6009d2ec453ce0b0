package ticket

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/sadhugit/rancher-release-bot/pkg/domain/types"
)

const requestTimeout = 30 * time.Second

// postJSON issues an authenticated JSON create request and decodes the
// response body into out when the system answers 201 Created. Any other
// status is a delivery failure carrying the response body for diagnosis.
func postJSON(ctx context.Context, httpClient *http.Client, url, user, secret string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal ticket payload", goerr.T(types.ErrTagDelivery))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return goerr.Wrap(err, "failed to create ticket request", goerr.V("url", url), goerr.T(types.ErrTagDelivery))
	}
	req.SetBasicAuth(user, secret)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return goerr.Wrap(err, "ticket request failed", goerr.V("url", url), goerr.T(types.ErrTagDelivery))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return goerr.Wrap(err, "failed to read ticket response", goerr.V("url", url), goerr.T(types.ErrTagDelivery))
	}

	if resp.StatusCode != http.StatusCreated {
		return goerr.New("unexpected ticket response status",
			goerr.V("url", url),
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(respBody)),
			goerr.T(types.ErrTagDelivery))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return goerr.Wrap(err, "failed to decode ticket response", goerr.V("url", url), goerr.T(types.ErrTagDelivery))
	}

	return nil
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: requestTimeout}
}
