package eligibility

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vncsmyrnk/assembly/internal/core/ports"
)

const (
	statusAble   = "ABLE_TO_VOTE"
	statusUnable = "UNABLE_TO_VOTE"

	DefaultTimeout = 3 * time.Second
)

var (
	ErrUnknownNationalID = errors.New("national id not known to the eligibility service")
	ErrUnexpectedStatus  = errors.New("unexpected eligibility status")
)

type HTTPOracle struct {
	baseURL string
	client  *http.Client
}

type statusResponse struct {
	Status string `json:"status"`
}

// NewHTTPOracle queries GET {baseURL}/users/{nationalID}. A timeout of zero
// uses DefaultTimeout.
func NewHTTPOracle(baseURL string, timeout time.Duration) ports.EligibilityOracle {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPOracle{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (o *HTTPOracle) Check(ctx context.Context, nationalID string) (bool, error) {
	endpoint := o.baseURL + "/users/" + url.PathEscape(nationalID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("failed to build eligibility request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to reach eligibility service: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, ErrUnknownNationalID
	case resp.StatusCode != http.StatusOK:
		return false, fmt.Errorf("eligibility service answered %d", resp.StatusCode)
	}

	var body statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, fmt.Errorf("failed to decode eligibility response: %w", err)
	}

	switch body.Status {
	case statusAble:
		return true, nil
	case statusUnable:
		return false, nil
	}
	return false, fmt.Errorf("%w: %q", ErrUnexpectedStatus, body.Status)
}
