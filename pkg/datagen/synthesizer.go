package datagen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/synaptica-ai/hospital-charges/pkg/common/httpclient"
	"github.com/synaptica-ai/hospital-charges/pkg/common/logger"
	"github.com/synaptica-ai/hospital-charges/pkg/common/models"
)

var (
	ErrSynthesizerUnavailable = errors.New("synthesizer unavailable")
	ErrInvalidScale           = errors.New("scale must be a positive integer")
)

// UnavailableError is recoverable: the base dataset is still valid output.
type UnavailableError struct {
	Reason string
	Err    error
}

func (e *UnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("synthesizer unavailable: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("synthesizer unavailable: %s", e.Reason)
}

func (e *UnavailableError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrSynthesizerUnavailable, e.Err}
	}
	return []error{ErrSynthesizerUnavailable}
}

// Synthesizer learns the joint distribution of data and samples
// scale*len(data) new rows with the same schema.
type Synthesizer interface {
	Synthesize(ctx context.Context, data []models.PatientRecord, scale int) ([]models.PatientRecord, error)
}

// Unavailable is the fallback used when no synthesizer is configured.
type Unavailable struct {
	Reason string
}

func (u Unavailable) Synthesize(ctx context.Context, data []models.PatientRecord, scale int) ([]models.PatientRecord, error) {
	reason := u.Reason
	if reason == "" {
		reason = "no synthesizer configured"
	}
	return nil, &UnavailableError{Reason: reason}
}

// RemoteSynthesizer calls an external Gaussian-copula service over HTTP.
type RemoteSynthesizer struct {
	endpoint  string
	client    *http.Client
	attempts  int
	baseDelay time.Duration
}

func NewRemoteSynthesizer(endpoint string, client *http.Client, attempts int) *RemoteSynthesizer {
	if client == nil {
		client = httpclient.New(2 * time.Minute)
	}
	if attempts <= 0 {
		attempts = 1
	}
	return &RemoteSynthesizer{
		endpoint:  endpoint,
		client:    client,
		attempts:  attempts,
		baseDelay: 200 * time.Millisecond,
	}
}

type synthesizeRequest struct {
	Model   string                 `json:"model"`
	NumRows int                    `json:"num_rows"`
	Columns []string               `json:"columns"`
	Rows    []models.PatientRecord `json:"rows"`
}

type synthesizeResponse struct {
	Rows []models.PatientRecord `json:"rows"`
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("synthesizer responded %d: %s", e.code, e.body)
}

func (s *RemoteSynthesizer) Synthesize(ctx context.Context, data []models.PatientRecord, scale int) ([]models.PatientRecord, error) {
	if scale <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidScale, scale)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: nothing to learn from", ErrInvalidSampleCount)
	}
	payload, err := json.Marshal(synthesizeRequest{
		Model:   "gaussian_copula",
		NumRows: len(data) * scale,
		Columns: models.Columns,
		Rows:    data,
	})
	if err != nil {
		return nil, err
	}

	var resp synthesizeResponse
	err = httpclient.Retry(ctx, s.attempts, s.baseDelay, retriable, func() error {
		return s.post(ctx, payload, &resp)
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, &UnavailableError{Reason: "request to " + s.endpoint + " failed", Err: err}
	}

	logger.Log.WithFields(map[string]interface{}{
		"requested": len(data) * scale,
		"received":  len(resp.Rows),
	}).Info("Synthesizer returned rows")
	return resp.Rows, nil
}

func (s *RemoteSynthesizer) post(ctx context.Context, payload []byte, out *synthesizeResponse) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &statusError{code: resp.StatusCode, body: string(bytes.TrimSpace(body))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode synthesizer response: %w", err)
	}
	return nil
}

// retriable treats 5xx, 429 and transport failures as transient.
func retriable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= 500 || se.code == http.StatusTooManyRequests
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return false
	}
	return true
}

// FilterValid keeps the rows that satisfy the dataset schema.
func FilterValid(records []models.PatientRecord) ([]models.PatientRecord, int) {
	valid := make([]models.PatientRecord, 0, len(records))
	dropped := 0
	for _, r := range records {
		if err := r.Validate(); err != nil {
			dropped++
			continue
		}
		valid = append(valid, r)
	}
	return valid, dropped
}
