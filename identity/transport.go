// ABOUTME: BackupTransport contract plus the HTTP client speaking to backupvaultd.
// ABOUTME: The blob is opaque to the server; only KDF params and ciphertext travel.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// BackupTransport stores and retrieves the encrypted backup blob. Download
// returns ErrBackupNotFound when no backup exists for the identity.
type BackupTransport interface {
	Upload(ctx context.Context, backup EncryptedBackup) error
	Download(ctx context.Context) (EncryptedBackup, error)
}

// HTTPTransport performs backup RPCs against a backupvaultd server.
type HTTPTransport struct {
	cfg TransportConfig
	hc  *http.Client
}

// NewHTTPTransport builds a transport with optional timeout override.
func NewHTTPTransport(cfg TransportConfig) *HTTPTransport {
	to := cfg.Timeout
	if to == 0 {
		to = 15 * time.Second
	}
	return &HTTPTransport{
		cfg: cfg,
		hc:  &http.Client{Timeout: to},
	}
}

type uploadReq struct {
	UserID        string    `json:"user_id"`
	BackupID      string    `json:"backup_id"`
	Params        KDFParams `json:"params"`
	CiphertextB64 string    `json:"ciphertext"`
}

type downloadResp struct {
	BackupID      string    `json:"backup_id"`
	Params        KDFParams `json:"params"`
	CiphertextB64 string    `json:"ciphertext"`
}

// Upload stores the blob, replacing any previous backup for the identity.
// Transient network and server failures are retried with backoff.
func (t *HTTPTransport) Upload(ctx context.Context, backup EncryptedBackup) error {
	_, err := WithRetry(ctx, t.cfg.GetRetryConfig(), "upload", func() (struct{}, error) {
		return struct{}{}, t.uploadOnce(ctx, backup)
	})
	return err
}

func (t *HTTPTransport) uploadOnce(ctx context.Context, backup EncryptedBackup) error {
	payload := uploadReq{
		UserID:        t.cfg.UserID,
		BackupID:      backup.BackupID,
		Params:        backup.Params,
		CiphertextB64: backup.CiphertextB64,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, t.cfg.BaseURL+"/v1/backup", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+t.cfg.AuthToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetworkFailure, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	return responseError(resp)
}

// Download fetches the blob for the configured identity.
func (t *HTTPTransport) Download(ctx context.Context) (EncryptedBackup, error) {
	return WithRetry(ctx, t.cfg.GetRetryConfig(), "download", func() (EncryptedBackup, error) {
		return t.downloadOnce(ctx)
	})
}

func (t *HTTPTransport) downloadOnce(ctx context.Context) (EncryptedBackup, error) {
	url := fmt.Sprintf("%s/v1/backup?user_id=%s", t.cfg.BaseURL, t.cfg.UserID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return EncryptedBackup{}, err
	}
	req.Header.Set("Authorization", "Bearer "+t.cfg.AuthToken)

	resp, err := t.hc.Do(req)
	if err != nil {
		return EncryptedBackup{}, fmt.Errorf("%w: %v", ErrNetworkFailure, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if err := responseError(resp); err != nil {
		return EncryptedBackup{}, err
	}

	var out downloadResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return EncryptedBackup{}, fmt.Errorf("%w: %v", ErrServerError, err)
	}
	return EncryptedBackup{
		BackupID:      out.BackupID,
		Params:        out.Params,
		CiphertextB64: out.CiphertextB64,
	}, nil
}

// Delete removes the stored backup, e.g. after the user disables server backup.
func (t *HTTPTransport) Delete(ctx context.Context) error {
	_, err := WithRetry(ctx, t.cfg.GetRetryConfig(), "delete", func() (struct{}, error) {
		return struct{}{}, t.deleteOnce(ctx)
	})
	return err
}

func (t *HTTPTransport) deleteOnce(ctx context.Context) error {
	url := fmt.Sprintf("%s/v1/backup?user_id=%s", t.cfg.BaseURL, t.cfg.UserID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+t.cfg.AuthToken)

	resp, err := t.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetworkFailure, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	return responseError(resp)
}

func responseError(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusNoContent:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return ErrBackupNotFound
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests:
		return &RateLimitError{After: retryAfter(resp.Header.Get("Retry-After"))}
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", ErrServerError, resp.StatusCode)
	default:
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
}

// retryAfter parses a Retry-After header in delay-seconds form. Absent or
// unparsable values yield zero, leaving the backoff schedule in charge.
func retryAfter(h string) time.Duration {
	if h == "" {
		return 0
	}
	secs, err := strconv.Atoi(h)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
