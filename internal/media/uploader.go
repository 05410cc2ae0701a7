// Package media forwards uploaded files to the third-party media host
// and hands back the hosted URL.
package media

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

const defaultMaxBytes = 10 << 20 // 10 MB

// Uploader posts multipart uploads to the configured media endpoint with
// a fixed upload preset, the way the admin panel talks to its image host.
type Uploader struct {
	endpoint string
	preset   string
	maxBytes int64
	client   *http.Client
}

// New creates an uploader. maxBytes <= 0 selects the default cap.
func New(endpoint, preset string, maxBytes int64) *Uploader {
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	return &Uploader{
		endpoint: endpoint,
		preset:   preset,
		maxBytes: maxBytes,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// MaxBytes returns the upload size cap.
func (u *Uploader) MaxBytes() int64 {
	return u.maxBytes
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	URL       string `json:"url"`
	Error     struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload packages the file as multipart form data (fields "file" and
// "upload_preset") and posts it to the media endpoint. On success the
// hosted URL from the JSON response is returned; on failure the caller
// keeps whatever URL it had before.
func (u *Uploader) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)

	go func() {
		part, err := form.CreateFormFile("file", filename)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, io.LimitReader(r, u.maxBytes)); err != nil {
			pw.CloseWithError(err)
			return
		}
		if err := form.WriteField("upload_preset", u.preset); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(form.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, pr)
	if err != nil {
		return "", fmt.Errorf("media: build upload request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := u.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("media: upload failed: %w", err)
	}
	defer resp.Body.Close()

	var decoded uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("media: decode upload response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if decoded.Error.Message != "" {
			return "", fmt.Errorf("media: host rejected upload: %s", decoded.Error.Message)
		}
		return "", fmt.Errorf("media: host returned %d", resp.StatusCode)
	}

	hosted := decoded.SecureURL
	if hosted == "" {
		hosted = decoded.URL
	}
	if hosted == "" {
		return "", fmt.Errorf("media: response carried no hosted URL")
	}
	return hosted, nil
}
