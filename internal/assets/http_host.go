package assets

import (
	"bytes"          // Request body buffer
	"context"        // Request scoped uploads
	"encoding/json"  // Response decoding
	"fmt"            // Error messages
	"io"             // Bounded response reads
	"mime/multipart" // Form encoding
	"net/http"       // HTTP client
	"net/textproto"  // Part headers
	"path"           // Folder and public id
	"time"           // Client timeout

	"expense_tracker/internal/domain" // Error kinds

	"github.com/sirupsen/logrus" // Logging library
)

const opUpload = "assets.upload"

// HTTPHost uploads images to a Cloudinary-style unsigned upload endpoint:
// a multipart POST with file, upload_preset, folder and public_id fields,
// answered with JSON carrying secure_url.
type HTTPHost struct {
	endpoint string
	preset   string
	client   *http.Client
	logger   logrus.FieldLogger
}

// NewHTTPHost returns a host posting to endpoint.
func NewHTTPHost(endpoint string, preset string, timeout time.Duration) *HTTPHost {
	return &HTTPHost{
		endpoint: endpoint,
		preset:   preset,
		client:   &http.Client{Timeout: timeout},
		logger:   logrus.StandardLogger(),
	}
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload sends the file and returns its secure URL.
func (h *HTTPHost) Upload(ctx context.Context, upload Upload) (string, error) {
	body, contentType, err := h.encode(upload) // Build the multipart form
	if err != nil {
		return "", domain.NewError(domain.ErrUpload, opUpload, "could not encode image", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, body)
	if err != nil {
		return "", domain.NewError(domain.ErrUpload, opUpload, "invalid upload endpoint", err)
	}
	req.Header.Set("Content-Type", contentType) // Multipart boundary

	resp, err := h.client.Do(req) // Send the upload
	if err != nil {
		return "", domain.Network(opUpload, err) // Host unreachable
	}
	defer resp.Body.Close()

	var decoded uploadResponse // Body carries secure_url or error.message
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&decoded); err != nil && resp.StatusCode < 300 {
		return "", domain.NewError(domain.ErrUpload, opUpload, "unreadable upload response", err)
	}
	if resp.StatusCode >= 300 {
		msg := fmt.Sprintf("image host rejected upload (status %d)", resp.StatusCode)
		if decoded.Error != nil && decoded.Error.Message != "" {
			msg = decoded.Error.Message
		}
		h.logger.WithFields(logrus.Fields{
			"path":   upload.Path,
			"status": resp.StatusCode,
		}).Warn("Image upload rejected")
		return "", domain.NewError(domain.ErrUpload, opUpload, msg, nil)
	}
	if decoded.SecureURL == "" {
		return "", domain.NewError(domain.ErrUpload, opUpload, "image host returned no url", nil)
	}
	h.logger.WithFields(logrus.Fields{
		"path":  upload.Path,
		"bytes": len(upload.Data),
	}).Info("Image uploaded")
	return decoded.SecureURL, nil
}

func (h *HTTPHost) encode(upload Upload) (io.Reader, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	name := upload.Name
	if name == "" {
		name = "image"
	}
	contentType := upload.ContentType
	if contentType == "" {
		contentType = "image/jpeg"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(upload.Data); err != nil {
		return nil, "", err
	}

	fields := map[string]string{
		"upload_preset": h.preset,
		"folder":        path.Dir(upload.Path),
		"public_id":     path.Base(upload.Path),
	}
	for key, value := range fields {
		if value == "" || value == "." {
			continue
		}
		if err := writer.WriteField(key, value); err != nil {
			return nil, "", err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return &buf, writer.FormDataContentType(), nil
}
