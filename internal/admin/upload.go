package admin

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// imageTypes must agree with the server's whitelist so the signed
// Content-Type matches.
var imageTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// ImageUpload mirrors the server's presigned upload reply.
type ImageUpload struct {
	Key       string    `json:"key"`
	UploadURL string    `json:"uploadUrl"`
	ImageURL  string    `json:"imageUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// UploadImage asks the server for a presigned URL, PUTs the file there and
// returns the URL to reference from a bug or comment.
func (c *Client) UploadImage(ctx context.Context, path string) (*ImageUpload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var up ImageUpload
	name := filepath.Base(path)
	if err := c.do(ctx, http.MethodPost, "/api/uploads/images", map[string]string{"fileName": name}, &up); err != nil {
		return nil, err
	}

	contentType, ok := imageTypes[strings.ToLower(filepath.Ext(name))]
	if !ok {
		contentType = "application/octet-stream"
	}
	if err := c.putPresigned(ctx, up.UploadURL, contentType, data); err != nil {
		return nil, err
	}
	return &up, nil
}

// putPresigned uploads body to a presigned S3 URL. The content type must
// match the one the URL was signed with.
func (c *Client) putPresigned(ctx context.Context, url, contentType string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("upload failed: %s; body: %s", resp.Status, string(b))
	}
	return nil
}
