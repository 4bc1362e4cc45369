package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/fxjournal/journal-api/pkg/media"
)

// UploadOptions controls the screenshot upload. Zero MaxWidth/Quality select
// the defaults (1280 wide, quality 65). A set PublicID with Overwrite
// replaces the hosted asset in place.
type UploadOptions struct {
	Folder     string
	PublicID   string
	Overwrite  bool
	Invalidate bool
	MaxWidth   uint
	Quality    int
}

// UploadResult is the media host's response to a direct upload.
type UploadResult struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Format    string `json:"format"`
	Bytes     int    `json:"bytes"`
}

// SetMediaUploadURL overrides the media host upload endpoint. Used by tests;
// the default is derived from the ticket's cloud name.
func (c *Client) SetMediaUploadURL(url string) {
	c.mediaUploadURL = url
}

// UploadScreenshot downscales and re-encodes the image, obtains a signed
// ticket from the backend, and posts the file with every ticket field
// directly to the media host. The three steps run strictly in sequence, one
// attempt each; ctx cancels whichever step is in flight.
func (c *Client) UploadScreenshot(ctx context.Context, r io.Reader, filename string, opts UploadOptions) (*UploadResult, error) {
	if opts.Folder == "" {
		opts.Folder = "trades"
	}

	encoded, err := media.Downscale(r, opts.MaxWidth, opts.Quality)
	if err != nil {
		return nil, fmt.Errorf("prepare screenshot: %w", err)
	}

	sig, err := c.GetUploadSignature(ctx, SignatureParams{
		Folder:     opts.Folder,
		PublicID:   opts.PublicID,
		Overwrite:  opts.Overwrite,
		Invalidate: opts.Invalidate,
	})
	if err != nil {
		return nil, err
	}

	uploadURL := c.mediaUploadURL
	if uploadURL == "" {
		uploadURL = fmt.Sprintf("https://api.cloudinary.com/v1_1/%s/image/upload", sig.CloudName)
	}

	fields := map[string]string{
		"api_key":   sig.APIKey,
		"timestamp": strconv.FormatInt(sig.Timestamp, 10),
		"folder":    sig.Folder,
		"signature": sig.Signature,
	}
	if sig.PublicID != "" {
		fields["public_id"] = sig.PublicID
		fields["overwrite"] = strconv.FormatBool(sig.Overwrite)
		fields["invalidate"] = strconv.FormatBool(sig.Invalidate)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetFileReader("file", media.EncodedName(filename), bytes.NewReader(encoded)).
		SetFormData(fields).
		Post(uploadURL)
	if err != nil {
		return nil, fmt.Errorf("media upload: %w", err)
	}
	if resp.IsError() {
		return nil, mediaHostError(resp.Body(), resp.StatusCode())
	}

	var result UploadResult
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("decode media host response: %w", err)
	}

	c.logger.Info().
		Str("public_id", result.PublicID).
		Int("bytes", result.Bytes).
		Msg("Screenshot uploaded")
	return &result, nil
}

// mediaHostError extracts the host's reported error message when present.
func mediaHostError(body []byte, status int) error {
	var hostErr struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &hostErr); err == nil && hostErr.Error.Message != "" {
		return fmt.Errorf("media upload failed: %s", hostErr.Error.Message)
	}
	return fmt.Errorf("media upload failed with status %d", status)
}
