package utils

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
)

// MaxImageSize limits decoded recipe images.
const MaxImageSize = 10 * 1024 * 1024

var (
	ErrImageEncoding = errors.New("image must be a base64 data URI")
	ErrImageEmpty    = errors.New("image is empty")
	ErrImageTooLarge = errors.New("image exceeds maximum allowed size")
	ErrImageType     = errors.New("image type is not allowed")
)

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Image is a decoded upload.
type Image struct {
	Data        []byte
	ContentType string
	Ext         string
}

// DecodeImage parses "data:image/<type>;base64,<payload>". A bare base64
// payload without the data prefix is also accepted. The content type is
// sniffed from the bytes; the declared one is not trusted.
func DecodeImage(s string) (*Image, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrImageEmpty
	}
	payload := s
	if strings.HasPrefix(s, "data:") {
		comma := strings.IndexByte(s, ',')
		if comma < 0 || !strings.HasSuffix(s[:comma], ";base64") {
			return nil, ErrImageEncoding
		}
		payload = s[comma+1:]
	}

	if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageSize+3 {
		return nil, ErrImageTooLarge
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, ErrImageEncoding
	}
	if len(data) == 0 {
		return nil, ErrImageEmpty
	}
	if len(data) > MaxImageSize {
		return nil, ErrImageTooLarge
	}

	contentType := strings.Split(http.DetectContentType(data), ";")[0]
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return nil, ErrImageType
	}
	return &Image{Data: data, ContentType: contentType, Ext: ext}, nil
}
