package domain

import (
	"encoding/base64"
	"strings"
)

// ParseDataURL decodes a base64 data URL ("data:image/jpeg;base64,...")
// into an Image. Bare base64 payloads are treated as jpeg.
func ParseDataURL(raw string) (Image, error) {
	if raw == "" {
		return Image{}, ErrNoImage
	}

	if !strings.HasPrefix(raw, "data:") {
		data, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return Image{}, ErrInvalidImage
		}
		return Image{MIMEType: "jpeg", Data: data}, nil
	}

	rest, ok := strings.CutPrefix(raw, "data:image/")
	if !ok {
		return Image{}, ErrInvalidImage
	}
	mime, payload, ok := strings.Cut(rest, ";base64,")
	if !ok || mime == "" {
		return Image{}, ErrInvalidImage
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Image{}, ErrInvalidImage
	}
	return Image{MIMEType: mime, Data: data}, nil
}
