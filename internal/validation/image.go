package validation

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ImageMimeTypes is the whitelist of decoded image types accepted for
// classification. Detection uses the content, never the declared type.
var ImageMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// Image is a decoded upload.
type Image struct {
	Data     []byte
	MimeType string
	// Base64 is Data in padded standard encoding, without any data URI prefix.
	Base64 string
}

// DecodeImage accepts raw base64 or a data:<mime>;base64, URI and returns
// the decoded bytes with their detected type.
func DecodeImage(encoded string) (*Image, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, errors.New("image is required")
	}

	if rest, ok := strings.CutPrefix(encoded, "data:"); ok {
		_, payload, found := strings.Cut(rest, ";base64,")
		if !found {
			return nil, errors.New("image data URI must be base64 encoded")
		}
		encoded = payload
	}

	// Clients sometimes wrap long base64 lines
	encoded = strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', ' ', '\t':
			return -1
		}
		return r
	}, encoded)

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, errors.New("image is not valid base64")
		}
		encoded = base64.StdEncoding.EncodeToString(data)
	}
	if len(data) == 0 {
		return nil, errors.New("image is empty")
	}

	// http.DetectContentType looks at most at the first 512 bytes
	detected := http.DetectContentType(data)
	if !ImageMimeTypes[detected] {
		return nil, fmt.Errorf("unsupported image type (detected: %s)", detected)
	}

	return &Image{Data: data, MimeType: detected, Base64: encoded}, nil
}
