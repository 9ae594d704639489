// Package datauri checks base64 image data URIs as submitted by the web client.
package datauri

import (
	"encoding/base64"
	"errors"
	"strings"
)

var ErrInvalid = errors.New("must be a base64 encoded image data URI")

// ValidateImage accepts data:image/<type>;base64,<payload> with a decodable payload.
func ValidateImage(uri string) error {
	rest, ok := strings.CutPrefix(uri, "data:image/")
	if !ok {
		return ErrInvalid
	}
	mediaType, payload, ok := strings.Cut(rest, ";base64,")
	if !ok || mediaType == "" || payload == "" {
		return ErrInvalid
	}
	if _, err := base64.StdEncoding.DecodeString(payload); err != nil {
		return ErrInvalid
	}
	return nil
}
