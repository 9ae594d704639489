package datauri

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateImage(t *testing.T) {
	tests := []struct {
		name  string
		uri   string
		valid bool
	}{
		{name: "png", uri: "data:image/png;base64,iVBORw0KGgo=", valid: true},
		{name: "jpeg", uri: "data:image/jpeg;base64,/9j/4AAQSkZJRg==", valid: true},
		{name: "empty", uri: ""},
		{name: "not an image", uri: "data:text/plain;base64,aGVsbG8="},
		{name: "no media type", uri: "data:image/;base64,aGVsbG8="},
		{name: "not base64 encoded", uri: "data:image/png,rawbytes"},
		{name: "empty payload", uri: "data:image/png;base64,"},
		{name: "broken payload", uri: "data:image/png;base64,!!!"},
		{name: "plain url", uri: "https://example.com/cat.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateImage(tt.uri)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalid)
			}
		})
	}
}
