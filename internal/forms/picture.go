package forms

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Picture upload errors.
var (
	ErrPictureEmpty       = errors.New("forms: picture is empty")
	ErrPictureTooLarge    = errors.New("forms: picture is too large")
	ErrPictureUnsupported = errors.New("forms: picture is not an image")
)

// PictureDataURL encodes an uploaded image as a data URL, the value stored in
// User.ProfilePicture. The content type is sniffed from the bytes; the
// declared one is ignored.
func PictureDataURL(data []byte, maxBytes int64) (string, error) {
	if len(data) == 0 {
		return "", ErrPictureEmpty
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return "", fmt.Errorf("%w: %d bytes exceeds %d", ErrPictureTooLarge, len(data), maxBytes)
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("%w: detected %s", ErrPictureUnsupported, contentType)
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
