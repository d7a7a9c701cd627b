// Package codec converts uploaded images to the base64 form sent to the model
// and recovers binary blobs from data URLs.
package codec

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/ds124wfegd/gradphoto/internal/entity"
	"github.com/gabriel-vasile/mimetype"
)

const dataURLPrefix = "data:"

// Encode produces the base64 payload for src, keeping its MIME type.
func Encode(src entity.SourceImage) (entity.EncodedPayload, error) {
	return EncodeReader(bytes.NewReader(src.Data), src.MIMEType)
}

// EncodeReader reads r to the end and base64-encodes it.
func EncodeReader(r io.Reader, mimeType string) (entity.EncodedPayload, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return entity.EncodedPayload{}, fmt.Errorf("%w: read image: %w", entity.ErrIOFailure, err)
	}
	return entity.EncodedPayload{
		Base64:   base64.StdEncoding.EncodeToString(data),
		MIMEType: mimeType,
	}, nil
}

// Decode returns the raw bytes of an encoded payload.
func Decode(p entity.EncodedPayload) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(p.Base64)
	if err != nil {
		return nil, fmt.Errorf("%w: payload is not base64: %w", entity.ErrMalformedInput, err)
	}
	return data, nil
}

// DataURL formats data as a base64 data URL.
func DataURL(mimeType string, data []byte) string {
	return dataURLPrefix + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURL parses a data:<mime>;base64,<data> URL into a blob named filename.
func DecodeDataURL(dataURL, filename string) (entity.Blob, error) {
	if !strings.HasPrefix(dataURL, dataURLPrefix) {
		return entity.Blob{}, fmt.Errorf("%w: missing %q prefix", entity.ErrMalformedInput, dataURLPrefix)
	}

	header, payload, ok := strings.Cut(strings.TrimPrefix(dataURL, dataURLPrefix), ",")
	if !ok {
		return entity.Blob{}, fmt.Errorf("%w: data URL has no payload", entity.ErrMalformedInput)
	}

	mimeType, ok := strings.CutSuffix(header, ";base64")
	if !ok {
		return entity.Blob{}, fmt.Errorf("%w: data URL is not base64 encoded", entity.ErrMalformedInput)
	}
	if mimeType == "" {
		return entity.Blob{}, fmt.Errorf("%w: data URL has no media type", entity.ErrMalformedInput)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return entity.Blob{}, fmt.Errorf("%w: bad base64 payload: %w", entity.ErrMalformedInput, err)
	}

	return entity.Blob{
		Filename: filename,
		MIMEType: mimeType,
		Data:     data,
	}, nil
}

// DetectMIME sniffs the content type of data and rejects anything that is not an image.
func DetectMIME(data []byte) (string, error) {
	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", fmt.Errorf("%w: content type %s is not an image", entity.ErrMalformedInput, mtype.String())
	}
	return mtype.String(), nil
}
