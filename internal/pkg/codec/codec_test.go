package codec

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/ds124wfegd/gradphoto/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestEncode(t *testing.T) {
	src := entity.SourceImage{Filename: "aluno.jpg", MIMEType: "image/jpeg", Data: []byte("hello")}

	payload, err := Encode(src)
	require.NoError(t, err)

	assert.Equal(t, "aGVsbG8=", payload.Base64)
	assert.Equal(t, "image/jpeg", payload.MIMEType)

	raw, err := Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, src.Data, raw)
}

func TestEncodeReaderIOFailure(t *testing.T) {
	_, err := EncodeReader(failingReader{}, "image/png")

	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrIOFailure)
	assert.Equal(t, entity.KindIOFailure, entity.KindOf(err))
}

func TestDecodeDataURL(t *testing.T) {
	tests := []struct {
		name     string
		dataURL  string
		wantMIME string
		wantData []byte
		wantErr  bool
	}{
		{
			name:     "png data url",
			dataURL:  "data:image/png;base64,aGVsbG8=",
			wantMIME: "image/png",
			wantData: []byte("hello"),
		},
		{
			name:     "empty payload",
			dataURL:  "data:image/png;base64,",
			wantMIME: "image/png",
			wantData: []byte{},
		},
		{name: "missing prefix", dataURL: "image/png;base64,aGVsbG8=", wantErr: true},
		{name: "no comma", dataURL: "data:image/png;base64", wantErr: true},
		{name: "not base64", dataURL: "data:text/plain,hello", wantErr: true},
		{name: "no media type", dataURL: "data:;base64,aGVsbG8=", wantErr: true},
		{name: "bad base64", dataURL: "data:image/png;base64,###", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blob, err := DecodeDataURL(tt.dataURL, "formatura-aluno.jpg")
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, entity.ErrMalformedInput)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "formatura-aluno.jpg", blob.Filename)
			assert.Equal(t, tt.wantMIME, blob.MIMEType)
			assert.Equal(t, tt.wantData, blob.Data)
		})
	}
}

func TestDataURLRoundTrip(t *testing.T) {
	data := []byte{0x89, 0x50, 0x4e, 0x47, 0x00, 0xff}

	blob, err := DecodeDataURL(DataURL("image/png", data), "x.png")
	require.NoError(t, err)

	assert.Equal(t, "image/png", blob.MIMEType)
	assert.Equal(t, data, blob.Data)
}

func TestDetectMIME(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	mimeType, err := DetectMIME(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "image/png", mimeType)

	_, err = DetectMIME([]byte("just some text"))
	assert.ErrorIs(t, err, entity.ErrMalformedInput)
}
