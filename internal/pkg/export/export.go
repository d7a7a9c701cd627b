// Package export builds the download, share and e-mail artefacts for a
// finished graduation photo.
package export

import (
	"fmt"

	"github.com/ds124wfegd/gradphoto/internal/entity"
	"github.com/ds124wfegd/gradphoto/internal/pkg/codec"
)

const (
	ShareTitle   = "Minha Foto de Formatura"
	mailtoLink   = "mailto:?subject=Minha%20Foto%20de%20Formatura&body=Veja%20minha%20foto%20de%20formatura!"
	filePrefix   = "formatura-"
	fallbackName = "imagem"
)

// DownloadFilename names the saved PNG after the uploaded file. The suffix is
// always .png, even when an uncaptioned result keeps the model's own type.
func DownloadFilename(src *entity.SourceImage) string {
	name := fallbackName
	if src != nil && src.Filename != "" {
		name = src.Filename
	}
	return filePrefix + name + ".png"
}

// ShareFilename names the file attached to a share sheet.
func ShareFilename(src *entity.SourceImage) string {
	if src == nil || src.Filename == "" {
		return filePrefix + fallbackName
	}
	return filePrefix + src.Filename
}

// Share decodes the final image data URL into the file handed to a share sheet.
func Share(finalDataURL string, src *entity.SourceImage, caption string) (entity.ShareResponse, error) {
	blob, err := codec.DecodeDataURL(finalDataURL, ShareFilename(src))
	if err != nil {
		return entity.ShareResponse{}, fmt.Errorf("failed to prepare shared image: %w", err)
	}

	return entity.ShareResponse{
		Title: ShareTitle,
		Text:  caption,
		Files: []entity.ShareFile{{
			Name:     blob.Filename,
			MIMEType: blob.MIMEType,
			Data:     blob.Data,
		}},
	}, nil
}

// MailtoLink carries only a static subject and body; mailto cannot attach files.
func MailtoLink() string {
	return mailtoLink
}
