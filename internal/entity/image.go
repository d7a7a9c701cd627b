package entity

// SourceImage is the photo selected by the user.
type SourceImage struct {
	Filename string
	MIMEType string
	Data     []byte
}

// EncodedPayload is the transport form of a SourceImage.
type EncodedPayload struct {
	Base64   string
	MIMEType string
}

// GeneratedImage is what the model returned, before any caption is drawn.
type GeneratedImage struct {
	MIMEType string
	Data     []byte
}

// Blob is binary content recovered from a data URL.
type Blob struct {
	Filename string
	MIMEType string
	Data     []byte
}
