package entity

import "errors"

var (
	// Pipeline error kinds
	ErrIOFailure        = errors.New("io failure")
	ErrMalformedInput   = errors.New("malformed input")
	ErrDecodeFailure    = errors.New("decode failure")
	ErrNoImageReturned  = errors.New("no image returned")
	ErrGenerationFailed = errors.New("generation failed")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrNoResult        = errors.New("no final image available")
	ErrNoSource        = errors.New("no source image selected")
	ErrInvalidState    = errors.New("operation not allowed in current state")
)

type ErrorKind string

const (
	KindIOFailure        ErrorKind = "IOFailure"
	KindMalformedInput   ErrorKind = "MalformedInput"
	KindDecodeFailure    ErrorKind = "DecodeFailure"
	KindNoImageReturned  ErrorKind = "NoImageReturned"
	KindGenerationFailed ErrorKind = "GenerationFailed"
	KindUnknown          ErrorKind = "Unknown"
)

var kinds = []struct {
	err  error
	kind ErrorKind
}{
	{ErrIOFailure, KindIOFailure},
	{ErrMalformedInput, KindMalformedInput},
	{ErrDecodeFailure, KindDecodeFailure},
	{ErrNoImageReturned, KindNoImageReturned},
	{ErrGenerationFailed, KindGenerationFailed},
}

// KindOf classifies err by the first kind sentinel it wraps.
func KindOf(err error) ErrorKind {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindUnknown
}

var userMessages = map[ErrorKind]string{
	KindIOFailure:        "Não foi possível ler a foto enviada.",
	KindMalformedInput:   "O arquivo enviado não é uma imagem válida.",
	KindDecodeFailure:    "Falha ao carregar a imagem gerada.",
	KindNoImageReturned:  "A API não retornou uma imagem válida.",
	KindGenerationFailed: "Não foi possível gerar a imagem. Tente novamente.",
	KindUnknown:          "Ocorreu um erro desconhecido. Tente novamente.",
}

// UserMessage is the message shown for a failure of the given kind.
func UserMessage(kind ErrorKind) string {
	if msg, ok := userMessages[kind]; ok {
		return msg
	}
	return userMessages[KindUnknown]
}

// ErrorInfo describes the failure of the last generation attempt.
type ErrorInfo struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func NewErrorInfo(err error) *ErrorInfo {
	kind := KindOf(err)
	return &ErrorInfo{Kind: kind, Message: UserMessage(kind)}
}
