// Package generation wraps the single request/response exchange with the
// Gemini image model.
package generation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ds124wfegd/gradphoto/internal/entity"
	"github.com/ds124wfegd/gradphoto/internal/pkg/codec"
	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

const (
	DefaultModel   = "gemini-2.5-flash-image"
	defaultTimeout = 2 * time.Minute
	defaultMIME    = "image/png"
)

type Generator interface {
	Generate(ctx context.Context, payload entity.EncodedPayload, caption string) (entity.GeneratedImage, error)
}

// contentModel is the part of genai.Models the client relies on.
type contentModel interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type geminiGenerator struct {
	models  contentModel
	model   string
	timeout time.Duration
}

func NewGeminiGenerator(ctx context.Context, apiKey, model string, timeout time.Duration) (Generator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("gemini api key is not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return newGenerator(client.Models, model, timeout), nil
}

func newGenerator(models contentModel, model string, timeout time.Duration) *geminiGenerator {
	model = strings.TrimPrefix(strings.TrimSpace(model), "models/")
	if model == "" {
		model = DefaultModel
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &geminiGenerator{models: models, model: model, timeout: timeout}
}

func (g *geminiGenerator) Generate(ctx context.Context, payload entity.EncodedPayload, caption string) (entity.GeneratedImage, error) {
	data, err := codec.Decode(payload)
	if err != nil {
		return entity.GeneratedImage{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	parts := []*genai.Part{
		genai.NewPartFromBytes(data, payload.MIMEType),
		genai.NewPartFromText(BuildPrompt(caption)),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{string(genai.ModalityImage)},
	}

	start := time.Now()
	resp, err := g.models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"model":    g.model,
			"duration": time.Since(start),
		}).Errorf("Gemini request failed: %v", err)
		return entity.GeneratedImage{}, fmt.Errorf("%w: %w", entity.ErrGenerationFailed, err)
	}

	img, ok := FirstInlineImage(resp)
	if !ok {
		logrus.WithField("model", g.model).Warn("Gemini response contained no image part")
		return entity.GeneratedImage{}, fmt.Errorf("%w: model %s", entity.ErrNoImageReturned, g.model)
	}

	logrus.WithFields(logrus.Fields{
		"model":    g.model,
		"duration": time.Since(start),
		"bytes":    len(img.Data),
	}).Info("Gemini returned image")
	return img, nil
}

// FirstInlineImage extracts the first inline image of the first candidate.
// Further candidates are ignored.
func FirstInlineImage(resp *genai.GenerateContentResponse) (entity.GeneratedImage, bool) {
	if resp == nil || len(resp.Candidates) == 0 {
		return entity.GeneratedImage{}, false
	}
	first := resp.Candidates[0]
	if first == nil || first.Content == nil {
		return entity.GeneratedImage{}, false
	}

	for _, part := range first.Content.Parts {
		if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
			continue
		}
		mimeType := part.InlineData.MIMEType
		if mimeType == "" {
			mimeType = defaultMIME
		}
		return entity.GeneratedImage{MIMEType: mimeType, Data: part.InlineData.Data}, true
	}
	return entity.GeneratedImage{}, false
}
