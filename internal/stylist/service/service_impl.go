package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/stylorenlabs/styloren/internal/config"
	"github.com/stylorenlabs/styloren/internal/stylist/domain"
)

// generator is the seam between the service and the Gemini SDK.
type generator interface {
	Generate(ctx context.Context, systemPrompt string, parts ...genai.Part) (string, error)
}

type ServiceParam struct {
	fx.In

	Log       *zap.Logger
	Config    *config.Config
	Generator generator `optional:"true"`
}

type service struct {
	log *zap.Logger
	cfg *config.Config
	gen generator
}

func NewService(p ServiceParam) (domain.Service, error) {
	gen := p.Generator
	if gen == nil {
		g, err := newGeminiGenerator(context.Background(), p.Config)
		if err != nil {
			return nil, err
		}
		gen = g
	}
	return &service{
		log: p.Log.Named("stylist.service"),
		cfg: p.Config,
		gen: gen,
	}, nil
}

func (s *service) AnalyzeOutfit(ctx context.Context, req domain.AnalyzeRequest) (string, error) {
	if err := s.validateImage(req.Image); err != nil {
		return "", err
	}
	userName := sanitizeText(req.UserName, maxUserNameLength)

	parts := []genai.Part{
		genai.Text("Please analyze this outfit photo and provide your expert fashion advice."),
		genai.ImageData(req.Image.MIMEType, req.Image.Data),
	}

	out, err := s.gen.Generate(ctx, analysisPrompt(userName), parts...)
	if err != nil {
		return "", s.mapGenerateError("analyze", err)
	}
	return out, nil
}

func (s *service) Chat(ctx context.Context, req domain.ChatRequest) (string, error) {
	message := sanitizeText(req.Message, maxMessageLength)
	if message == "" {
		return "", domain.ErrInvalidMessage
	}
	if len(req.History) > maxHistoryLength {
		return "", domain.ErrHistoryTooLong
	}
	if req.Image != nil {
		if err := s.validateImage(*req.Image); err != nil {
			return "", err
		}
	}
	userName := sanitizeText(req.UserName, maxUserNameLength)

	// Prior turns are folded into the prompt as a transcript; only the
	// current message carries an image.
	var parts []genai.Part
	if transcript := renderHistory(sanitizeHistory(req.History)); transcript != "" {
		parts = append(parts, genai.Text(transcript))
	}
	parts = append(parts, genai.Text(message))
	if req.Image != nil {
		parts = append(parts, genai.ImageData(req.Image.MIMEType, req.Image.Data))
	}

	out, err := s.gen.Generate(ctx, chatSystemPrompt(userName), parts...)
	if err != nil {
		return "", s.mapGenerateError("chat", err)
	}
	return out, nil
}

func (s *service) CompareOutfits(ctx context.Context, req domain.CompareRequest) (string, error) {
	if len(req.Images) < 2 {
		return "", domain.ErrTooFewImages
	}
	if len(req.Images) > 4 {
		return "", domain.ErrTooManyImages
	}
	for _, img := range req.Images {
		if err := s.validateImage(img); err != nil {
			return "", err
		}
	}
	occasion := sanitizeText(req.Occasion, maxOccasionLength)

	parts := []genai.Part{genai.Text(comparisonPrompt(occasion, len(req.Images)))}
	for _, img := range req.Images {
		parts = append(parts, genai.ImageData(img.MIMEType, img.Data))
	}

	out, err := s.gen.Generate(ctx, "", parts...)
	if err != nil {
		return "", s.mapGenerateError("compare", err)
	}
	return out, nil
}

func (s *service) validateImage(img domain.Image) error {
	if len(img.Data) == 0 {
		return domain.ErrNoImage
	}
	if len(img.Data) > s.cfg.Stylist.MaxImageBytes {
		return domain.ErrImageTooLarge
	}
	switch img.MIMEType {
	case "jpeg", "png", "webp", "heic", "heif":
		return nil
	}
	return domain.ErrInvalidImage
}

// mapGenerateError translates upstream failures into domain sentinels so
// handlers can pick status codes without knowing the SDK.
func (s *service) mapGenerateError(op string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 429:
			s.log.Warn("upstream rate limited", zap.String("op", op))
			return domain.ErrRateLimited
		case 402, 403:
			s.log.Error("upstream quota exhausted", zap.String("op", op))
			return domain.ErrQuotaExhausted
		}
	}
	s.log.Error("generation failed", zap.String("op", op), zap.Error(err))
	return fmt.Errorf("%s: %w", op, err)
}

func renderHistory(history []domain.ChatMessage) string {
	if len(history) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Conversation so far:\n")
	for _, msg := range history {
		label := "User"
		if msg.Role == "assistant" {
			label = "Styloren"
		}
		fmt.Fprintf(&b, "%s: %s\n", label, sanitizeText(msg.Content, maxMessageLength))
	}
	return b.String()
}

// geminiGenerator backs the generator seam with the Gemini SDK.
type geminiGenerator struct {
	client *genai.Client
	model  string
}

func newGeminiGenerator(ctx context.Context, cfg *config.Config) (*geminiGenerator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.Stylist.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &geminiGenerator{client: client, model: cfg.Stylist.Model}, nil
}

func (g *geminiGenerator) Generate(ctx context.Context, systemPrompt string, parts ...genai.Part) (string, error) {
	model := g.client.GenerativeModel(g.model)
	if systemPrompt != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}
	}

	res, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", err
	}

	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return "", domain.ErrEmptyResponse
	}

	var b strings.Builder
	for _, part := range res.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return "", domain.ErrEmptyResponse
	}
	return b.String(), nil
}
