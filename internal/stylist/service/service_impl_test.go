package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"

	"github.com/stylorenlabs/styloren/internal/config"
	"github.com/stylorenlabs/styloren/internal/stylist/domain"
)

type fakeGenerator struct {
	lastSystem string
	lastParts  []genai.Part
	out        string
	err        error
}

func (g *fakeGenerator) Generate(ctx context.Context, systemPrompt string, parts ...genai.Part) (string, error) {
	g.lastSystem = systemPrompt
	g.lastParts = parts
	if g.err != nil {
		return "", g.err
	}
	return g.out, nil
}

func newTestService(t *testing.T, gen *fakeGenerator) domain.Service {
	t.Helper()
	svc, err := NewService(ServiceParam{
		Log:       zap.NewNop(),
		Config:    &config.Config{Stylist: config.StylistConfig{Model: "gemini-2.5-flash", MaxImageBytes: 1024}},
		Generator: gen,
	})
	require.NoError(t, err)
	return svc
}

func jpeg(n int) domain.Image {
	return domain.Image{MIMEType: "jpeg", Data: make([]byte, n)}
}

func TestAnalyzeOutfit(t *testing.T) {
	gen := &fakeGenerator{out: "**Final Verdict** great look"}
	svc := newTestService(t, gen)

	out, err := svc.AnalyzeOutfit(context.Background(), domain.AnalyzeRequest{
		Image:    jpeg(512),
		UserName: "Priya",
	})
	require.NoError(t, err)
	assert.Equal(t, "**Final Verdict** great look", out)
	assert.Contains(t, gen.lastSystem, "The user's name is Priya")
	assert.Len(t, gen.lastParts, 2)
}

func TestAnalyzeOutfitValidation(t *testing.T) {
	svc := newTestService(t, &fakeGenerator{})
	ctx := context.Background()

	_, err := svc.AnalyzeOutfit(ctx, domain.AnalyzeRequest{})
	assert.ErrorIs(t, err, domain.ErrNoImage)

	_, err = svc.AnalyzeOutfit(ctx, domain.AnalyzeRequest{Image: jpeg(2048)})
	assert.ErrorIs(t, err, domain.ErrImageTooLarge)

	_, err = svc.AnalyzeOutfit(ctx, domain.AnalyzeRequest{
		Image: domain.Image{MIMEType: "gif", Data: make([]byte, 10)},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidImage)
}

func TestAnalyzeOutfitSanitizesUserName(t *testing.T) {
	gen := &fakeGenerator{out: "ok"}
	svc := newTestService(t, gen)

	_, err := svc.AnalyzeOutfit(context.Background(), domain.AnalyzeRequest{
		Image:    jpeg(10),
		UserName: `Priya<script>${evil}`,
	})
	require.NoError(t, err)
	assert.Contains(t, gen.lastSystem, "Priyascriptevil")
	assert.NotContains(t, gen.lastSystem, "<")
	assert.NotContains(t, gen.lastSystem, "$")
}

func TestChat(t *testing.T) {
	gen := &fakeGenerator{out: "Try a belt!"}
	svc := newTestService(t, gen)

	out, err := svc.Chat(context.Background(), domain.ChatRequest{
		Message: "What goes with a navy kurta?",
		History: []domain.ChatMessage{
			{Role: "user", Content: "hi"},
			{Role: "assistant", Content: "hello!"},
			{Role: "system", Content: "ignored"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Try a belt!", out)
	assert.Contains(t, gen.lastSystem, "You are Styloren")

	transcript, ok := gen.lastParts[0].(genai.Text)
	require.True(t, ok)
	assert.Contains(t, string(transcript), "User: hi")
	assert.Contains(t, string(transcript), "Styloren: hello!")
	assert.NotContains(t, string(transcript), "ignored")
}

func TestChatValidation(t *testing.T) {
	svc := newTestService(t, &fakeGenerator{})
	ctx := context.Background()

	_, err := svc.Chat(ctx, domain.ChatRequest{Message: ""})
	assert.ErrorIs(t, err, domain.ErrInvalidMessage)

	// A message of only stripped characters is empty after sanitizing.
	_, err = svc.Chat(ctx, domain.ChatRequest{Message: `<>"'` + "`"})
	assert.ErrorIs(t, err, domain.ErrInvalidMessage)

	long := make([]domain.ChatMessage, maxHistoryLength+1)
	for i := range long {
		long[i] = domain.ChatMessage{Role: "user", Content: "x"}
	}
	_, err = svc.Chat(ctx, domain.ChatRequest{Message: "hi", History: long})
	assert.ErrorIs(t, err, domain.ErrHistoryTooLong)

	big := jpeg(2048)
	_, err = svc.Chat(ctx, domain.ChatRequest{Message: "hi", Image: &big})
	assert.ErrorIs(t, err, domain.ErrImageTooLarge)
}

func TestChatTruncatesLongMessage(t *testing.T) {
	gen := &fakeGenerator{out: "ok"}
	svc := newTestService(t, gen)

	_, err := svc.Chat(context.Background(), domain.ChatRequest{
		Message: strings.Repeat("a", maxMessageLength+500),
	})
	require.NoError(t, err)

	msg, ok := gen.lastParts[len(gen.lastParts)-1].(genai.Text)
	require.True(t, ok)
	assert.Len(t, string(msg), maxMessageLength)
}

func TestCompareOutfits(t *testing.T) {
	gen := &fakeGenerator{out: "**Winner: Outfit 2**"}
	svc := newTestService(t, gen)

	out, err := svc.CompareOutfits(context.Background(), domain.CompareRequest{
		Images:   []domain.Image{jpeg(10), jpeg(10), jpeg(10)},
		Occasion: "a beach wedding",
	})
	require.NoError(t, err)
	assert.Equal(t, "**Winner: Outfit 2**", out)

	prompt, ok := gen.lastParts[0].(genai.Text)
	require.True(t, ok)
	assert.Contains(t, string(prompt), "a beach wedding")
	assert.Contains(t, string(prompt), "I have 3 outfit photos to compare.")
	assert.Len(t, gen.lastParts, 4)
}

func TestCompareOutfitsImageCount(t *testing.T) {
	svc := newTestService(t, &fakeGenerator{})
	ctx := context.Background()

	_, err := svc.CompareOutfits(ctx, domain.CompareRequest{Images: []domain.Image{jpeg(10)}})
	assert.ErrorIs(t, err, domain.ErrTooFewImages)

	_, err = svc.CompareOutfits(ctx, domain.CompareRequest{
		Images: []domain.Image{jpeg(10), jpeg(10), jpeg(10), jpeg(10), jpeg(10)},
	})
	assert.ErrorIs(t, err, domain.ErrTooManyImages)
}

func TestGenerateErrorMapping(t *testing.T) {
	ctx := context.Background()

	svc := newTestService(t, &fakeGenerator{err: &googleapi.Error{Code: 429}})
	_, err := svc.AnalyzeOutfit(ctx, domain.AnalyzeRequest{Image: jpeg(10)})
	assert.ErrorIs(t, err, domain.ErrRateLimited)

	svc = newTestService(t, &fakeGenerator{err: &googleapi.Error{Code: 429}})
	_, err = svc.Chat(ctx, domain.ChatRequest{Message: "hi"})
	assert.ErrorIs(t, err, domain.ErrRateLimited)

	svc = newTestService(t, &fakeGenerator{err: &googleapi.Error{Code: 402}})
	_, err = svc.Chat(ctx, domain.ChatRequest{Message: "hi"})
	assert.ErrorIs(t, err, domain.ErrQuotaExhausted)

	svc = newTestService(t, &fakeGenerator{err: &googleapi.Error{Code: 500}})
	_, err = svc.Chat(ctx, domain.ChatRequest{Message: "hi"})
	assert.NotErrorIs(t, err, domain.ErrRateLimited)
	assert.NotErrorIs(t, err, domain.ErrQuotaExhausted)
}

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "", sanitizeText("", 10))
	assert.Equal(t, "hello", sanitizeText("  hello  ", 10))
	assert.Equal(t, "scriptalert(1)/script", sanitizeText(`<script>alert("1")</script>`, 100))
	assert.Equal(t, "abc", sanitizeText("abcdef", 3))
}
