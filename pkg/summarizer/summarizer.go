package summarizer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Summary holds the bilingual summary produced for a book.
type Summary struct {
	English    string `json:"english"`
	Indonesian string `json:"indonesian"`
}

// Summarizer produces book summaries from title and author. Implementations
// are external collaborators; callers decide whether a failure is fatal.
type Summarizer interface {
	Summarize(ctx context.Context, title, author string) (*Summary, error)
	Close()
}

type geminiSummarizer struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGemini builds a Gemini-backed summarizer from GEMINI_API_KEY.
func NewGemini(ctx context.Context) (Summarizer, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	model := client.GenerativeModel("gemini-2.5-flash")
	model.SetTemperature(0.4)

	return &geminiSummarizer{
		client: client,
		model:  model,
	}, nil
}

func (s *geminiSummarizer) Summarize(ctx context.Context, title, author string) (*Summary, error) {
	prompt := fmt.Sprintf(`
Kamu adalah pustakawan yang menulis ringkasan buku untuk katalog perpustakaan.

Judul: %s
Penulis: %s

Instruksi:
1. Tulis ringkasan singkat buku tersebut (3-5 kalimat), netral dan informatif.
2. Kalau kamu tidak mengenal bukunya, tulis ringkasan umum berdasarkan judul dan penulis, jangan mengarang detail plot.
3. Outputnya HARUS format JSON: {"english": "...", "indonesian": "..."}
`, title, author)

	s.model.ResponseMIMEType = "application/json"
	resp, err := s.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, err
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("no response from LLM")
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			var result Summary
			if err := json.Unmarshal([]byte(txt), &result); err != nil {
				return nil, fmt.Errorf("failed to parse JSON: %w", err)
			}
			return &result, nil
		}
	}

	return nil, fmt.Errorf("no text content in response")
}

func (s *geminiSummarizer) Close() {
	s.client.Close()
}
