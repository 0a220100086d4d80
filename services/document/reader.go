package document

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	documentModel "vizhaa-backend/models/document"

	"google.golang.org/genai"
)

// Reader extracts identity fields from a scanned document.
type Reader interface {
	Read(ctx context.Context, data []byte, mimeType string) (*documentModel.Result, error)
}

const aadharPrompt = `Analyze this Indian Aadhaar card image and extract the following information. Return ONLY valid JSON.

If a field is missing or unclear, use an empty string.

Required JSON format:
{
"name": string,            // Card holder's full name
"aadhar_number": string,   // 12 digit Aadhaar number, digits only
"date_of_birth": string,   // DOB or year of birth as printed
"gender": string           // Male, Female or Transgender
}`

// GeminiReader reads documents with the Gemini vision models.
type GeminiReader struct {
	client *genai.Client
	model  string
}

func NewGeminiReader(ctx context.Context, apiKey, model string) (*GeminiReader, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is empty")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiReader{client: client, model: model}, nil
}

func (g *GeminiReader) Read(ctx context.Context, data []byte, mimeType string) (*documentModel.Result, error) {
	content := &genai.Content{
		Parts: []*genai.Part{
			{Text: aadharPrompt},
			{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}},
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{content}, &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(0.1)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no content generated")
	}
	text := resp.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return nil, fmt.Errorf("empty response from model")
	}
	return parseResult(text)
}

func parseResult(text string) (*documentModel.Result, error) {
	var r documentModel.Result
	body := stripCodeFence(text)
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w, response: %s", err, body)
	}
	r.AadharNumber = digitsOnly(r.AadharNumber)
	return &r, nil
}

// stripCodeFence returns the body of a markdown code block, or text unchanged.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") || !strings.HasSuffix(text, "```") {
		return text
	}
	lines := strings.Split(text, "\n")
	if len(lines) < 2 {
		return strings.Trim(text, "`")
	}
	return strings.TrimSpace(strings.Join(lines[1:len(lines)-1], "\n"))
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
