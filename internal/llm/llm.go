// Package llm wraps the Gemini models used to read receipts and to phrase
// spending insights.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"raseed/internal/core"
	"raseed/internal/log"
)

// ErrEmptyResponse is returned when the model answers with no text.
var ErrEmptyResponse = errors.New("no response text received from the model")

// Generator sends contents to a model and returns the response text.
type Generator interface {
	Generate(ctx context.Context, contents []*genai.Content) (string, error)
}

// Gemini is a Generator backed by the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini generator. An empty apiKey lets the SDK read
// GOOGLE_API_KEY / GEMINI_API_KEY and the Vertex settings from the environment.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	cfg := &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	}
	if apiKey != "" {
		cfg.APIKey = apiKey
		cfg.Backend = genai.BackendGeminiAPI
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

// Generate implements Generator.
func (g *Gemini) Generate(ctx context.Context, contents []*genai.Content) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return resp.Text(), nil
}

// Client runs the receipt and insight prompts against a Generator.
type Client struct {
	gen    Generator
	logger *log.Logger
}

func New(gen Generator, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.Wrap(nil, log.ComponentLLM)
	}
	return &Client{gen: gen, logger: logger}
}

const receiptPrompt = "You are an expert receipt processing agent. Analyze the provided receipt.\n" +
	"Extract the merchant name, transaction date, total amount, tax, currency, and a list of all individual items with their prices.\n\n" +
	"If you cannot find a value for a field, set it to null.\n\n" +
	"Respond ONLY with a valid JSON object. Do not include any other text, explanations, or markdown formatting.\n\n" +
	"The JSON structure must be:\n" +
	"{\n" +
	"  \"merchant\": \"string\",\n" +
	"  \"date\": \"YYYY-MM-DD\",\n" +
	"  \"total\": number,\n" +
	"  \"tax\": number,\n" +
	"  \"currency\": \"ISO 4217 code (e.g., USD, EUR, INR)\",\n" +
	"  \"items\": [\n" +
	"    { \"description\": \"string\", \"price\": number }\n" +
	"  ]\n" +
	"}\n"

// ExtractReceipt reads a receipt image or PDF and returns its structured fields.
func (c *Client) ExtractReceipt(ctx context.Context, mimeType string, data []byte) (core.ScannedReceipt, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: receiptPrompt},
				{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}},
			},
		},
	}

	raw, err := c.gen.Generate(ctx, contents)
	if err != nil {
		return core.ScannedReceipt{}, err
	}
	clean := cleanModelJSON(raw, '{', '}')
	if clean == "" {
		return core.ScannedReceipt{}, ErrEmptyResponse
	}

	var out core.ScannedReceipt
	if err := json.Unmarshal([]byte(clean), &out); err != nil {
		c.logger.WarnContext(ctx, "Model returned invalid receipt JSON", log.FieldOperation, log.OpAnalyze, "raw_length", len(raw))
		return core.ScannedReceipt{}, fmt.Errorf("decode receipt json: %w", err)
	}
	if out.Items == nil {
		out.Items = []core.ScannedItem{}
	}
	return out, nil
}

// NarrateInsight asks the model for a short, friendly paragraph describing
// the month-over-month change and where the money went.
func (c *Client) NarrateInsight(ctx context.Context, cmp core.MonthComparison, categories []core.CategoryAmount) (string, error) {
	var b strings.Builder
	b.WriteString("You are a personal finance assistant. Write two or three plain sentences for a wallet pass, ")
	b.WriteString("without markdown, summarizing this month's spending for the user.\n\n")
	fmt.Fprintf(&b, "This month (%d-%02d): %s across %d receipts.\n",
		cmp.Current.Year, int(cmp.Current.Month), cmp.Current.Total.StringFixed(2), cmp.Current.PassCount)
	fmt.Fprintf(&b, "Previous month (%d-%02d): %s across %d receipts.\n",
		cmp.Previous.Year, int(cmp.Previous.Month), cmp.Previous.Total.StringFixed(2), cmp.Previous.PassCount)
	if cmp.PercentChange != nil {
		fmt.Fprintf(&b, "Percent saved versus previous month: %s%%.\n", cmp.PercentChange.StringFixed(2))
	}
	b.WriteString("Spending by category this month:\n")
	for _, cat := range categories {
		fmt.Fprintf(&b, "- %s: %s\n", cat.Name, cat.Amount.StringFixed(2))
	}

	raw, err := c.gen.Generate(ctx, []*genai.Content{genai.NewContentFromText(b.String(), genai.RoleUser)})
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// cleanModelJSON strips code fences and any text around the outermost
// open/close delimiters.
func cleanModelJSON(raw string, open, end byte) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return ""
		}
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if start := strings.IndexByte(s, open); start != -1 {
		if last := strings.LastIndexByte(s, end); last > start {
			s = s[start : last+1]
		}
	}
	return s
}
