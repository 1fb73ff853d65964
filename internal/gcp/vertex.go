package gcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
)

// --- Key Phrase Model Prompts ---
const KeyPhraseSystemPrompt = "You are a key phrase extraction service. You return the key noun phrases of a document as a JSON array of strings and nothing else."
const KeyPhraseUserPrompt = `Extract the key phrases of the document below.

Follow these rules precisely:
1.  A key phrase is a short noun phrase (usually one to four words) copied verbatim from the document.
2.  List the phrases in the order they first appear in the document.
3.  Do not repeat a phrase.
4.  The output MUST be a single, valid JSON array of strings. Do not include any text before or after the array.

Example output format:
["quarterly report", "revenue growth", "European market"]

Document:
`

// VertexClient holds the pre-configured generative model used for key phrases.
type VertexClient struct {
	KeyPhraseModel *genai.GenerativeModel
	baseClient     *genai.Client
}

// NewVertexClient creates a new client holding the key phrase model.
func NewVertexClient(ctx context.Context, projectID, region, modelName string) (*VertexClient, error) {
	if projectID == "" || region == "" || modelName == "" {
		return nil, fmt.Errorf("NewVertexClient: projectID, region and modelName cannot be empty")
	}

	baseClient, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	keyPhraseModel := baseClient.GenerativeModel(modelName)
	keyPhraseModel.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(KeyPhraseSystemPrompt)},
	}
	keyPhraseModel.GenerationConfig = genai.GenerationConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0.0),
	}
	keyPhraseModel.SafetySettings = []*genai.SafetySetting{
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockNone},
	}

	return &VertexClient{
		KeyPhraseModel: keyPhraseModel,
		baseClient:     baseClient,
	}, nil
}

// DetectKeyPhrases returns the document's key phrases in the order the model lists them.
func (c *VertexClient) DetectKeyPhrases(ctx context.Context, text string) ([]string, error) {
	resp, err := c.KeyPhraseModel.GenerateContent(ctx, genai.Text(KeyPhraseUserPrompt+text))
	if err != nil {
		return nil, fmt.Errorf("failed to generate key phrases from gemini: %w", err)
	}
	return parseKeyPhrases(responseText(resp))
}

func (c *VertexClient) Close() error {
	if c.baseClient != nil {
		return c.baseClient.Close()
	}
	return nil
}

// responseText gets the raw text of the first candidate, or "" when there is none.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return b.String()
}

// parseKeyPhrases decodes a JSON array of phrases, tolerating markdown fences and
// dropping blank entries.
func parseKeyPhrases(raw string) ([]string, error) {
	clean := strings.TrimSpace(raw)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)
	if clean == "" {
		return nil, fmt.Errorf("gemini returned an empty response instead of JSON")
	}

	var phrases []string
	if err := json.Unmarshal([]byte(clean), &phrases); err != nil {
		return nil, fmt.Errorf("failed to parse key phrases from model: %w", err)
	}
	out := phrases[:0]
	for _, p := range phrases {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out, nil
}
