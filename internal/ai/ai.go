/*
Package ai adds an optional Gemini-generated gloss to new-tender
notifications.
*/
package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"
)

const defaultModel = "gemini-2.0-flash"

const systemInstruction = `Eres un analista de compras públicas. Recibirás la descripción de una licitación de CFE.
Devuelve una sola línea en español (máximo 25 palabras) que resuma qué se está comprando o contratando, sin adornos ni opiniones.`

type glossResponse struct {
	Gloss string `json:"gloss"`
}

// Annotator produces a one-line summary of a tender description. A nil
// Annotator (no API key configured) is valid and annotates nothing.
type Annotator struct {
	apiKey string
	model  string
}

func NewAnnotator(apiKey, model string) *Annotator {
	if apiKey == "" {
		return nil
	}
	if model == "" {
		model = defaultModel
	}
	return &Annotator{apiKey: apiKey, model: model}
}

// Gloss returns the one-line summary, or an error the caller is expected to
// log and ignore: a missing gloss never blocks a notification.
func (a *Annotator) Gloss(ctx context.Context, description string) (string, error) {
	if a == nil {
		return "", nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  a.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("create gemini client: %w", err)
	}

	contents := []*genai.Content{
		{Role: "system", Parts: []*genai.Part{{Text: systemInstruction}}},
		{Role: "user", Parts: []*genai.Part{{Text: description}}},
	}

	resp, err := client.Models.GenerateContent(ctx, a.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"gloss": {Type: genai.TypeString, Description: "Resumen de una línea de la licitación."},
			},
			Required: []string{"gloss"},
		},
	})
	if err != nil {
		return "", fmt.Errorf("gemini API call failed: %w", err)
	}

	var out glossResponse
	if err := json.Unmarshal([]byte(resp.Text()), &out); err != nil {
		return "", fmt.Errorf("unmarshal gemini response: %w", err)
	}
	return out.Gloss, nil
}
