package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
)

const generationSystemPrompt = "You are a travel planning assistant that specializes in creating group " +
	"itineraries that balance everyone's preferences. Your output should be well-structured JSON that " +
	"includes days, activities, meals, and accommodations."

// ItineraryGenerator produces a raw itinerary document for a composed prompt.
// Implemented by the OpenAI client in production and by scripted fakes in tests.
type ItineraryGenerator interface {
	GenerateItinerary(ctx context.Context, prompt string) (string, error)
}

// OpenAIGenerator calls an OpenAI-compatible chat-completions endpoint,
// requesting a JSON-object response. The round-trip is blocking with no
// timeout or retry; a slow upstream blocks only the requesting call chain.
type OpenAIGenerator struct {
	BaseURL string
	APIKey  string
	Model   string
	Client  *http.Client
}

// NewOpenAIGenerator builds a generator from the environment.
func NewOpenAIGenerator() *OpenAIGenerator {
	baseURL := os.Getenv("OPENAI_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = "gpt-4-turbo"
	}

	return &OpenAIGenerator{
		BaseURL: baseURL,
		APIKey:  os.Getenv("OPENAI_API_KEY"),
		Model:   model,
		Client:  &http.Client{},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (g *OpenAIGenerator) GenerateItinerary(ctx context.Context, prompt string) (string, error) {
	reqBody := chatCompletionRequest{
		Model: g.Model,
		Messages: []chatMessage{
			{Role: "system", Content: generationSystemPrompt},
			{Role: "user", Content: prompt},
		},
	}
	reqBody.ResponseFormat.Type = "json_object"

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.BaseURL+"/chat/completions", bytes.NewBuffer(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.APIKey)

	res, err := g.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", fmt.Errorf("unexpected completion payload: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		if completion.Error != nil {
			return "", fmt.Errorf("generation service: %s", completion.Error.Message)
		}
		return "", fmt.Errorf("generation service returned status %d", res.StatusCode)
	}

	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return "", errors.New("no content returned from generation service")
	}

	return completion.Choices[0].Message.Content, nil
}
