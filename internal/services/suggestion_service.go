package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/yukikurage/task-sphere/internal/constants"
	"github.com/yukikurage/task-sphere/internal/models"
)

// ChatCompleter is the part of the OpenAI client the suggestion service uses.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// SuggestionService turns free text into task suggestions with a chat model.
type SuggestionService struct {
	client ChatCompleter
	model  string
}

// SuggestedTask is an unpersisted task text proposed by the model.
type SuggestedTask struct {
	Text string `json:"text"`
}

// NewSuggestionService returns nil when apiKey is empty so callers can treat
// the feature as disabled.
func NewSuggestionService(apiKey, model string) *SuggestionService {
	if apiKey == "" {
		return nil
	}
	return NewSuggestionServiceWithClient(openai.NewClient(apiKey), model)
}

// NewSuggestionServiceWithClient builds a service around any ChatCompleter.
func NewSuggestionServiceWithClient(client ChatCompleter, model string) *SuggestionService {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &SuggestionService{client: client, model: model}
}

var errEmptyCompletion = errors.New("no response from OpenAI")

// Suggest asks the model for short task texts that fit timeframe.
func (s *SuggestionService) Suggest(ctx context.Context, text string, timeframe models.Timeframe) ([]SuggestedTask, error) {
	prompt := fmt.Sprintf(`You are a task planning assistant. Break the following note into concrete %s tasks.

Note:
%s

Return a JSON array of objects of the form [{"text": "short task description"}].
- Return [] if the note contains no tasks
- Keep each text under 100 characters
- Return JSON only, without explanations`, timeframe, text)

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, errEmptyCompletion
	}

	return parseSuggestions(resp.Choices[0].Message.Content)
}

// parseSuggestions decodes the model output, tolerating a markdown code fence.
// Blank entries are dropped and the result is capped at MaxSuggestedTasks.
func parseSuggestions(content string) ([]SuggestedTask, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	}

	var raw []SuggestedTask
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w", err)
	}

	suggested := make([]SuggestedTask, 0, len(raw))
	for _, task := range raw {
		task.Text = strings.TrimSpace(task.Text)
		if task.Text == "" {
			continue
		}
		suggested = append(suggested, task)
		if len(suggested) == constants.MaxSuggestedTasks {
			break
		}
	}

	return suggested, nil
}
