package llm

import (
	"context"
	"fmt"

	"github.com/caomingyu/soulqun/message"
	openai "github.com/sashabaranov/go-openai"
)

// NewOpenAI creates a responder backed by an OpenAI-compatible chat
// API. DeepSeek and Zhipu expose this protocol, so baseURL selects the
// actual vendor; leave it empty for api.openai.com.
func NewOpenAI(apiKey, baseURL, model string) *OpenAI {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAI{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

type OpenAI struct {
	client *openai.Client
	model  string
}

func (o *OpenAI) Reply(ctx context.Context, in ReplyInput) (string, error) {
	msgs := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: buildSystemPrompt(in)},
	}
	for _, msg := range in.RecentHistory {
		switch {
		case msg.Kind == message.KindUser:
			msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: msg.Text})
		case msg.Kind == message.KindPersona && msg.PersonaId() == in.Persona.PersonaId:
			msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: msg.Text})
		}
	}
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: fmt.Sprintf("用户说：%s\n\n请以%s的身份回复：", in.UserText, in.Persona.DisplayName),
	})

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Messages:    msgs,
		Temperature: 0.85,
		MaxTokens:   200,
	})
	if err != nil {
		return "", fmt.Errorf("%w: openai: %v", ErrUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: openai returned no choices", ErrUnavailable)
	}
	return trimRunes(oneLinePerPart(resp.Choices[0].Message.Content), 120), nil
}

var _ Responder = (*OpenAI)(nil)
