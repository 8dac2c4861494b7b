package llm

import (
	"context"
	"fmt"

	"github.com/caomingyu/soulqun/message"
	"google.golang.org/genai"
)

// NewGemini creates a Vertex AI backed responder.
func NewGemini(ctx context.Context, projectId, location, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectId,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("llm.NewGemini: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

type Gemini struct {
	client *genai.Client
	model  string
}

func (g *Gemini) Reply(ctx context.Context, in ReplyInput) (string, error) {
	var contents []*genai.Content
	for _, msg := range in.RecentHistory {
		if msg.IsSystem() {
			continue
		}
		role := genai.RoleUser
		speaker := "用户"
		if msg.Kind == message.KindPersona {
			speaker = msg.From.DisplayName
			if msg.PersonaId() == in.Persona.PersonaId {
				// Own lines go back as the model's role.
				role = genai.RoleModel
			}
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: fmt.Sprintf("%s(%s)", msg.Text, speaker)}},
		})
	}
	contents = append(contents, &genai.Content{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{{Text: fmt.Sprintf("用户说：%s\n\n请以%s的身份回复：", in.UserText, in.Persona.DisplayName)}},
	})

	var temp float32 = 0.85
	cfg := &genai.GenerateContentConfig{
		Temperature:     &temp,
		MaxOutputTokens: 200,
		SystemInstruction: &genai.Content{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{{Text: buildSystemPrompt(in)}},
		},
		StopSequences: []string{
			fmt.Sprintf("(%s)", in.Persona.DisplayName),
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("%w: gemini: %v", ErrUnavailable, err)
	}

	txt := extractText(resp)
	if txt == "" {
		return "", fmt.Errorf("%w: gemini returned no text", ErrUnavailable)
	}
	return trimRunes(oneLinePerPart(txt), 120), nil
}

func extractText(res *genai.GenerateContentResponse) string {
	if res == nil || len(res.Candidates) == 0 {
		return ""
	}
	for _, c := range res.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if p.Text != "" {
				return p.Text
			}
		}
	}
	return ""
}

var _ Responder = (*Gemini)(nil)
