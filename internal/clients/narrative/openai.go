package narrative

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/KirkDiggler/rpg-party/internal/engine/dice"
	"github.com/KirkDiggler/rpg-party/internal/errors"
)

const (
	DefaultModel       = openai.ChatModelGPT4oMini
	DefaultMaxTokens   = 160
	DefaultTemperature = 0.8

	rollPrefix = "ROLL:"
)

// OpenAIConfig configures the chat-backed generator
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int64
	Temperature float64

	// HistoryLimit caps how many records are sent as context
	HistoryLimit int
}

// Validate ensures all required settings are provided
func (c *OpenAIConfig) Validate() error {
	vb := errors.NewValidationBuilder()

	errors.ValidateRequired("APIKey", c.APIKey, vb)
	errors.ValidateNonNegative("MaxTokens", c.MaxTokens, vb)
	if c.Temperature < 0 || c.Temperature > 2 {
		vb.Field("Temperature", "must be between 0 and 2")
	}

	return vb.Build()
}

type openAIGenerator struct {
	client       openai.Client
	model        openai.ChatModel
	maxTokens    int64
	temperature  float64
	historyLimit int
}

// NewOpenAI creates a generator backed by the chat completions API.
// Retries are left to the caller's timeout; the client makes one attempt.
func NewOpenAI(cfg *OpenAIConfig) (Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	g := &openAIGenerator{
		client:       openai.NewClient(opts...),
		model:        DefaultModel,
		maxTokens:    DefaultMaxTokens,
		temperature:  DefaultTemperature,
		historyLimit: 8,
	}
	if cfg.Model != "" {
		g.model = openai.ChatModel(cfg.Model)
	}
	if cfg.MaxTokens > 0 {
		g.maxTokens = cfg.MaxTokens
	}
	if cfg.Temperature > 0 {
		g.temperature = cfg.Temperature
	}
	if cfg.HistoryLimit > 0 {
		g.historyLimit = cfg.HistoryLimit
	}

	return g, nil
}

func (g *openAIGenerator) Generate(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, errors.InvalidArgument("request is required")
	}

	var system string
	switch req.Role {
	case RoleDM:
		system = dmSystemPrompt
	case RoleCompanion:
		if req.Speaker.ID == "" {
			return nil, errors.InvalidArgument("companion speaker is required")
		}
		system = companionSystemPrompt(req)
	default:
		return nil, errors.InvalidArgumentf("unknown role %q", req.Role)
	}

	start := time.Now()
	completion, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: g.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(g.userPrompt(req)),
		},
		MaxTokens:   openai.Int(g.maxTokens),
		Temperature: openai.Float(g.temperature),
	})
	if err != nil {
		return nil, errors.Wrap(err, "chat completion failed")
	}
	if len(completion.Choices) == 0 {
		return nil, errors.Unavailable("chat completion returned no choices")
	}

	slog.Debug("Narrative generated",
		"session_id", req.SessionID,
		"role", req.Role,
		"speaker_id", req.Speaker.ID,
		"duration", time.Since(start),
	)

	return parseReply(req, completion.Choices[0].Message.Content)
}

const dmSystemPrompt = `You are the Dungeon Master of a tabletop fantasy adventure.
Narrate the outcome of the latest action in two or three vivid sentences.
If the action needs a skill check, end with a line "ROLL: <dice notation>", for example "ROLL: 1d20+3".`

func companionSystemPrompt(req *Request) string {
	return fmt.Sprintf(`You are %s, a %s %s adventuring with a human player.
Answer in character with one or two short spoken sentences. No narration, no stage directions.`,
		req.Speaker.DisplayName, req.Speaker.Personality, req.Speaker.Class)
}

func (g *openAIGenerator) userPrompt(req *Request) string {
	var b strings.Builder

	if req.Scene != "" {
		fmt.Fprintf(&b, "Scene: %s\n\n", req.Scene)
	}

	history := req.History
	if len(history) > g.historyLimit {
		history = history[len(history)-g.historyLimit:]
	}
	if len(history) > 0 {
		b.WriteString("Recent events:\n")
		for _, rec := range history {
			if rec.IsErrorMarker() {
				continue
			}
			fmt.Fprintf(&b, "- %s: %s\n", rec.SpeakerName, rec.Dialogue)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "%s (%s): %s", req.Prompt.SpeakerName, req.Prompt.ActionLabel, req.Prompt.Dialogue)
	return b.String()
}

// parseReply splits an optional trailing ROLL line from the dialogue
func parseReply(req *Request, content string) (*Response, error) {
	resp := &Response{}

	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(content), "\n") {
		trimmed := strings.TrimSpace(line)
		if req.Role == RoleDM && strings.HasPrefix(strings.ToUpper(trimmed), rollPrefix) {
			notation := strings.TrimSpace(trimmed[len(rollPrefix):])
			if _, err := dice.ParseNotation(notation); err == nil {
				resp.RollNotation = notation
				resp.Advantage, resp.Disadvantage = RollModifiers(req.Prompt)
			}
			continue
		}
		lines = append(lines, line)
	}

	resp.Dialogue = strings.TrimSpace(strings.Join(lines, "\n"))
	if resp.Dialogue == "" {
		return nil, errors.Unavailable("chat completion returned empty dialogue")
	}

	if req.Role == RoleDM {
		resp.ActionLabel = ActionNarrate
	} else {
		resp.ActionLabel = ActionType(req.Speaker, req.Prompt)
	}
	return resp, nil
}
