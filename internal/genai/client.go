package genai

import (
	"context"
	"errors"
	"io"

	"github.com/sashabaranov/go-openai"

	"github.com/profai/profai-backend/internal/core"
)

// How much history rides along with each completion request.
const historyWindow = 6

// Config holds the OpenAI client configuration.
type Config struct {
	APIKey      string
	ChatModel   string
	ScriptModel string
	TTSModel    string
}

// Client is the thin one-shot generator boundary: chat completions for tutor
// responses and podcast scripts, speech synthesis, and transcription. No
// retries here; generation failures propagate to the caller.
type Client struct {
	api *openai.Client
	cfg Config
}

func New(cfg Config) *Client {
	if cfg.ChatModel == "" {
		cfg.ChatModel = openai.GPT4o
	}
	if cfg.ScriptModel == "" {
		cfg.ScriptModel = openai.GPT4o
	}
	if cfg.TTSModel == "" {
		cfg.TTSModel = string(openai.TTSModel1HD)
	}
	return &Client{api: openai.NewClient(cfg.APIKey), cfg: cfg}
}

// Complete generates a single tutor response: system prompt, a bounded
// suffix of the history, then the user message.
func (c *Client) Complete(ctx context.Context, systemPrompt string, history []core.ConversationTurn, message string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, historyWindow+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})

	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	for _, turn := range history {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    turn.Role,
			Content: turn.Content,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: message,
	})

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:            c.cfg.ChatModel,
		Messages:         messages,
		Temperature:      0.8,
		MaxTokens:        800,
		PresencePenalty:  0.1,
		FrequencyPenalty: 0.1,
	})
	if err != nil {
		return "", &core.GenerationError{Op: "chat completion", Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &core.GenerationError{Op: "chat completion", Err: errors.New("no choices returned")}
	}
	return resp.Choices[0].Message.Content, nil
}

// CompleteScript asks the generator for a podcast script; the raw text goes
// to the script post-processor, which owns parsing and fallback.
func (c *Client) CompleteScript(ctx context.Context, systemPrompt, topic string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.cfg.ScriptModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: "Create a podcast conversation about: " + topic},
		},
		Temperature: 0.8,
		MaxTokens:   1500,
	})
	if err != nil {
		return "", &core.GenerationError{Op: "script generation", Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &core.GenerationError{Op: "script generation", Err: errors.New("no choices returned")}
	}
	return resp.Choices[0].Message.Content, nil
}

// Synthesize renders text as mp3 audio with the given voice.
func (c *Client) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	resp, err := c.api.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(c.cfg.TTSModel),
		Input:          text,
		Voice:          openai.SpeechVoice(voiceID),
		ResponseFormat: openai.SpeechResponseFormatMp3,
		Speed:          1.0,
	})
	if err != nil {
		return nil, &core.GenerationError{Op: "speech synthesis", Err: err}
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, &core.GenerationError{Op: "speech synthesis", Err: err}
	}
	return audio, nil
}

// Transcribe turns an uploaded audio file into text via Whisper.
func (c *Client) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	resp, err := c.api.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: filename,
		Reader:   audio,
	})
	if err != nil {
		return "", &core.GenerationError{Op: "transcription", Err: err}
	}
	return resp.Text, nil
}
