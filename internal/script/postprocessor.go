package script

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/profai/profai-backend/internal/logger"
)

// Turn is one speaker/text pair as emitted by the generator.
type Turn struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// DialogueScript is the normalized form of the generator's structured output.
type DialogueScript struct {
	Speakers     []Turn `json:"speakers"`
	TopicSummary string `json:"topic_summary"`
}

// Voice is the static persona/voice casting entry for one speaker key.
type Voice struct {
	Name        string
	VoiceID     string
	Style       string
	Personality string
}

// DefaultPersonas is the two-host cast. Consumed as configuration; callers
// may override voice ids for a different synthesis provider.
func DefaultPersonas() map[string]Voice {
	return map[string]Voice{
		"sarah": {
			Name:        "Sarah",
			VoiceID:     "shimmer",
			Style:       "AI researcher and educator",
			Personality: "warm, analytical, excellent at breaking down complex concepts",
		},
		"marcus": {
			Name:        "Marcus",
			VoiceID:     "alloy",
			Style:       "Tech journalist and industry expert",
			Personality: "engaging, practical, asks great questions and connects theory to real-world",
		},
	}
}

// ResolvedTurn is a retained script turn with its casting applied.
type ResolvedTurn struct {
	Voice Voice
	Text  string
}

// PostProcessor validates and normalizes generator script output against a
// static persona table. Stateless beyond immutable configuration.
type PostProcessor struct {
	personas map[string]Voice
	log      *logger.Logger
}

func NewPostProcessor(personas map[string]Voice, log *logger.Logger) *PostProcessor {
	return &PostProcessor{personas: personas, log: log}
}

// Normalize parses raw generator output into a DialogueScript. Parse failures
// never propagate: a generator that rambles instead of returning JSON yields
// the fixed fallback exchange for the topic.
func (p *PostProcessor) Normalize(raw, topic string) DialogueScript {
	cleaned := stripFences(raw)

	var parsed DialogueScript
	if err := sonic.UnmarshalString(cleaned, &parsed); err != nil || len(parsed.Speakers) == 0 {
		p.log.Warn("script output not parseable, using fallback", "topic", topic, "error", err)
		return FallbackScript(topic)
	}
	if parsed.TopicSummary == "" {
		parsed.TopicSummary = fmt.Sprintf("Discussion about %s", topic)
	}
	return parsed
}

// FallbackScript is the deterministic two-turn exchange substituted when the
// generator's output cannot be parsed.
func FallbackScript(topic string) DialogueScript {
	return DialogueScript{
		Speakers: []Turn{
			{Speaker: "sarah", Text: fmt.Sprintf("Let's explore %s together.", topic)},
			{Speaker: "marcus", Text: "That sounds like a fascinating topic to discuss."},
		},
		TopicSummary: fmt.Sprintf("Discussion about %s", topic),
	}
}

// Resolve maps each script turn to its persona. Turns with an off-roster
// speaker key are dropped, not errored: generators occasionally invent a
// host, and a shorter episode beats a failed one. Order is preserved.
func (p *PostProcessor) Resolve(script DialogueScript) []ResolvedTurn {
	out := make([]ResolvedTurn, 0, len(script.Speakers))
	for _, turn := range script.Speakers {
		voice, ok := p.personas[strings.ToLower(turn.Speaker)]
		if !ok {
			p.log.Warn("dropping turn with unknown speaker", "speaker", turn.Speaker)
			continue
		}
		out = append(out, ResolvedTurn{Voice: voice, Text: turn.Text})
	}
	return out
}

// Transcript renders "DisplayName: text" lines joined by a blank line, in
// segment order. The exact join format is part of the external contract.
func Transcript(turns []ResolvedTurn) string {
	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		lines = append(lines, fmt.Sprintf("%s: %s", t.Voice.Name, t.Text))
	}
	return strings.Join(lines, "\n\n")
}

// stripFences removes a surrounding markdown code fence if the generator
// wrapped its JSON in one despite instructions.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
