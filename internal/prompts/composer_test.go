package prompts

import (
	"strings"
	"testing"

	"github.com/profai/profai-backend/internal/core"
)

func TestChat_EmbedsProfileFields(t *testing.T) {
	t.Parallel()

	profile := core.DefaultProfile()
	profile.PreferredLearningStyle = core.StyleVisual
	profile.ConceptualUnderstanding = 7
	profile.DifficultConcepts = []string{"Backpropagation", "Attention"}
	profile.MasteredConcepts = []string{"Linear Regression"}

	prompt := NewComposer().Chat(profile, nil, "English")

	for _, want := range []string{
		"You are ProfAI",
		"- Learning Style: visual",
		"- Conceptual Understanding: 7/10",
		"- Difficult Concepts: Backpropagation, Attention",
		"- Mastered Concepts: Linear Regression",
		"Use visual analogies, diagrams, and step-by-step breakdowns",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
}

func TestChat_EncouragementLadder(t *testing.T) {
	t.Parallel()

	cases := []struct {
		level int
		want  string
	}{
		{9, "plenty of positive reinforcement"},
		{2, "matter-of-fact explanations"},
		{5, "moderate encouragement"},
	}
	for _, tc := range cases {
		profile := core.DefaultProfile()
		profile.ResponseToEncouragement = tc.level
		prompt := NewComposer().Chat(profile, nil, "")
		if !strings.Contains(prompt, tc.want) {
			t.Fatalf("level %d: prompt missing %q", tc.level, tc.want)
		}
	}
}

func TestChat_LanguageDirective(t *testing.T) {
	t.Parallel()

	c := NewComposer()
	directive := "Respond entirely in Spanish"

	spanish := c.Chat(core.DefaultProfile(), nil, "Spanish")
	if !strings.Contains(spanish, directive) {
		t.Fatal("Spanish prompt missing the language directive")
	}

	english := c.Chat(core.DefaultProfile(), nil, "English")
	if strings.Contains(english, "Respond entirely in") {
		t.Fatal("English prompt must not carry a language directive")
	}
}

func TestChat_ContextWindowIsLastThreeContents(t *testing.T) {
	t.Parallel()

	history := []core.ConversationTurn{
		{Role: core.RoleUser, Content: "first"},
		{Role: core.RoleAssistant, Content: "second"},
		{Role: core.RoleUser, Content: "third"},
		{Role: core.RoleAssistant, Content: "fourth"},
	}
	prompt := NewComposer().Chat(core.DefaultProfile(), history, "English")

	if !strings.Contains(prompt, `["second","third","fourth"]`) {
		t.Fatalf("prompt context window wrong:\n%s", prompt)
	}
	if strings.Contains(prompt, `"first"`) {
		t.Fatal("context window must hold only the last three contents")
	}
}

func TestPodcast_ExchangeTargetDependsOnHistory(t *testing.T) {
	t.Parallel()

	c := NewComposer()

	opening := c.Podcast("Transformers", nil, "English")
	if !strings.Contains(opening, "(6-9 total exchanges)") {
		t.Fatal("opening prompt missing the 6-9 exchange target")
	}

	followUp := c.Podcast("Transformers", []core.ConversationTurn{
		{Role: core.RoleUser, Content: "tell me more"},
	}, "English")
	if !strings.Contains(followUp, "(4-6 total exchanges)") {
		t.Fatal("follow-up prompt missing the 4-6 exchange target")
	}
}

func TestPodcast_JSONContract(t *testing.T) {
	t.Parallel()

	prompt := NewComposer().Podcast("Neural Networks", nil, "")

	for _, want := range []string{
		"FORMAT YOUR RESPONSE AS JSON",
		`"speakers"`,
		`"topic_summary"`,
		"Output raw JSON only. No markdown code fences.",
		"TOPIC: Neural Networks",
		"LANGUAGE: English",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
}

func TestPodcast_NonEnglishRepeatsDirective(t *testing.T) {
	t.Parallel()

	prompt := NewComposer().Podcast("Deep Learning", nil, "French")
	if !strings.Contains(prompt, "Respond entirely in French. Do not mix languages.") {
		t.Fatal("non-English prompt missing the reinforcement directive")
	}
	if !strings.Contains(prompt, "LANGUAGE: French") {
		t.Fatal("prompt missing the language footer")
	}
}
