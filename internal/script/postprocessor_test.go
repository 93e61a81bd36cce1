package script

import (
	"strings"
	"testing"

	"github.com/profai/profai-backend/internal/logger"
)

func newTestPostProcessor() *PostProcessor {
	return NewPostProcessor(DefaultPersonas(), logger.NewNop())
}

func TestNormalize_ValidJSONPassesThrough(t *testing.T) {
	t.Parallel()

	raw := `{"speakers":[{"speaker":"sarah","text":"Hi there."},{"speaker":"marcus","text":"Hello!"}],"topic_summary":"Greetings"}`
	got := newTestPostProcessor().Normalize(raw, "Greetings")

	if len(got.Speakers) != 2 || got.Speakers[0].Speaker != "sarah" || got.Speakers[1].Text != "Hello!" {
		t.Fatalf("unexpected script: %+v", got)
	}
	if got.TopicSummary != "Greetings" {
		t.Fatalf("TopicSummary=%q", got.TopicSummary)
	}
}

func TestNormalize_FencedJSONIsUnwrapped(t *testing.T) {
	t.Parallel()

	raw := "```json\n{\"speakers\":[{\"speaker\":\"marcus\",\"text\":\"Fenced but fine.\"}]}\n```"
	got := newTestPostProcessor().Normalize(raw, "Fences")

	if len(got.Speakers) != 1 || got.Speakers[0].Text != "Fenced but fine." {
		t.Fatalf("unexpected script: %+v", got)
	}
}

func TestNormalize_FillsEmptySummary(t *testing.T) {
	t.Parallel()

	raw := `{"speakers":[{"speaker":"sarah","text":"On topic."}]}`
	got := newTestPostProcessor().Normalize(raw, "Gradient Descent")

	if got.TopicSummary != "Discussion about Gradient Descent" {
		t.Fatalf("TopicSummary=%q", got.TopicSummary)
	}
}

func TestNormalize_GarbageYieldsFallback(t *testing.T) {
	t.Parallel()

	p := newTestPostProcessor()
	for _, raw := range []string{
		"Sure! Here's a fun conversation about transformers...",
		`{"speakers":[]}`,
		"",
	} {
		got := p.Normalize(raw, "Transformers")
		if len(got.Speakers) != 2 {
			t.Fatalf("Normalize(%q): want the two-turn fallback, got %+v", raw, got)
		}
		if got.Speakers[0].Speaker != "sarah" || !strings.Contains(got.Speakers[0].Text, "Transformers") {
			t.Fatalf("fallback opener wrong: %+v", got.Speakers[0])
		}
		if got.TopicSummary != "Discussion about Transformers" {
			t.Fatalf("fallback summary=%q", got.TopicSummary)
		}
	}
}

func TestResolve_DropsUnknownSpeakersKeepsOrder(t *testing.T) {
	t.Parallel()

	script := DialogueScript{Speakers: []Turn{
		{Speaker: "Sarah", Text: "one"},
		{Speaker: "narrator", Text: "should vanish"},
		{Speaker: "MARCUS", Text: "two"},
	}}
	got := newTestPostProcessor().Resolve(script)

	if len(got) != 2 {
		t.Fatalf("len=%d want 2", len(got))
	}
	if got[0].Voice.Name != "Sarah" || got[0].Text != "one" {
		t.Fatalf("got[0]=%+v", got[0])
	}
	if got[1].Voice.Name != "Marcus" || got[1].Voice.VoiceID != "alloy" {
		t.Fatalf("got[1]=%+v", got[1])
	}
}

func TestTranscript_JoinFormat(t *testing.T) {
	t.Parallel()

	personas := DefaultPersonas()
	turns := []ResolvedTurn{
		{Voice: personas["sarah"], Text: "hi"},
		{Voice: personas["marcus"], Text: "yo"},
	}
	if got := Transcript(turns); got != "Sarah: hi\n\nMarcus: yo" {
		t.Fatalf("Transcript=%q", got)
	}
	if got := Transcript(nil); got != "" {
		t.Fatalf("Transcript(nil)=%q", got)
	}
}

func TestDefaultPersonas_Casting(t *testing.T) {
	t.Parallel()

	personas := DefaultPersonas()
	if personas["sarah"].VoiceID != "shimmer" || personas["marcus"].VoiceID != "alloy" {
		t.Fatalf("unexpected default casting: %+v", personas)
	}
}
