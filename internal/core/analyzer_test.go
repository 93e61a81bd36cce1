package core

import (
	"reflect"
	"testing"

	"github.com/profai/profai-backend/internal/logger"
)

func newTestAnalyzer() *Analyzer {
	return NewAnalyzer(logger.NewNop())
}

func userTurn(content string) ConversationTurn {
	return ConversationTurn{Role: RoleUser, Content: content}
}

func TestEstimate_NoUserTurnsReturnsFixedDefault(t *testing.T) {
	t.Parallel()

	a := newTestAnalyzer()

	for _, history := range [][]ConversationTurn{
		nil,
		{},
		{{Role: RoleAssistant, Content: "Welcome back!"}, {Role: RoleSystem, Content: "be nice"}},
	} {
		got := a.Estimate(history, DefaultProfile())
		if !reflect.DeepEqual(got, DefaultEstimate()) {
			t.Fatalf("Estimate(%v) = %+v, want the fixed default", history, got)
		}
	}
}

func TestDefaultEstimate_IsStable(t *testing.T) {
	t.Parallel()

	want := Estimate{
		EmotionalTone: EmotionalTone{Sentiment: SentimentNeutral, Confidence: 0.5, Engagement: 0.5},
		LearningMetrics: LearningMetrics{
			ComprehensionLevel: 5,
			QuestionComplexity: 5,
			TopicMastery:       5,
			NeedsReinforcement: false,
			SuggestedNextTopic: "Machine Learning Basics",
		},
	}
	if got := DefaultEstimate(); !reflect.DeepEqual(got, want) {
		t.Fatalf("DefaultEstimate()=%+v want %+v", got, want)
	}
}

func TestEstimate_SingleTurnMetricsInRange(t *testing.T) {
	t.Parallel()

	a := newTestAnalyzer()
	est := a.Estimate([]ConversationTurn{userTurn("What is a neural network?")}, DefaultProfile())

	assertBounded(t, est)

	// One user turn is insufficient for comprehension, so it sits at the 0.5
	// midpoint, which is below the reinforcement threshold.
	if est.LearningMetrics.ComprehensionLevel != 5 {
		t.Fatalf("ComprehensionLevel=%d want 5", est.LearningMetrics.ComprehensionLevel)
	}
	if !est.LearningMetrics.NeedsReinforcement {
		t.Fatal("NeedsReinforcement=false, want true for midpoint comprehension")
	}
}

func TestEstimate_BuildingQuestionsRaiseComprehension(t *testing.T) {
	t.Parallel()

	a := newTestAnalyzer()
	est := a.Estimate([]ConversationTurn{
		userTurn("What is gradient descent?"),
		userTurn("Also, how does this relate to backpropagation?"),
	}, DefaultProfile())

	// 0.5 + 0.3*(1/2) = 0.65 -> level 6, above the reinforcement threshold.
	if est.LearningMetrics.ComprehensionLevel != 6 {
		t.Fatalf("ComprehensionLevel=%d want 6", est.LearningMetrics.ComprehensionLevel)
	}
	if est.LearningMetrics.NeedsReinforcement {
		t.Fatal("NeedsReinforcement=true, want false")
	}
}

func TestEstimate_ConfusionLowersComprehension(t *testing.T) {
	t.Parallel()

	a := newTestAnalyzer()
	est := a.Estimate([]ConversationTurn{
		userTurn("I'm confused by this whole thing"),
		userTurn("Still unclear, I don't understand the chain rule"),
	}, DefaultProfile())

	// 0.5 - 0.2*(2/2) = 0.3 -> level 3, reinforcement needed.
	if est.LearningMetrics.ComprehensionLevel != 3 {
		t.Fatalf("ComprehensionLevel=%d want 3", est.LearningMetrics.ComprehensionLevel)
	}
	if !est.LearningMetrics.NeedsReinforcement {
		t.Fatal("NeedsReinforcement=false, want true")
	}
}

func TestEstimate_ToneReadsLatestUserMessageOnly(t *testing.T) {
	t.Parallel()

	a := newTestAnalyzer()
	est := a.Estimate([]ConversationTurn{
		userTurn("I love this, it's great!"),
		{Role: RoleAssistant, Content: "Glad to hear it."},
		userTurn("Now I'm stuck on the next part"),
	}, DefaultProfile())

	if est.EmotionalTone.Sentiment != SentimentConfused {
		t.Fatalf("Sentiment=%q want %q (from the latest user message)", est.EmotionalTone.Sentiment, SentimentConfused)
	}
}

func TestSuggestNextTopic_FirstCatalogEntryWhenNothingCovered(t *testing.T) {
	t.Parallel()

	a := newTestAnalyzer()
	est := a.Estimate([]ConversationTurn{userTurn("hello")}, LearnerProfile{})

	if est.LearningMetrics.SuggestedNextTopic != "Neural Networks" {
		t.Fatalf("SuggestedNextTopic=%q want %q", est.LearningMetrics.SuggestedNextTopic, "Neural Networks")
	}
}

func TestSuggestNextTopic_SkipsMasteredAndRecent(t *testing.T) {
	t.Parallel()

	a := newTestAnalyzer()
	profile := LearnerProfile{MasteredConcepts: []string{"Neural Networks"}}
	est := a.Estimate([]ConversationTurn{userTurn("Tell me about deep learning please")}, profile)

	// Neural Networks is mastered and Deep Learning was just discussed.
	if est.LearningMetrics.SuggestedNextTopic != "Machine Learning Algorithms" {
		t.Fatalf("SuggestedNextTopic=%q want %q",
			est.LearningMetrics.SuggestedNextTopic, "Machine Learning Algorithms")
	}
}

func TestEstimate_MasteryReflectsProfileRatio(t *testing.T) {
	t.Parallel()

	a := newTestAnalyzer()
	strong := LearnerProfile{MasteredConcepts: []string{"a", "b", "c"}}
	weak := LearnerProfile{DifficultConcepts: []string{"a", "b", "c"}}
	history := []ConversationTurn{userTurn("ok")}

	strongEst := a.Estimate(history, strong)
	weakEst := a.Estimate(history, weak)
	if strongEst.LearningMetrics.TopicMastery <= weakEst.LearningMetrics.TopicMastery {
		t.Fatalf("mastery %d should exceed %d",
			strongEst.LearningMetrics.TopicMastery, weakEst.LearningMetrics.TopicMastery)
	}
}

func TestEstimate_BoundsHoldAcrossProfiles(t *testing.T) {
	t.Parallel()

	a := newTestAnalyzer()
	histories := [][]ConversationTurn{
		{userTurn("hi")},
		{userTurn("algorithm neural model training deep learning???"), userTurn("also what about transformers? how does this relate?")},
		{userTurn("I'm confused"), userTurn("unclear"), userTurn("don't understand")},
	}
	profiles := []LearnerProfile{
		{},
		DefaultProfile(),
		{MasteredConcepts: []string{"x"}, DifficultConcepts: []string{"y", "z"}},
	}

	for _, history := range histories {
		for _, profile := range profiles {
			assertBounded(t, a.Estimate(history, profile))
		}
	}
}

func assertBounded(t *testing.T, est Estimate) {
	t.Helper()
	m := est.LearningMetrics
	for name, v := range map[string]int{
		"comprehensionLevel": m.ComprehensionLevel,
		"questionComplexity": m.QuestionComplexity,
		"topicMastery":       m.TopicMastery,
	} {
		if v < 1 || v > 10 {
			t.Fatalf("%s out of range: %d", name, v)
		}
	}
	tone := est.EmotionalTone
	if tone.Confidence < 0.3 || tone.Confidence > 0.9 {
		t.Fatalf("confidence out of range: %v", tone.Confidence)
	}
	if tone.Engagement < 0 || tone.Engagement > 1 {
		t.Fatalf("engagement out of range: %v", tone.Engagement)
	}
	valid := map[string]bool{
		SentimentPositive: true, SentimentExcited: true, SentimentNeutral: true,
		SentimentConfused: true, SentimentFrustrated: true,
	}
	if !valid[tone.Sentiment] {
		t.Fatalf("unknown sentiment %q", tone.Sentiment)
	}
}
