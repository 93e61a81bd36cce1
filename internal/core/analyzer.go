package core

import (
	"strings"

	"github.com/profai/profai-backend/internal/logger"
)

// Analyzer turns a conversation window plus a stored profile into a bounded
// learner-state estimate. It holds no mutable state beyond its logger, so a
// single instance is shared across concurrent request handlers.
type Analyzer struct {
	log *logger.Logger
}

func NewAnalyzer(log *logger.Logger) *Analyzer {
	return &Analyzer{log: log}
}

// Comprehension cue vocabularies, checked by substring presence per message.
var (
	buildingCues  = []string{"also", "additionally", "what about", "how does this relate"}
	confusionCues = []string{"confused", "don't understand", "unclear"}
)

// DefaultEstimate is the fixed "insufficient data" result. Its exact values
// are part of the contract: callers receive it whenever there are no user
// turns or estimation fails internally.
func DefaultEstimate() Estimate {
	return Estimate{
		EmotionalTone: EmotionalTone{
			Sentiment:  SentimentNeutral,
			Confidence: 0.5,
			Engagement: 0.5,
		},
		LearningMetrics: LearningMetrics{
			ComprehensionLevel: 5,
			QuestionComplexity: 5,
			TopicMastery:       5,
			NeedsReinforcement: false,
			SuggestedNextTopic: "Machine Learning Basics",
		},
	}
}

// Estimate analyzes the user-authored turns of history against the profile.
// It never fails outward: estimation is best-effort, and any panic inside is
// recovered into the default estimate so the surrounding response proceeds.
func (a *Analyzer) Estimate(history []ConversationTurn, profile LearnerProfile) (est Estimate) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Warn("estimation failed, using default estimate", "panic", r)
			est = DefaultEstimate()
		}
	}()

	userMessages := UserContents(history)
	if len(userMessages) == 0 {
		return DefaultEstimate()
	}

	comprehension := estimateComprehension(userMessages)

	latest := userMessages[len(userMessages)-1]

	return Estimate{
		EmotionalTone: ClassifyTone(latest),
		LearningMetrics: LearningMetrics{
			ComprehensionLevel: levelOf(comprehension),
			QuestionComplexity: levelOf(meanComplexity(userMessages)),
			TopicMastery:       estimateTopicMastery(userMessages, profile),
			NeedsReinforcement: comprehension < 0.6,
			SuggestedNextTopic: suggestNextTopic(userMessages, profile),
		},
	}
}

// estimateComprehension starts at the 0.5 midpoint, rewards messages that
// build on prior concepts and penalizes confusion markers. Needs at least
// two user turns to say anything.
func estimateComprehension(userMessages []string) float64 {
	if len(userMessages) < 2 {
		return 0.5
	}

	building := 0
	clarifications := 0
	for _, msg := range userMessages {
		lower := strings.ToLower(msg)
		if containsAny(lower, buildingCues) {
			building++
		}
		if containsAny(lower, confusionCues) {
			clarifications++
		}
	}

	total := float64(len(userMessages))
	score := 0.5 + float64(building)/total*0.3 - float64(clarifications)/total*0.2
	return clamp(0.1, 1.0, score)
}

// estimateTopicMastery weighs the mastered/difficult concept ratio from the
// profile (0.7) against the complexity of the most recent questions (0.3).
func estimateTopicMastery(userMessages []string, profile LearnerProfile) int {
	mastered := len(profile.MasteredConcepts)
	difficult := len(profile.DifficultConcepts)
	base := float64(mastered) / float64(max(1, mastered+difficult))

	recent := userMessages
	if len(recent) > 3 {
		recent = recent[len(recent)-3:]
	}

	return levelOf(base*0.7 + meanComplexity(recent)*0.3)
}

// suggestNextTopic returns the first catalog entry mentioned neither in the
// mastered-concepts set nor in the last five user turns. The fixed scan
// order keeps the suggestion deterministic.
func suggestNextTopic(userMessages []string, profile LearnerProfile) string {
	masteredText := strings.ToLower(strings.Join(profile.MasteredConcepts, " "))

	recent := userMessages
	if len(recent) > 5 {
		recent = recent[len(recent)-5:]
	}
	recentText := strings.ToLower(strings.Join(recent, " "))

	for _, topic := range topicCatalog {
		lower := strings.ToLower(topic)
		if !strings.Contains(masteredText, lower) && !strings.Contains(recentText, lower) {
			return topic
		}
	}
	return "Advanced AI Applications"
}

func containsAny(lower string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}
