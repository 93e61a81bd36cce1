package core

import (
	"strings"
	"time"
)

// Learning-style cue vocabularies, checked per user message.
var (
	visualCues      = []string{"show", "see"}
	auditoryCues    = []string{"explain", "tell"}
	kinestheticCues = []string{"try", "practice"}
)

// UpdateProfile folds a batch of new interactions into a prior profile and
// returns the merged result. New fields overwrite prior ones (shallow merge);
// everything the batch does not speak to is carried over unchanged.
//
// TotalInteractions grows by the full batch length, assistant turns included,
// while the derived metrics count user turns only; that asymmetry is
// inherited behavior and kept on purpose (callers that replay a batch must
// dedupe externally).
func UpdateProfile(prior LearnerProfile, interactions []ConversationTurn, now time.Time) (LearnerProfile, error) {
	userMessages := UserContents(interactions)
	if len(userMessages) == 0 {
		return prior, ErrNoUserInteractions
	}

	visual, auditory, kinesthetic := 0, 0, 0
	totalWords := 0
	for _, msg := range userMessages {
		lower := strings.ToLower(msg)
		if containsAny(lower, visualCues) {
			visual++
		}
		if containsAny(lower, auditoryCues) {
			auditory++
		}
		if containsAny(lower, kinestheticCues) {
			kinesthetic++
		}
		totalWords += len(strings.Fields(msg))
	}

	updated := prior
	updated.PreferredLearningStyle = classifyLearningStyle(visual, auditory, kinesthetic)
	updated.ConceptualUnderstanding = levelOf(meanComplexity(userMessages))
	updated.AverageSessionDuration = float64(totalWords) / float64(len(userMessages))
	updated.TotalInteractions = prior.TotalInteractions + len(interactions)
	updated.LastUpdated = now.Format(time.RFC3339)
	return updated, nil
}

// classifyLearningStyle picks the strictly greatest cue count. The ladder
// order is load-bearing: visual wins only when strictly ahead of both others,
// auditory beats kinesthetic on a visual/auditory tie, and mixed appears only
// when no kinesthetic cue fired and neither earlier branch matched.
func classifyLearningStyle(visual, auditory, kinesthetic int) string {
	switch {
	case visual > auditory && visual > kinesthetic:
		return StyleVisual
	case auditory > kinesthetic:
		return StyleAuditory
	case kinesthetic > 0:
		return StyleKinesthetic
	default:
		return StyleMixed
	}
}
