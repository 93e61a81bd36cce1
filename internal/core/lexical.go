package core

import "strings"

// Lexical feature extraction: every signal below is a transparent linear
// combination of countable features from fixed vocabularies, so behavior is
// reproducible from literal strings.

// Domain vocabulary counted as whole tokens when scoring complexity.
var domainTerms = []string{"algorithm", "neural", "model", "training", "deep", "learning"}

// Enthusiasm terms counted as substring occurrences when scoring engagement.
var enthusiasmTerms = []string{"interesting", "cool", "amazing", "great", "awesome"}

// Tone lexicons, checked by substring presence.
var (
	positiveTerms = []string{"excited", "great", "awesome", "love", "amazing", "fantastic"}
	negativeTerms = []string{"confused", "frustrated", "difficult", "hard", "stuck", "lost"}
	questionTerms = []string{"what", "how", "why", "when", "where"}
)

// Ordered topic catalog scanned for next-topic suggestions. The order is a
// deliberate tie-break; do not reorder.
var topicCatalog = []string{
	"Neural Networks", "Deep Learning", "Machine Learning Algorithms",
	"Natural Language Processing", "Computer Vision", "Reinforcement Learning",
	"Data Preprocessing", "Model Evaluation", "Transfer Learning", "Transformers",
}

// QuestionComplexity scores a single message in [0,1] from word count,
// question marks, and domain-term hits.
func QuestionComplexity(text string) float64 {
	words := len(strings.Fields(text))
	questionMarks := strings.Count(text, "?")

	technical := 0
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		for _, term := range domainTerms {
			if tok == term {
				technical++
			}
		}
	}

	score := float64(words)/20 + float64(questionMarks)*0.2 + float64(technical)*0.3
	return min(1.0, score)
}

// EngagementScore blends mean message length with the enthusiasm-term
// occurrence rate, in [0,1]. An empty window reads as neutral 0.5, never
// zero: missing data is not disengagement.
func EngagementScore(messages []string) float64 {
	if len(messages) == 0 {
		return 0.5
	}

	totalWords := 0
	enthusiasm := 0
	for _, msg := range messages {
		totalWords += len(strings.Fields(msg))
		lower := strings.ToLower(msg)
		for _, term := range enthusiasmTerms {
			enthusiasm += strings.Count(lower, term)
		}
	}

	meanWords := float64(totalWords) / float64(len(messages))
	score := meanWords/15 + float64(enthusiasm)/float64(len(messages))*0.2
	return min(1.0, score)
}

// ClassifyTone votes over the tone lexicons with a fixed tie-break order:
// any negative hit wins (frustrated if the literal word is present, else
// confused), then positive (excited if literal, else positive), then
// question indicators (confused only for long messages), else neutral.
func ClassifyTone(text string) EmotionalTone {
	lower := strings.ToLower(text)
	words := len(strings.Fields(text))

	positives := countPresent(lower, positiveTerms)
	negatives := countPresent(lower, negativeTerms)
	questions := countPresent(lower, questionTerms)

	var sentiment string
	switch {
	case negatives > 0:
		if strings.Contains(lower, "frustrated") {
			sentiment = SentimentFrustrated
		} else {
			sentiment = SentimentConfused
		}
	case positives > 0:
		if strings.Contains(lower, "excited") {
			sentiment = SentimentExcited
		} else {
			sentiment = SentimentPositive
		}
	case questions > 0:
		if words > 15 {
			sentiment = SentimentConfused
		} else {
			sentiment = SentimentNeutral
		}
	default:
		sentiment = SentimentNeutral
	}

	return EmotionalTone{
		Sentiment:  sentiment,
		Confidence: clamp(0.3, 0.9, float64(positives+negatives+questions)/10),
		Engagement: min(1.0, float64(words)/20),
	}
}

func countPresent(lower string, terms []string) int {
	n := 0
	for _, term := range terms {
		if strings.Contains(lower, term) {
			n++
		}
	}
	return n
}

func clamp(lo, hi, v float64) float64 {
	return max(lo, min(hi, v))
}

// levelOf converts a [0,1] score to an integer level in [1,10], truncating
// the scaled value before clamping.
func levelOf(score float64) int {
	return max(1, min(10, int(score*10)))
}

func meanComplexity(messages []string) float64 {
	if len(messages) == 0 {
		return 0.5
	}
	sum := 0.0
	for _, msg := range messages {
		sum += QuestionComplexity(msg)
	}
	return sum / float64(len(messages))
}
