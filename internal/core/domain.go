package core

import "errors"

// Conversation roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ConversationTurn is one message in a session. Histories are append-only;
// only a bounded recent window is ever consumed downstream.
type ConversationTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Learning styles.
const (
	StyleVisual      = "visual"
	StyleAuditory    = "auditory"
	StyleKinesthetic = "kinesthetic"
	StyleMixed       = "mixed"
)

// LearnerProfile is the persisted per-user document. Bounded integer fields
// stay in [1,10]; TotalInteractions never decreases.
type LearnerProfile struct {
	PreferredLearningStyle    string   `json:"preferredLearningStyle"`
	ConceptualUnderstanding   int      `json:"conceptualUnderstanding"`
	PracticalSkills           int      `json:"practicalSkills"`
	ResponseToEncouragement   int      `json:"responseToEncouragement"`
	PreferredPace             string   `json:"preferredPace"`
	PreferredExplanationDepth string   `json:"preferredExplanationDepth"`
	DifficultConcepts         []string `json:"difficultConcepts"`
	MasteredConcepts          []string `json:"masteredConcepts"`
	AverageSessionDuration    float64  `json:"averageSessionDuration,omitempty"`
	TotalInteractions         int      `json:"totalInteractions"`
	LastUpdated               string   `json:"lastUpdated,omitempty"`
}

// DefaultProfile returns the profile assumed for a learner we know nothing
// about yet.
func DefaultProfile() LearnerProfile {
	return LearnerProfile{
		PreferredLearningStyle:    StyleMixed,
		ConceptualUnderstanding:   5,
		PracticalSkills:           5,
		ResponseToEncouragement:   5,
		PreferredPace:             "medium",
		PreferredExplanationDepth: "intermediate",
	}
}

// Normalized fills zero-valued fields with the documented defaults. Requests
// may carry partial profiles; defaulting happens here, at the boundary, not
// at each use site.
func (p LearnerProfile) Normalized() LearnerProfile {
	def := DefaultProfile()
	if p.PreferredLearningStyle == "" {
		p.PreferredLearningStyle = def.PreferredLearningStyle
	}
	if p.ConceptualUnderstanding == 0 {
		p.ConceptualUnderstanding = def.ConceptualUnderstanding
	}
	if p.PracticalSkills == 0 {
		p.PracticalSkills = def.PracticalSkills
	}
	if p.ResponseToEncouragement == 0 {
		p.ResponseToEncouragement = def.ResponseToEncouragement
	}
	if p.PreferredPace == "" {
		p.PreferredPace = def.PreferredPace
	}
	if p.PreferredExplanationDepth == "" {
		p.PreferredExplanationDepth = def.PreferredExplanationDepth
	}
	return p
}

// Sentiment labels emitted by tone classification.
const (
	SentimentPositive   = "positive"
	SentimentExcited    = "excited"
	SentimentNeutral    = "neutral"
	SentimentConfused   = "confused"
	SentimentFrustrated = "frustrated"
)

// EmotionalTone describes the affect read from the most recent user message.
// Confidence stays in [0.3,0.9], Engagement in [0,1].
type EmotionalTone struct {
	Sentiment  string  `json:"sentiment"`
	Confidence float64 `json:"confidence"`
	Engagement float64 `json:"engagement"`
}

// LearningMetrics are the bounded per-turn learner-state numbers. Integer
// levels stay in [1,10].
type LearningMetrics struct {
	ComprehensionLevel int    `json:"comprehensionLevel"`
	QuestionComplexity int    `json:"questionComplexity"`
	TopicMastery       int    `json:"topicMastery"`
	NeedsReinforcement bool   `json:"needsReinforcement"`
	SuggestedNextTopic string `json:"suggestedNextTopic"`
}

// Estimate is the per-turn learner-state snapshot. It is ephemeral: produced
// alongside each chat response, never persisted by the core.
type Estimate struct {
	EmotionalTone   EmotionalTone   `json:"emotionalTone"`
	LearningMetrics LearningMetrics `json:"learningMetrics"`
}

// Error taxonomy. Input and storage errors surface to the caller; generation
// errors surface on the chat path and are recovered on the podcast path;
// estimation never fails outward at all.
var (
	ErrEmptyMessage       = errors.New("no message provided")
	ErrEmptyTopic         = errors.New("no topic provided")
	ErrNoUserInteractions = errors.New("no user interactions found")
	ErrProfileNotFound    = errors.New("learner profile not found")
)

// GenerationError wraps a failure from the external text or audio generator.
type GenerationError struct {
	Op  string
	Err error
}

func (e *GenerationError) Error() string {
	return "generation failed during " + e.Op + ": " + e.Err.Error()
}

func (e *GenerationError) Unwrap() error { return e.Err }

// UserContents extracts the contents of user-authored turns, in order.
func UserContents(history []ConversationTurn) []string {
	var out []string
	for _, t := range history {
		if t.Role == RoleUser {
			out = append(out, t.Content)
		}
	}
	return out
}
