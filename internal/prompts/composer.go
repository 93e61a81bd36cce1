package prompts

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/profai/profai-backend/internal/core"
)

const defaultLanguage = "English"

// Composer renders instruction text for the external generator from a profile
// and recent history. It is pure string templating: it never calls the
// generator and never parses its output. A single instance is shared across
// handlers; it carries no state.
type Composer struct{}

func NewComposer() *Composer {
	return &Composer{}
}

// Chat builds the personalized tutor system prompt for a single-answer turn.
func (c *Composer) Chat(profile core.LearnerProfile, history []core.ConversationTurn, languageName string) string {
	recent := lastTurns(history, 6)

	var b strings.Builder
	b.WriteString("You are ProfAI, an emotionally intelligent AI professor specializing in AI and machine learning education.\n\n")

	if languageName != "" && languageName != defaultLanguage {
		fmt.Fprintf(&b, "IMPORTANT: Respond entirely in %s. Do not use any other language.\n\n", languageName)
	}

	fmt.Fprintf(&b, `Student Learning Profile:
- Learning Style: %s
- Conceptual Understanding: %d/10
- Practical Skills: %d/10
- Preferred Pace: %s
- Explanation Depth: %s
- Response to Encouragement: %d/10
- Difficult Concepts: %s
- Mastered Concepts: %s
- Total Interactions: %d

`,
		profile.PreferredLearningStyle,
		profile.ConceptualUnderstanding,
		profile.PracticalSkills,
		profile.PreferredPace,
		profile.PreferredExplanationDepth,
		profile.ResponseToEncouragement,
		strings.Join(profile.DifficultConcepts, ", "),
		strings.Join(profile.MasteredConcepts, ", "),
		profile.TotalInteractions,
	)

	fmt.Fprintf(&b, `Teaching Adaptations:
1. Learning Style: %s

2. Pacing: %s

3. Encouragement: %s

4. Depth: Explain concepts at %s level

5. Build on mastered concepts and provide extra support for difficult ones

Conversation Context: %s

Your personality: Enthusiastic, patient, adaptive, and genuinely excited about helping students learn AI.
Make learning engaging and fun while being academically rigorous.`,
		styleClause(profile.PreferredLearningStyle),
		paceClause(profile.PreferredPace),
		encouragementClause(profile.ResponseToEncouragement),
		profile.PreferredExplanationDepth,
		contextJSON(recent, 3),
	)

	return b.String()
}

func styleClause(style string) string {
	switch style {
	case core.StyleVisual:
		return "Use visual analogies, diagrams, and step-by-step breakdowns"
	case core.StyleAuditory:
		return "Use verbal explanations, audio metaphors, and spoken examples"
	case core.StyleKinesthetic:
		return "Use hands-on examples, interactive elements, and practical applications"
	default:
		return "Use a balanced mix of visual, auditory, and hands-on approaches"
	}
}

func paceClause(pace string) string {
	switch pace {
	case "slow":
		return "Take extra time to explain each concept thoroughly with multiple examples"
	case "fast":
		return "Be concise but comprehensive, cover topics efficiently"
	default:
		return "Balance detail with efficiency, moderate pacing"
	}
}

func encouragementClause(level int) string {
	switch {
	case level > 7:
		return "Use plenty of positive reinforcement and celebrate progress"
	case level < 4:
		return "Focus on direct, matter-of-fact explanations without excessive praise"
	default:
		return "Use moderate encouragement and supportive language"
	}
}

// Podcast builds the two-speaker script prompt. Follow-up turns (non-empty
// history) get a shorter exchange target than an opening turn.
func (c *Composer) Podcast(topic string, history []core.ConversationTurn, languageName string) string {
	if languageName == "" {
		languageName = defaultLanguage
	}

	exchanges := "6-9"
	if len(history) > 0 {
		exchanges = "4-6"
	}

	var b strings.Builder
	fmt.Fprintf(&b, `You are creating a script for an engaging educational podcast in %[1]s. Respond entirely in %[1]s.

PODCAST SETUP:
- 2 AI experts having a natural, conversational discussion in %[1]s
- Sarah: AI researcher (warm, analytical, breaks down concepts with empathy)
- Marcus: Tech journalist (engaging, practical, connects theory to real-world applications)

CONVERSATION STYLE in %[1]s:
- Natural, flowing conversation like a real podcast between two colleagues
- Each speaker has 2-4 turns (25-50 words each)
- Include natural speech: "Well...", "Actually...", "That's interesting...", "You know what..."
- Build on each other's points naturally
- Ask follow-up questions and show genuine curiosity
- Use relatable analogies and examples
- Keep it engaging and educational
- Show genuine enthusiasm and interest in the topic
- Create a back-and-forth dynamic that feels like listening to real experts

`, languageName)

	if languageName != defaultLanguage {
		fmt.Fprintf(&b, "IMPORTANT: Respond entirely in %s. Do not mix languages.\n\n", languageName)
	}

	fmt.Fprintf(&b, `FORMAT YOUR RESPONSE AS JSON:
{
  "speakers": [
    {"speaker": "sarah", "text": "Response in %[1]s..."},
    {"speaker": "marcus", "text": "Response in %[1]s..."}
  ],
  "topic_summary": "Brief summary in %[1]s"
}

Output raw JSON only. No markdown code fences. No text before or after the JSON.

TOPIC: %[2]s
LANGUAGE: %[1]s
CONVERSATION CONTEXT: %[3]s

Create an engaging conversation (%[4]s total exchanges) entirely in %[1]s that educates about this topic.`,
		languageName, topic, turnsJSON(lastTurns(history, 2)), exchanges)

	return b.String()
}

// contextJSON renders the contents of the last n turns of the window as a
// JSON string array.
func contextJSON(turns []core.ConversationTurn, n int) string {
	turns = lastTurns(turns, n)
	contents := make([]string, 0, len(turns))
	for _, t := range turns {
		contents = append(contents, t.Content)
	}
	out, err := sonic.MarshalString(contents)
	if err != nil {
		return "[]"
	}
	return out
}

func turnsJSON(turns []core.ConversationTurn) string {
	if len(turns) == 0 {
		return "[]"
	}
	out, err := sonic.MarshalString(turns)
	if err != nil {
		return "[]"
	}
	return out
}

func lastTurns(turns []core.ConversationTurn, n int) []core.ConversationTurn {
	if len(turns) > n {
		return turns[len(turns)-n:]
	}
	return turns
}
