package api

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/profai/profai-backend/internal/core"
	"github.com/profai/profai-backend/internal/kafka"
	"github.com/profai/profai-backend/internal/logger"
	"github.com/profai/profai-backend/internal/prompts"
	"github.com/profai/profai-backend/internal/script"
)

// Generator is the external text-generation boundary.
type Generator interface {
	Complete(ctx context.Context, systemPrompt string, history []core.ConversationTurn, message string) (string, error)
	CompleteScript(ctx context.Context, systemPrompt, topic string) (string, error)
	Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error)
}

// Synthesizer is the external speech-synthesis boundary.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voiceID string) ([]byte, error)
}

// ProfileStore is the persistence boundary for learner profiles.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (core.LearnerProfile, error)
	SaveProfile(ctx context.Context, userID string, profile core.LearnerProfile) error
}

// Publisher emits interaction events for asynchronous profile refresh.
type Publisher interface {
	Publish(ctx context.Context, event kafka.InteractionEvent) error
}

// Services reports which external collaborators are configured, for /api/health.
type Services struct {
	OpenAI     bool `json:"openai"`
	ElevenLabs bool `json:"elevenlabs"`
	Kafka      bool `json:"kafka"`
}

type Handler struct {
	log      *logger.Logger
	store    ProfileStore
	analyzer *core.Analyzer
	composer *prompts.Composer
	post     *script.PostProcessor
	gen      Generator
	synth    Synthesizer
	producer Publisher
	services Services
}

func NewHandler(
	log *logger.Logger,
	store ProfileStore,
	analyzer *core.Analyzer,
	composer *prompts.Composer,
	post *script.PostProcessor,
	gen Generator,
	synth Synthesizer,
	producer Publisher,
	services Services,
) *Handler {
	return &Handler{
		log:      log,
		store:    store,
		analyzer: analyzer,
		composer: composer,
		post:     post,
		gen:      gen,
		synth:    synth,
		producer: producer,
		services: services,
	}
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type ChatRequest struct {
	Message             string                  `json:"message"`
	UserID              string                  `json:"userId"`
	LearningProfile     core.LearnerProfile     `json:"learningProfile"`
	ConversationHistory []core.ConversationTurn `json:"conversationHistory"`
	SystemPrompt        string                  `json:"systemPrompt"`
	Language            string                  `json:"language"`
	LanguageName        string                  `json:"languageName"`
}

type ChatResponse struct {
	Type            string               `json:"type"`
	Response        string               `json:"response"`
	Language        string               `json:"language"`
	LanguageName    string               `json:"language_name"`
	AudioURL        *string              `json:"audioUrl"`
	EmotionalTone   core.EmotionalTone   `json:"emotionalTone"`
	LearningMetrics core.LearningMetrics `json:"learningMetrics"`
}

// Chat handles one tutoring turn: compose prompt, call the generator,
// estimate learner state, and fire the interaction event for async profile
// refresh. Accepts JSON, or multipart form with an optional audio file that
// is transcribed into the message.
func (h *Handler) Chat(c *gin.Context) {
	req, err := h.parseChatRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}
	if req.Message == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: core.ErrEmptyMessage.Error()})
		return
	}
	if req.Language == "" {
		req.Language = "en-US"
	}
	if req.LanguageName == "" {
		req.LanguageName = "English"
	}

	profile := req.LearningProfile.Normalized()

	systemPrompt := req.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = h.composer.Chat(profile, req.ConversationHistory, req.LanguageName)
	}

	reply, err := h.gen.Complete(c.Request.Context(), systemPrompt, req.ConversationHistory, req.Message)
	if err != nil {
		// No safe fallback text exists for the chat path; surface it.
		h.log.Error("chat generation failed", "error", err)
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "Failed to generate response"})
		return
	}

	estimate := h.analyzer.Estimate(
		append(append([]core.ConversationTurn{}, req.ConversationHistory...),
			core.ConversationTurn{Role: core.RoleUser, Content: req.Message}),
		profile,
	)

	h.publishInteraction(req.UserID, req.Message, reply)

	c.JSON(http.StatusOK, ChatResponse{
		Type:            "single",
		Response:        reply,
		Language:        req.Language,
		LanguageName:    req.LanguageName,
		AudioURL:        nil,
		EmotionalTone:   estimate.EmotionalTone,
		LearningMetrics: estimate.LearningMetrics,
	})
}

// parseChatRequest reads either a JSON body or a multipart form. A multipart
// "audio" file is transcribed and replaces the message field, mirroring the
// voice-input flow.
func (h *Handler) parseChatRequest(c *gin.Context) (ChatRequest, error) {
	var req ChatRequest

	if !strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		err := c.ShouldBindJSON(&req)
		return req, err
	}

	req.Message = c.PostForm("message")
	req.UserID = c.PostForm("userId")
	req.SystemPrompt = c.PostForm("systemPrompt")
	req.Language = c.PostForm("language")
	req.LanguageName = c.PostForm("languageName")
	if raw := c.PostForm("learningProfile"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.LearningProfile); err != nil {
			return req, err
		}
	}
	if raw := c.PostForm("conversationHistory"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.ConversationHistory); err != nil {
			return req, err
		}
	}

	file, err := c.FormFile("audio")
	if err != nil {
		return req, nil // no audio attached
	}
	f, err := file.Open()
	if err != nil {
		return req, err
	}
	defer f.Close()

	text, err := h.gen.Transcribe(c.Request.Context(), file.Filename, f)
	if err != nil {
		h.log.Warn("audio transcription failed, keeping text message", "error", err)
		return req, nil
	}
	if text != "" {
		req.Message = text
	}
	return req, nil
}

func (h *Handler) publishInteraction(userID, message, reply string) {
	if h.producer == nil || userID == "" {
		return
	}
	event := kafka.InteractionEvent{
		UserID: userID,
		Interactions: []core.ConversationTurn{
			{Role: core.RoleUser, Content: message},
			{Role: core.RoleAssistant, Content: reply},
		},
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.producer.Publish(ctx, event); err != nil {
			h.log.Warn("failed to publish interaction event", "userId", userID, "error", err)
		}
	}()
}

type UpdateProfileRequest struct {
	UserID       string                  `json:"userId"`
	Interactions []core.ConversationTurn `json:"interactions"`
}

// UpdateLearningProfile is the synchronous profile refresh: read the stored
// profile, fold in the batch, write it back, return the merged document.
func (h *Handler) UpdateLearningProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}
	if req.UserID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "userId is required"})
		return
	}

	prior, err := h.store.GetProfile(c.Request.Context(), req.UserID)
	if err != nil {
		if errors.Is(err, core.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "User not found"})
			return
		}
		h.log.Error("failed to load profile", "userId", req.UserID, "error", err)
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "Profile store unavailable"})
		return
	}

	updated, err := core.UpdateProfile(prior, req.Interactions, time.Now())
	if err != nil {
		if errors.Is(err, core.ErrNoUserInteractions) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "No user interactions found"})
			return
		}
		h.log.Error("profile update failed", "userId", req.UserID, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to update learning profile"})
		return
	}

	if err := h.store.SaveProfile(c.Request.Context(), req.UserID, updated); err != nil {
		h.log.Error("failed to save profile", "userId", req.UserID, "error", err)
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "Profile store unavailable"})
		return
	}

	c.JSON(http.StatusOK, updated)
}

type PodcastRequest struct {
	Message             string                  `json:"message"`
	Topic               string                  `json:"topic"`
	ConversationHistory []core.ConversationTurn `json:"conversationHistory"`
	Language            string                  `json:"language"`
	LanguageName        string                  `json:"languageName"`
}

type PodcastSegment struct {
	Speaker     string  `json:"speaker"`
	Text        string  `json:"text"`
	AudioData   *string `json:"audio_data"`
	VoiceID     string  `json:"voice_id"`
	Personality string  `json:"personality"`
	Language    string  `json:"language"`
}

type PodcastResponse struct {
	Type           string           `json:"type"`
	Topic          string           `json:"topic"`
	Language       string           `json:"language"`
	LanguageName   string           `json:"language_name"`
	Summary        string           `json:"summary"`
	Segments       []PodcastSegment `json:"segments"`
	FullTranscript string           `json:"full_transcript"`
	SpeakersCount  int              `json:"speakers_count"`
	TotalSegments  int              `json:"total_segments"`
}

// Podcast renders the topic as a scripted two-speaker episode. Script
// generation failures are recovered with the fallback script; synthesis
// failures leave audio_data null for the affected segment only.
func (h *Handler) Podcast(c *gin.Context) {
	var req PodcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	topic := req.Message
	if topic == "" {
		topic = req.Topic
	}
	if topic == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: core.ErrEmptyTopic.Error()})
		return
	}
	if req.Language == "" {
		req.Language = "en-US"
	}
	if req.LanguageName == "" {
		req.LanguageName = "English"
	}

	h.log.Info("creating podcast", "topic", topic, "language", req.LanguageName)

	prompt := h.composer.Podcast(topic, req.ConversationHistory, req.LanguageName)

	var dialogue script.DialogueScript
	raw, err := h.gen.CompleteScript(c.Request.Context(), prompt, topic)
	if err != nil {
		h.log.Warn("script generation failed, using fallback script", "topic", topic, "error", err)
		dialogue = script.FallbackScript(topic)
	} else {
		dialogue = h.post.Normalize(raw, topic)
	}

	resolved := h.post.Resolve(dialogue)

	segments := make([]PodcastSegment, 0, len(resolved))
	for _, turn := range resolved {
		var audioHex *string
		audio, err := h.synth.Synthesize(c.Request.Context(), turn.Text, turn.Voice.VoiceID)
		if err != nil {
			h.log.Warn("synthesis failed for segment", "speaker", turn.Voice.Name, "error", err)
		} else if len(audio) > 0 {
			encoded := hex.EncodeToString(audio)
			audioHex = &encoded
		}

		segments = append(segments, PodcastSegment{
			Speaker:     turn.Voice.Name,
			Text:        turn.Text,
			AudioData:   audioHex,
			VoiceID:     turn.Voice.VoiceID,
			Personality: turn.Voice.Personality,
			Language:    req.Language,
		})
	}

	c.JSON(http.StatusOK, PodcastResponse{
		Type:           "podcast",
		Topic:          topic,
		Language:       req.Language,
		LanguageName:   req.LanguageName,
		Summary:        dialogue.TopicSummary,
		Segments:       segments,
		FullTranscript: script.Transcript(resolved),
		SpeakersCount:  len(segments),
		TotalSegments:  len(segments),
	})
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"services":  h.services,
	})
}

func (h *Handler) Home(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "ProfAI Tutoring Backend API",
		"status":  "running",
		"endpoints": gin.H{
			"health":  "/api/health",
			"chat":    "/api/chat (POST)",
			"podcast": "/api/podcast (POST)",
			"profile": "/api/learning-profile/update (POST)",
		},
	})
}
