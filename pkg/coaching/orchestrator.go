package coaching

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"

	"github.com/balanshq/balans/pkg/ai"
	v1 "github.com/balanshq/balans/pkg/apis/coaching/v1"
	"github.com/balanshq/balans/pkg/db/models"
)

var (
	turnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "balans_turns_total",
		Help: "Coaching turns by terminal outcome (completed, crisis, quota_exceeded, upstream_error, disconnect, internal_error)",
	}, []string{"outcome"})
	turnDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "balans_turn_duration_seconds",
		Help:    "End to end duration of a coaching turn",
		Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
	})
	safetyLevelTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "balans_safety_level_total",
		Help: "Messages by classified safety level",
	}, []string{"level"})
	commitmentsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "balans_commitments_created_total",
		Help: "Micro-commitments extracted from assistant turns",
	})
)

// ErrEmptyMessage and ErrMessageTooLong reject malformed input before any
// state change.
var (
	ErrEmptyMessage   = errors.New("message must not be empty")
	ErrMessageTooLong = errors.New("message exceeds maximum length")
)

// persistTimeout bounds the best-effort writes that happen after the event
// stream has already settled (and possibly after the caller disconnected).
const persistTimeout = 10 * time.Second

// ConversationStore is the subset of the conversation store the turn loop
// needs.
type ConversationStore interface {
	GetOrCreate(ctx context.Context, userID, conversationID string) (*models.Conversation, bool, error)
	AppendMessage(ctx context.Context, conversationID uuid.UUID, userID string, msg models.StoredMessage) error
	MergeTopics(ctx context.Context, conversationID uuid.UUID, userID string, topics []string) error
	Rename(ctx context.Context, conversationID uuid.UUID, userID, title string) error
}

// CommitmentStore is the subset of the commitment store the turn loop needs.
type CommitmentStore interface {
	Create(ctx context.Context, userID string, conversationID uuid.UUID, ext v1.ExtractedCommitment, topic string) (*models.Commitment, error)
	DueFollowups(ctx context.Context, userID string) ([]models.Commitment, error)
	RecordFollowup(ctx context.Context, id uuid.UUID) error
}

// QuotaTracker checks and consumes the per-user daily exchange budget.
type QuotaTracker interface {
	CheckAllowed(ctx context.Context, userID string) (bool, error)
	Increment(ctx context.Context, userID string) error
}

// ProfileProvider supplies the read-only user context for prompt building.
type ProfileProvider interface {
	Summary(ctx context.Context, userID string) (*v1.ProfileSummary, error)
}

// Orchestrator executes one coaching turn: quota check, safety check,
// context build, streamed model call, finalization, and the ordered event
// stream back to the caller. All collaborators are injected.
type Orchestrator struct {
	conversations ConversationStore
	commitments   CommitmentStore
	quota         QuotaTracker
	profiles      ProfileProvider
	llm           ai.Client
}

func NewOrchestrator(
	conversationStore ConversationStore,
	commitmentStore CommitmentStore,
	quotaTracker QuotaTracker,
	profileProvider ProfileProvider,
	llmClient ai.Client,
) *Orchestrator {
	return &Orchestrator{
		conversations: conversationStore,
		commitments:   commitmentStore,
		quota:         quotaTracker,
		profiles:      profileProvider,
		llm:           llmClient,
	}
}

// ValidateRequest rejects malformed input before any state change.
func ValidateRequest(req v1.TurnRequest) error {
	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		return ErrEmptyMessage
	}
	if utf8.RuneCountInString(req.Message) > v1.MaxMessageLength {
		return ErrMessageTooLong
	}
	return nil
}

// ExecuteTurn runs one turn and returns its ordered event stream. The
// channel is closed once the turn reaches a terminal state. Cancelling ctx
// (caller disconnect) stops the relay; accumulated text is still persisted
// as a partial message.
func (o *Orchestrator) ExecuteTurn(ctx context.Context, req v1.TurnRequest) <-chan v1.TurnEvent {
	out := make(chan v1.TurnEvent, 8)
	go o.run(ctx, req, out)
	return out
}

func (o *Orchestrator) run(ctx context.Context, req v1.TurnRequest, out chan<- v1.TurnEvent) {
	defer close(out)

	start := time.Now()
	outcome := "internal_error"
	defer func() {
		turnsTotal.WithLabelValues(outcome).Inc()
		turnDuration.Observe(time.Since(start).Seconds())
	}()

	tLog := log.WithField("user", req.UserID)
	language := req.Language
	if language != v1.LanguageSwedish {
		language = v1.LanguageEnglish
	}

	if err := ValidateRequest(req); err != nil {
		o.emitError(ctx, out, err.Error(), false)
		o.emit(ctx, out, v1.TurnEvent{Type: v1.EventTypeDone})
		outcome = "validation_error"
		return
	}

	// QuotaCheck happens before any other work: no model call, no
	// persistence on the exhausted path.
	allowed, err := o.quota.CheckAllowed(ctx, req.UserID)
	if err != nil {
		tLog.WithError(err).Error("could not check quota")
		o.emitError(ctx, out, "The coach is temporarily unavailable. Please try again.", true)
		o.emit(ctx, out, v1.TurnEvent{Type: v1.EventTypeDone})
		return
	}
	if !allowed {
		o.emitError(ctx, out, "You have reached today's coaching limit. Your exchanges reset at midnight UTC.", false)
		o.emit(ctx, out, v1.TurnEvent{Type: v1.EventTypeDone})
		outcome = "quota_exceeded"
		return
	}

	o.emit(ctx, out, v1.TurnEvent{Type: v1.EventTypeMetadata, Model: o.llm.ModelName()})

	// SafetyCheck is deterministic and runs before any external call.
	level := ClassifySafety(req.Message)
	safetyLevelTotal.WithLabelValues(level.String()).Inc()
	if level == SafetyLevelCrisis {
		tLog.Warn("crisis level message, short-circuiting turn")
		o.emit(ctx, out, v1.TurnEvent{Type: v1.EventTypeText, Content: CrisisResponse(language)})
		o.emit(ctx, out, v1.TurnEvent{Type: v1.EventTypeMetadata, Metadata: &v1.TurnMetadata{
			ConversationID: req.ConversationID,
			Topics:         []string{},
			SafetyLevel:    int(level),
		}})
		o.emit(ctx, out, v1.TurnEvent{Type: v1.EventTypeDone})
		outcome = "crisis"
		return
	}

	conv, created, err := o.conversations.GetOrCreate(ctx, req.UserID, req.ConversationID)
	if err != nil {
		tLog.WithError(err).Error("could not resolve conversation")
		o.emitError(ctx, out, "The coach is temporarily unavailable. Please try again.", true)
		o.emit(ctx, out, v1.TurnEvent{Type: v1.EventTypeDone})
		return
	}
	tLog = tLog.WithField("conversation", conv.ID)

	history, err := conv.StoredMessages()
	if err != nil {
		tLog.WithError(err).Error("could not decode conversation history")
		history = nil
	}

	// Due follow-ups are fetched before the user's message is appended so
	// a commitment resurfaced this turn is not re-selected by this call.
	due, err := o.commitments.DueFollowups(ctx, req.UserID)
	if err != nil {
		tLog.WithError(err).Warn("could not fetch due follow-ups, continuing without")
		due = nil
	}

	profileSummary, err := o.profiles.Summary(ctx, req.UserID)
	if err != nil {
		tLog.WithError(err).Warn("could not fetch profile summary, continuing without")
		profileSummary = nil
	}

	// The user message is persisted regardless of whether streaming
	// ultimately succeeds.
	userMsg := models.StoredMessage{
		Role:      models.MessageRoleUser,
		Content:   req.Message,
		Timestamp: time.Now().UTC(),
	}
	if err := o.conversations.AppendMessage(ctx, conv.ID, req.UserID, userMsg); err != nil {
		tLog.WithError(err).Error("could not persist user message")
		o.emitError(ctx, out, "The coach is temporarily unavailable. Please try again.", true)
		o.emit(ctx, out, v1.TurnEvent{Type: v1.EventTypeDone})
		return
	}

	dueInputs := make([]v1.DueCommitment, 0, len(due))
	for i := range due {
		dueInputs = append(dueInputs, due[i].Due())
	}
	systemPrompt := BuildSystemPrompt(v1.ContextBuildInput{
		Profile:        profileSummary,
		DueCommitments: dueInputs,
		SafetyLevel:    int(level),
		Language:       language,
	})

	chatHistory := make([]v1.ChatMessage, 0, len(history)+1)
	for _, m := range history {
		chatHistory = append(chatHistory, v1.ChatMessage{Role: m.Role, Content: m.Content})
	}
	chatHistory = append(chatHistory, v1.ChatMessage{Role: v1.ChatRoleUser, Content: req.Message})

	stream, err := o.llm.ChatStream(ctx, systemPrompt, chatHistory)
	if err != nil {
		tLog.WithError(err).Error("could not start model stream")
		o.emitError(ctx, out, "The coach could not respond. Please try again.", ai.Retryable(err))
		o.emit(ctx, out, v1.TurnEvent{Type: v1.EventTypeDone})
		outcome = "upstream_error"
		return
	}
	defer stream.Close()

	// Streaming: relay each fragment immediately, accumulate for
	// post-processing. A failed emit means the caller went away.
	var buf strings.Builder
	disconnected := false
	for stream.Next() {
		fragment := stream.Current()
		buf.WriteString(fragment)
		if !o.emit(ctx, out, v1.TurnEvent{Type: v1.EventTypeText, Content: fragment}) {
			disconnected = true
			break
		}
	}

	streamErr := stream.Err()
	switch {
	case disconnected || ctx.Err() != nil:
		// The caller is gone: no events are visible, but accumulated
		// text is still persisted, and a turn that consumed model
		// output consumes quota.
		tLog.WithField("accumulated", buf.Len()).Info("caller disconnected mid-stream")
		o.persistPartial(conv, req.UserID, buf.String())
		if buf.Len() > 0 {
			o.incrementQuota(req.UserID, tLog)
		}
		outcome = "disconnect"
		return

	case streamErr != nil:
		tLog.WithError(streamErr).Error("model stream failed")
		o.persistPartial(conv, req.UserID, buf.String())
		o.emitError(ctx, out, "The coach was interrupted. Please try again.", ai.Retryable(streamErr))
		o.emit(ctx, out, v1.TurnEvent{Type: v1.EventTypeDone})
		outcome = "upstream_error"
		return
	}

	// Finalize: reached only on a clean end-of-stream. Everything below is
	// best-effort; the reply has already been delivered.
	reply := buf.String()
	pCtx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	topics := DetectTopics(req.Message + "\n" + reply)
	if err := o.conversations.MergeTopics(pCtx, conv.ID, req.UserID, topics); err != nil {
		tLog.WithError(err).Warn("could not merge conversation topics")
	}

	var commitmentSummary *v1.CommitmentSummary
	if ext := ExtractCommitment(reply); ext != nil {
		topic := "general"
		if len(topics) > 0 {
			topic = topics[0]
		}
		cm, err := o.commitments.Create(pCtx, req.UserID, conv.ID, *ext, topic)
		if err != nil {
			tLog.WithError(err).Warn("could not create commitment")
		} else {
			commitmentSummary = cm.Summary()
			commitmentsCreated.Inc()
		}
	}

	assistantMsg := models.StoredMessage{
		Role:      models.MessageRoleAssistant,
		Content:   StripCommitmentMarker(reply),
		Timestamp: time.Now().UTC(),
	}
	if len(topics) > 0 || commitmentSummary != nil {
		assistantMsg.Metadata = &models.MessageMetadata{
			Topics:     topics,
			Commitment: commitmentSummary,
		}
	}
	if err := o.conversations.AppendMessage(pCtx, conv.ID, req.UserID, assistantMsg); err != nil {
		tLog.WithError(err).Error("could not persist assistant message")
	}

	for i := range due {
		if err := o.commitments.RecordFollowup(pCtx, due[i].ID); err != nil {
			tLog.WithError(err).WithField("commitment", due[i].ID).Warn("could not record follow-up")
		}
	}

	o.incrementQuota(req.UserID, tLog)

	if topics == nil {
		topics = []string{}
	}

	if quickReplies := QuickReplies(topics, language); len(quickReplies) > 0 {
		o.emit(ctx, out, v1.TurnEvent{Type: v1.EventTypeQuickReplies, QuickReplies: quickReplies})
	}

	o.emit(ctx, out, v1.TurnEvent{Type: v1.EventTypeMetadata, Metadata: &v1.TurnMetadata{
		ConversationID: conv.ID.String(),
		Topics:         topics,
		Commitment:     commitmentSummary,
		SafetyLevel:    int(level),
	}})
	o.emit(ctx, out, v1.TurnEvent{Type: v1.EventTypeDone})
	outcome = "completed"

	// Naming makes a second model round-trip; the terminal events must
	// already be on the channel before it starts.
	if created {
		o.nameConversation(pCtx, conv, req, tLog)
	}
}

// emit delivers an event unless the caller has gone away.
func (o *Orchestrator) emit(ctx context.Context, out chan<- v1.TurnEvent, ev v1.TurnEvent) bool {
	select {
	case out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func (o *Orchestrator) emitError(ctx context.Context, out chan<- v1.TurnEvent, message string, retryable bool) {
	o.emit(ctx, out, v1.TurnEvent{
		Type:      v1.EventTypeError,
		Content:   message,
		Retryable: &retryable,
	})
}

// persistPartial saves whatever text accumulated before the stream broke,
// flagged as partial. Persisting nothing for an empty buffer keeps the
// conversation free of ghost messages.
func (o *Orchestrator) persistPartial(conv *models.Conversation, userID, text string) {
	if text == "" {
		return
	}

	pCtx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	msg := models.StoredMessage{
		Role:      models.MessageRoleAssistant,
		Content:   text,
		Timestamp: time.Now().UTC(),
		Metadata:  &models.MessageMetadata{Partial: true},
	}
	if err := o.conversations.AppendMessage(pCtx, conv.ID, userID, msg); err != nil {
		log.WithError(err).WithField("conversation", conv.ID).Error("could not persist partial assistant message")
	}
}

func (o *Orchestrator) incrementQuota(userID string, tLog *log.Entry) {
	pCtx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := o.quota.Increment(pCtx, userID); err != nil {
		// Logged for offline reconciliation; the stream has already
		// completed, so this must not surface to the caller.
		tLog.WithError(err).Error("could not increment quota counter")
	}
}

// nameConversation gives a brand-new conversation a short title, asking the
// model first and falling back to a truncation of the opening message.
func (o *Orchestrator) nameConversation(ctx context.Context, conv *models.Conversation, req v1.TurnRequest, tLog *log.Entry) {
	const titlePrompt = `Produce a title of at most five words for a coaching conversation that opens with the user message below. Reply with the title only, no quotes.`

	title, err := o.llm.Chat(ctx, titlePrompt, []v1.ChatMessage{{Role: v1.ChatRoleUser, Content: req.Message}})
	title = strings.TrimSpace(strings.Trim(strings.TrimSpace(title), `"`))
	if err != nil || title == "" {
		tLog.WithError(err).Debug("title generation failed, falling back to truncation")
		title = truncate(strings.TrimSpace(req.Message), 60)
	}

	if err := o.conversations.Rename(ctx, conv.ID, req.UserID, title); err != nil {
		tLog.WithError(err).Warn("could not set conversation title")
	}
}

func (l SafetyLevel) String() string {
	switch l {
	case SafetyLevelSoft:
		return "soft"
	case SafetyLevelReferral:
		return "referral"
	case SafetyLevelCrisis:
		return "crisis"
	default:
		return "none"
	}
}
