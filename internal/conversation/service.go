package conversation

import (
	"context"
	"fmt"
	"time"

	"github.com/clinicdesk/booking-ai/internal/assistant"
	"github.com/clinicdesk/booking-ai/internal/booking"
	"github.com/clinicdesk/booking-ai/internal/chat"
	"github.com/clinicdesk/booking-ai/internal/observability/metrics"
	"github.com/clinicdesk/booking-ai/internal/session"
	"github.com/clinicdesk/booking-ai/pkg/logging"
)

// FallbackReply is returned whenever response generation fails. The turn is
// not treated as a hard error and the session state is left untouched.
const FallbackReply = "I apologize, but I'm having trouble processing your request right now. Please try again."

const (
	defaultHistoryLimit = 5
	defaultLLMTimeout   = 30 * time.Second
	defaultMaxTokens    = 1024
	defaultTemperature  = 0.7
)

// TurnResult is the outcome of one processed user message.
type TurnResult struct {
	SessionID   string              `json:"session_id"`
	MessageID   string              `json:"message_id"`
	UserMessage string              `json:"user_message"`
	Reply       string              `json:"assistant_response"`
	CurrentStep booking.Step        `json:"current_step"`
	PatientInfo booking.PatientInfo `json:"patient_info"`
	Status      session.Status      `json:"session_status"`
	Timestamp   time.Time           `json:"timestamp"`
}

// History is a session transcript together with the booking state it
// produced.
type History struct {
	SessionID     string              `json:"session_id"`
	Messages      []chat.Message      `json:"messages"`
	TotalMessages int                 `json:"total_messages"`
	CurrentStep   booking.Step        `json:"current_step"`
	PatientInfo   booking.PatientInfo `json:"patient_info"`
	Status        session.Status      `json:"session_status"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// ServiceOption configures optional Service behavior.
type ServiceOption func(*Service)

// WithHistoryLimit bounds how many prior messages are replayed into the
// prompt context on each turn.
func WithHistoryLimit(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.historyLimit = n
		}
	}
}

// WithLLMTimeout bounds how long a single generation call may run.
func WithLLMTimeout(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.llmTimeout = d
		}
	}
}

// WithGeneration sets the model id and sampling parameters passed to the
// generation client on every turn.
func WithGeneration(modelID string, maxTokens int32, temperature float32) ServiceOption {
	return func(s *Service) {
		s.modelID = modelID
		if maxTokens > 0 {
			s.maxTokens = maxTokens
		}
		if temperature >= 0 {
			s.temperature = temperature
		}
	}
}

// WithMetrics attaches turn/latency/cleanup instrumentation.
func WithMetrics(m *metrics.ConversationMetrics) ServiceOption {
	return func(s *Service) {
		s.metrics = m
	}
}

// Service orchestrates one conversational booking turn: transcript append,
// prompt assembly, generation, and the deterministic step advance driven by
// the raw user text.
type Service struct {
	sessions *session.Store
	log      *chat.Log
	llm      assistant.LLMClient
	logger   *logging.Logger
	metrics  *metrics.ConversationMetrics
	locks    *sessionLocks

	modelID      string
	historyLimit int
	llmTimeout   time.Duration
	maxTokens    int32
	temperature  float32
}

// NewService wires the orchestrator. All three collaborators are required.
func NewService(sessions *session.Store, log *chat.Log, llm assistant.LLMClient, logger *logging.Logger, opts ...ServiceOption) *Service {
	if sessions == nil {
		panic("conversation: session store is required")
	}
	if log == nil {
		panic("conversation: chat log is required")
	}
	if llm == nil {
		panic("conversation: llm client is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	s := &Service{
		sessions:     sessions,
		log:          log,
		llm:          llm,
		logger:       logger.Component("conversation"),
		locks:        newSessionLocks(),
		historyLimit: defaultHistoryLimit,
		llmTimeout:   defaultLLMTimeout,
		maxTokens:    defaultMaxTokens,
		temperature:  defaultTemperature,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartSession creates a fresh active session at the greeting step.
func (s *Service) StartSession(ctx context.Context, patientEmail string, metadata map[string]any) (*session.Session, error) {
	sess, err := s.sessions.Create(ctx, patientEmail, metadata)
	if err != nil {
		return nil, err
	}
	s.logger.Info("session started", "session_id", sess.ID)
	return sess, nil
}

// Session returns the current session record, applying lazy expiry.
func (s *Service) Session(ctx context.Context, sessionID string) (*session.Session, error) {
	return s.sessions.Get(ctx, sessionID)
}

// Sessions lists sessions, optionally filtered by status.
func (s *Service) Sessions(ctx context.Context, statusFilter *session.Status) ([]*session.Session, error) {
	return s.sessions.ListAll(ctx, statusFilter)
}

// EndSession removes the session and its transcript.
func (s *Service) EndSession(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}

// ProcessMessage runs one turn. Turns on the same session serialize; the
// caller's text is always logged, even when generation fails and the fixed
// fallback reply is returned.
func (s *Service) ProcessMessage(ctx context.Context, sessionID, text string) (*TurnResult, error) {
	lock := s.locks.forSession(sessionID)
	lock.Lock()
	defer lock.Unlock()

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status != session.StatusActive {
		return nil, &NotActiveError{SessionID: sessionID, Status: sess.Status}
	}

	if _, err := s.log.Append(ctx, sessionID, chat.RoleUser, text, nil); err != nil {
		return nil, fmt.Errorf("conversation: failed to record user message: %w", err)
	}

	reply, generated := s.generate(ctx, sess, text)
	if generated {
		step, info := booking.Advance(sess.CurrentStep, sess.PatientInfo, text)
		sess.CurrentStep = step
		sess.PatientInfo = info
		if step == booking.StepCompleted {
			sess.Status = session.StatusCompleted
		}
		if err := s.sessions.Update(ctx, sess); err != nil {
			return nil, fmt.Errorf("conversation: failed to persist session %s: %w", sessionID, err)
		}
		s.metrics.ObserveTurn("ok", string(sess.CurrentStep))
	} else {
		s.metrics.ObserveTurn("fallback", string(sess.CurrentStep))
		s.metrics.ObserveFallback()
	}

	msg, err := s.log.Append(ctx, sessionID, chat.RoleAssistant, reply, nil)
	if err != nil {
		return nil, fmt.Errorf("conversation: failed to record assistant message: %w", err)
	}

	return &TurnResult{
		SessionID:   sessionID,
		MessageID:   msg.ID,
		UserMessage: text,
		Reply:       reply,
		CurrentStep: sess.CurrentStep,
		PatientInfo: sess.PatientInfo,
		Status:      sess.Status,
		Timestamp:   msg.Timestamp,
	}, nil
}

// generate calls the LLM with a bounded context window and timeout. The
// second return reports whether the reply came from the model; false means
// the fixed fallback text.
func (s *Service) generate(ctx context.Context, sess *session.Session, text string) (string, bool) {
	recent, err := s.log.Recent(ctx, sess.ID, s.historyLimit)
	if err != nil {
		s.logger.Warn("failed to load history for prompt", "session_id", sess.ID, "error", err)
	}

	msgs := make([]assistant.ChatMessage, 0, len(recent)+1)
	for _, m := range recent {
		switch m.Role {
		case chat.RoleUser:
			msgs = append(msgs, assistant.ChatMessage{Role: assistant.ChatRoleUser, Content: m.Content})
		case chat.RoleAssistant:
			msgs = append(msgs, assistant.ChatMessage{Role: assistant.ChatRoleAssistant, Content: m.Content})
		}
	}
	if len(msgs) == 0 || msgs[len(msgs)-1].Content != text {
		msgs = append(msgs, assistant.ChatMessage{Role: assistant.ChatRoleUser, Content: text})
	}

	callCtx, cancel := context.WithTimeout(ctx, s.llmTimeout)
	defer cancel()

	start := time.Now()
	resp, err := s.llm.Complete(callCtx, assistant.LLMRequest{
		Model:       s.modelID,
		System:      []string{assistant.BuildSystemPrompt(sess.CurrentStep, sess.PatientInfo)},
		Messages:    msgs,
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	})
	elapsed := time.Since(start).Seconds()
	if err != nil {
		s.metrics.ObserveLLMLatency("error", elapsed)
		s.logger.Error("generation failed, returning fallback reply",
			"session_id", sess.ID, "step", string(sess.CurrentStep), "error", err)
		return FallbackReply, false
	}
	s.metrics.ObserveLLMLatency("ok", elapsed)
	return resp.Text, true
}

// History returns the full transcript together with the session's current
// booking state.
func (s *Service) History(ctx context.Context, sessionID string) (*History, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	msgs, err := s.log.All(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("conversation: failed to load history %s: %w", sessionID, err)
	}
	return &History{
		SessionID:     sessionID,
		Messages:      msgs,
		TotalMessages: len(msgs),
		CurrentStep:   sess.CurrentStep,
		PatientInfo:   sess.PatientInfo,
		Status:        sess.Status,
		CreatedAt:     sess.CreatedAt,
		UpdatedAt:     sess.UpdatedAt,
	}, nil
}

// Cleanup deletes every session whose expiry has already been observed and
// materialized by a prior read.
func (s *Service) Cleanup(ctx context.Context) (int, error) {
	n, err := s.sessions.CleanupExpired(ctx)
	if err != nil {
		return 0, err
	}
	s.metrics.ObserveCleanup(n)
	return n, nil
}
