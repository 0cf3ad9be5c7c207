package conversation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/calder-ai/lead-qualification-platform/internal/leads"
	"github.com/calder-ai/lead-qualification-platform/internal/notify"
	"github.com/calder-ai/lead-qualification-platform/internal/observability/metrics"
	"github.com/calder-ai/lead-qualification-platform/pkg/logging"
)

var engineTracer = otel.Tracer("leadqual.internal.conversation.engine")

const generateTimeout = 30 * time.Second

// generationFailureReply is shown when the model call itself fails. The
// session is kept so the user can retry on the next turn.
const generationFailureReply = "I apologize, but there was an error processing your message. Please try again."

// Engine is the turn orchestrator: it screens input, generates a reply,
// executes requested tools in order, runs the handoff safety net, screens
// output, and persists the session.
type Engine struct {
	llm       LLMClient
	model     string
	sessions  SessionStore
	processor *LeadProcessor
	notifier  *notify.Service
	archive   *ArchiveStore
	logger    *logging.Logger
	metrics   *metrics.ConversationMetrics

	// turnLocks holds one mutex per session so turns for the same session
	// run one at a time; a concurrent stale save must never overwrite a
	// later classification or drop transcript entries.
	turnLocks sync.Map
}

// EngineOption configures optional engine collaborators.
type EngineOption func(*Engine)

// WithArchive stores transcripts on session reset.
func WithArchive(archive *ArchiveStore) EngineOption {
	return func(e *Engine) {
		e.archive = archive
	}
}

// WithMetrics attaches conversation metrics.
func WithMetrics(m *metrics.ConversationMetrics) EngineOption {
	return func(e *Engine) {
		e.metrics = m
	}
}

// NewEngine wires the conversation engine.
func NewEngine(llm LLMClient, model string, sessions SessionStore, processor *LeadProcessor, notifier *notify.Service, logger *logging.Logger, opts ...EngineOption) *Engine {
	if llm == nil {
		panic("conversation: llm client cannot be nil")
	}
	if sessions == nil {
		panic("conversation: session store cannot be nil")
	}
	if processor == nil {
		panic("conversation: lead processor cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	e := &Engine{
		llm:       llm,
		model:     model,
		sessions:  sessions,
		processor: processor,
		notifier:  notifier,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// StartConversation opens a new session and processes its first turn.
func (e *Engine) StartConversation(ctx context.Context, req StartRequest) (*Response, error) {
	ctx, span := engineTracer.Start(ctx, "conversation.start")
	defer span.End()

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = fmt.Sprintf("conv_%s", uuid.NewString())
	}
	span.SetAttributes(attribute.String("leadqual.session_id", sessionID))

	unlock := e.lockSession(sessionID)
	defer unlock()

	state := NewSessionState(req.Source)
	return e.processTurn(ctx, sessionID, state, req.Intro)
}

// ProcessMessage continues an existing session with one user turn.
func (e *Engine) ProcessMessage(ctx context.Context, req MessageRequest) (*Response, error) {
	ctx, span := engineTracer.Start(ctx, "conversation.message")
	defer span.End()
	span.SetAttributes(attribute.String("leadqual.session_id", req.SessionID))

	unlock := e.lockSession(req.SessionID)
	defer unlock()

	state, err := e.sessions.Load(ctx, req.SessionID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return e.processTurn(ctx, req.SessionID, state, req.Message)
}

// GetHistory returns the user/assistant transcript for a session.
func (e *Engine) GetHistory(ctx context.Context, sessionID string) ([]Message, error) {
	state, err := e.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return state.Messages(), nil
}

// Reset tears the session down and returns the conversation to intake. Side
// effects already dispatched are not cancelled; only the state is discarded.
func (e *Engine) Reset(ctx context.Context, sessionID string) error {
	unlock := e.lockSession(sessionID)
	defer unlock()

	if e.archive != nil {
		state, err := e.sessions.Load(ctx, sessionID)
		if err == nil {
			if archiveErr := e.archive.SaveTranscript(ctx, sessionID, state); archiveErr != nil {
				e.logger.Error("failed to archive transcript", "error", archiveErr, "session_id", sessionID)
			}
		}
	}
	return e.sessions.Delete(ctx, sessionID)
}

// lockSession acquires the session's turn mutex. Locks are never removed;
// removing one while a turn still holds it would let two late callers mint
// separate mutexes for the same session.
func (e *Engine) lockSession(sessionID string) func() {
	mu, _ := e.turnLocks.LoadOrStore(sessionID, &sync.Mutex{})
	lock := mu.(*sync.Mutex)
	lock.Lock()
	return lock.Unlock
}

func (e *Engine) processTurn(ctx context.Context, sessionID string, state *SessionState, userText string) (*Response, error) {
	started := time.Now()

	if guard := ValidateInput(userText); guard.Blocked {
		e.logger.Info("input blocked", "session_id", sessionID, "reason", guard.Reason)
		e.metrics.ObserveModerationBlock("input")
		e.metrics.ObserveTurn("input_blocked", time.Since(started).Seconds())
		// Blocked input never enters the transcript; the session is saved so
		// a brand-new session still exists after a rejected first turn.
		if err := e.sessions.Save(ctx, sessionID, state); err != nil {
			return nil, err
		}
		return e.respond(sessionID, state, inputBlockedReply), nil
	}

	state.AppendUser(userText)

	genCtx, cancel := context.WithTimeout(ctx, generateTimeout)
	result, err := e.llm.Generate(genCtx, GenerateRequest{
		Model:    e.model,
		System:   []string{systemPromptFor(state)},
		Messages: state.Transcript,
	})
	cancel()
	if err != nil {
		e.logger.Error("response generation failed", "error", err, "session_id", sessionID)
		e.metrics.ObserveGenerationError()
		e.metrics.ObserveTurn("generation_failed", time.Since(started).Seconds())
		state.AppendAssistant(generationFailureReply)
		if saveErr := e.sessions.Save(ctx, sessionID, state); saveErr != nil {
			return nil, saveErr
		}
		return e.respond(sessionID, state, generationFailureReply), nil
	}

	// Tool calls run synchronously, in the order the model requested them,
	// before the reply is surfaced.
	for _, toolReq := range result.ToolCalls {
		outcome := e.executeTool(ctx, sessionID, state, toolReq)
		state.AppendToolResult(fmt.Sprintf("[%s] %s", toolReq.Name, outcome))
	}

	if result.Handoff != "" {
		e.handleHandoff(ctx, sessionID, state, leads.LeadType(result.Handoff))
	}

	reply := result.Reply
	if reply == "" {
		e.logger.Warn("model returned empty reply, substituting fallback", "session_id", sessionID)
		reply = fallbackReply
	} else if guard := ValidateOutput(reply); guard.Blocked {
		e.logger.Info("output blocked", "session_id", sessionID, "reason", guard.Reason)
		e.metrics.ObserveModerationBlock("output")
		reply = outputBlockedReply
	}

	state.AppendAssistant(reply)
	if err := e.sessions.Save(ctx, sessionID, state); err != nil {
		return nil, err
	}

	e.metrics.ObserveTurn("ok", time.Since(started).Seconds())
	return e.respond(sessionID, state, reply), nil
}

// executeTool runs one parsed tool call and returns its result string.
func (e *Engine) executeTool(ctx context.Context, sessionID string, state *SessionState, req ToolRequest) string {
	call, validationErr := parseToolCall(req)
	if validationErr != "" {
		e.logger.Info("tool call rejected", "session_id", sessionID, "tool", req.Name, "reason", validationErr)
		return validationErr
	}

	switch call.Kind {
	case ToolKindRoute, ToolKindStore:
		state.MarkClassifying()
		res := e.processor.Process(ctx, call.Lead, false)
		if res.Processed || res.Suppressed {
			state.Routed = true
		}
		return res.Message

	case ToolKindSend:
		if e.notifier == nil || !e.notifier.Enabled() {
			return "Email is not configured; nothing was sent."
		}
		if err := e.notifier.SendDirect(ctx, call.Send.ToEmail, call.Send.Subject, call.Send.Body); err != nil {
			e.logger.Error("send_email tool failed", "error", err, "session_id", sessionID)
			return fmt.Sprintf("Failed to send email to %s: %v", call.Send.ToEmail, err)
		}
		return fmt.Sprintf("Email sent successfully to %s.", call.Send.ToEmail)
	}

	return fmt.Sprintf("Error: Unknown tool '%s'.", req.Name)
}

// handleHandoff runs the safety net: fix the classification, re-extract the
// lead from the full transcript, and force a store+route. The dedup guard
// makes this a no-op when the model's own tool calls already handled the
// lead.
func (e *Engine) handleHandoff(ctx context.Context, sessionID string, state *SessionState, tier leads.LeadType) {
	if err := state.HandOff(tier); err != nil {
		e.logger.Info("handoff ignored", "session_id", sessionID, "tier", tier, "error", err)
		return
	}
	e.logger.Info("specialist handoff", "session_id", sessionID, "tier", tier)

	details := leads.Extract(state.TranscriptText())
	req := details.ToCreateRequest(tier, leads.PriorityHigh, "handoff")
	res := e.processor.Process(ctx, req, true)
	if res.Processed || res.Suppressed {
		state.Routed = true
	}
	state.AppendToolResult(fmt.Sprintf("[handoff:%s] %s", tier, res.Message))
}

func (e *Engine) respond(sessionID string, state *SessionState, reply string) *Response {
	return &Response{
		SessionID:      sessionID,
		Message:        reply,
		Stage:          state.Stage,
		Classification: string(state.Classification),
		Routed:         state.Routed,
		Timestamp:      time.Now().UTC(),
	}
}

var _ Service = (*Engine)(nil)
