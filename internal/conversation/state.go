package conversation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/calder-ai/lead-qualification-platform/internal/leads"
)

// Stage is the lifecycle position of a conversation.
type Stage string

const (
	// StageIntake covers turns before any tool call or handoff has fired.
	StageIntake Stage = "intake"
	// StageClassifying means tools have fired but no specialist handoff yet.
	StageClassifying Stage = "classifying"
	// StageHandedOff means a specialist handoff fired; the classification is fixed.
	StageHandedOff Stage = "handed_off"
)

// ErrAlreadyHandedOff is returned when a second handoff targets a session
// whose classification is already set.
var ErrAlreadyHandedOff = errors.New("conversation: session already handed off")

// SessionState is the per-session record the engine persists between turns.
// The transcript is append-only and chronological; Classification is written
// at most once.
type SessionState struct {
	Stage          Stage          `json:"stage"`
	Classification leads.LeadType `json:"classification,omitempty"`
	Routed         bool           `json:"routed"`
	Transcript     []ChatMessage  `json:"transcript"`
	Source         string         `json:"source,omitempty"`
}

// NewSessionState creates a fresh intake-stage session.
func NewSessionState(source string) *SessionState {
	return &SessionState{
		Stage:  StageIntake,
		Source: source,
	}
}

// AppendUser adds a user turn to the transcript.
func (s *SessionState) AppendUser(text string) {
	s.Transcript = append(s.Transcript, ChatMessage{Role: ChatRoleUser, Content: text})
}

// AppendAssistant adds an assistant turn to the transcript.
func (s *SessionState) AppendAssistant(text string) {
	s.Transcript = append(s.Transcript, ChatMessage{Role: ChatRoleAssistant, Content: text})
}

// AppendToolResult records a tool outcome so later turns can see it.
func (s *SessionState) AppendToolResult(text string) {
	s.Transcript = append(s.Transcript, ChatMessage{Role: ChatRoleSystem, Content: text})
}

// MarkClassifying moves an intake session forward once tools start firing.
// It never moves a handed-off session backwards.
func (s *SessionState) MarkClassifying() {
	if s.Stage == StageIntake {
		s.Stage = StageClassifying
	}
}

// HandOff fixes the session's classification. The transition is one-way: a
// second handoff, even to the same tier, is rejected so the classification
// can never change after the fact.
func (s *SessionState) HandOff(tier leads.LeadType) error {
	if !tier.Valid() {
		return fmt.Errorf("conversation: invalid handoff tier %q", tier)
	}
	if s.Stage == StageHandedOff {
		return ErrAlreadyHandedOff
	}
	s.Stage = StageHandedOff
	s.Classification = tier
	return nil
}

// TranscriptText renders the full transcript as "role: content" lines for
// whole-conversation field extraction.
func (s *SessionState) TranscriptText() string {
	var b strings.Builder
	for _, msg := range s.Transcript {
		if msg.Role == ChatRoleSystem {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s: %s", msg.Role, msg.Content)
	}
	return b.String()
}

// Messages returns the user/assistant transcript for API consumers.
func (s *SessionState) Messages() []Message {
	out := make([]Message, 0, len(s.Transcript))
	for _, msg := range s.Transcript {
		if msg.Role == ChatRoleSystem {
			continue
		}
		out = append(out, Message{Role: msg.Role, Content: msg.Content})
	}
	return out
}
