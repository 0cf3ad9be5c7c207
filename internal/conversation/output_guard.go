package conversation

import (
	"regexp"
	"strings"
)

// OutputGuardResult is the outcome of screening an outbound reply.
type OutputGuardResult struct {
	// Blocked is true if the reply must not be sent as-is.
	Blocked bool
	// Reason names the signal that fired.
	Reason string
}

// unprofessionalWords trip the output guard when they appear as whole words
// in a reply. Word-boundary matching keeps "hello" from tripping on "hell".
var unprofessionalWords = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bdamn\b`),
	regexp.MustCompile(`(?i)\bhell\b`),
	regexp.MustCompile(`(?i)\bcrap\b`),
	regexp.MustCompile(`(?i)\bstupid\b`),
	regexp.MustCompile(`(?i)\bidiot\b`),
}

// outputBlockedReply replaces a reply that failed the quality screen.
const outputBlockedReply = "Let me rephrase that. Could you tell me a little more about what you need, and I'll point you to the right team?"

// fallbackReply stands in for an empty model reply. An empty reply is a
// contract violation from the model, not a user-visible condition.
const fallbackReply = "I'm sorry, I wasn't able to put together a response just now. Could you say that again?"

// ValidateOutput screens a model reply before it is surfaced. Empty replies
// and unprofessional language are blocked.
func ValidateOutput(reply string) OutputGuardResult {
	if strings.TrimSpace(reply) == "" {
		return OutputGuardResult{Blocked: true, Reason: "empty_response"}
	}
	for _, re := range unprofessionalWords {
		if re.MatchString(reply) {
			return OutputGuardResult{Blocked: true, Reason: "inappropriate_language"}
		}
	}
	return OutputGuardResult{}
}
