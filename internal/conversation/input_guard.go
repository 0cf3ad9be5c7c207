package conversation

import "strings"

// InputGuardResult is the outcome of screening an inbound user message.
type InputGuardResult struct {
	// Blocked is true if the message should NOT reach the model.
	Blocked bool
	// Reason names the signal that fired.
	Reason string
}

// spamTokens are keyboard-mash and filler sequences that mark a message as
// junk. Matching is substring, case-insensitive. The table is data so each
// entry is testable on its own; individual ordinary words are never blocked.
var spamTokens = []string{
	"asdfasdf",
	"qwertyqwerty",
	"testtesttest",
	"spamspamspam",
	"fakefakefake",
	"nonsensenonsense",
}

// inputBlockedReply is shown to the user when their message is rejected.
const inputBlockedReply = "I wasn't able to work with that message. Could you tell me a bit about yourself and what you're looking for?"

// ValidateInput screens a user message before it reaches the model. Empty
// input and obvious spam are blocked; everything else passes through for the
// model to handle.
func ValidateInput(text string) InputGuardResult {
	if strings.TrimSpace(text) == "" {
		return InputGuardResult{Blocked: true, Reason: "empty_input"}
	}

	lower := strings.ToLower(text)
	for _, token := range spamTokens {
		if strings.Contains(lower, token) {
			return InputGuardResult{Blocked: true, Reason: "spam_content"}
		}
	}

	return InputGuardResult{}
}
