package conversation

import "testing"

func TestValidateInput(t *testing.T) {
	cases := []struct {
		name    string
		text    string
		blocked bool
		reason  string
	}{
		{"normal message", "Hi, I'm Sarah from Acme Corp", false, ""},
		{"empty", "", true, "empty_input"},
		{"whitespace only", "   \n\t  ", true, "empty_input"},
		{"keyboard mash", "asdfasdf hello", true, "spam_content"},
		{"spam uppercase", "QWERTYQWERTY", true, "spam_content"},
		{"repeated test", "testtesttest", true, "spam_content"},
		{"the word test alone is fine", "I want to test your product", false, ""},
		{"embedded token", "xx spamspamspam yy", true, "spam_content"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ValidateInput(tc.text)
			if got.Blocked != tc.blocked || got.Reason != tc.reason {
				t.Errorf("got %+v, want blocked=%v reason=%q", got, tc.blocked, tc.reason)
			}
		})
	}
}

func TestValidateOutput(t *testing.T) {
	cases := []struct {
		name    string
		reply   string
		blocked bool
		reason  string
	}{
		{"clean reply", "Happy to help with that.", false, ""},
		{"empty", "", true, "empty_response"},
		{"whitespace only", "   ", true, "empty_response"},
		{"profanity", "Well damn, that's tricky.", true, "inappropriate_language"},
		{"case insensitive", "That is STUPID.", true, "inappropriate_language"},
		{"word boundary protects hello", "Hello there!", false, ""},
		{"word boundary protects shell", "Run it in a shell.", false, ""},
		{"bare word trips", "What the hell?", true, "inappropriate_language"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ValidateOutput(tc.reply)
			if got.Blocked != tc.blocked || got.Reason != tc.reason {
				t.Errorf("got %+v, want blocked=%v reason=%q", got, tc.blocked, tc.reason)
			}
		})
	}
}
