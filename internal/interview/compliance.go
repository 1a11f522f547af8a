package interview

import "slices"

// DisclosureText is shown to the candidate before consent is requested.
const DisclosureText = `This interview is conducted by an automated interviewer.
Your answers are evaluated by software, including a language model, and a summary with a
recommendation is shared with the hiring team. A human reviews every recommendation before
a decision is made. You can withdraw at any time.

Do you agree to proceed? (yes/no)`

var consentWords = []string{"yes", "y", "sure", "okay", "ok", "proceed", "agree", "i agree"}

// IsConsent reports whether the reply grants consent.
func IsConsent(reply string) bool {
	return slices.Contains(consentWords, normalize(reply))
}
