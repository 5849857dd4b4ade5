package detect

import "strings"

// Signal identifies why an input was classified as a credential candidate.
// Higher values take priority when an element matches more than one.
type Signal uint8

const (
	SignalNone Signal = iota
	// SignalContext means the surrounding text or controls read like an
	// auth flow (see hasAuthContext).
	SignalContext
	// SignalKeyword means the element's own attributes contain an auth
	// keyword.
	SignalKeyword
	// SignalPassword means type="password". Definitive; short-circuits the
	// other checks.
	SignalPassword
)

func (s Signal) String() string {
	switch s {
	case SignalPassword:
		return "password"
	case SignalKeyword:
		return "keyword"
	case SignalContext:
		return "context"
	default:
		return "none"
	}
}

// Keyword policy. Matching is substring, not token: "user" matching
// "username" (or "forum_user") is a deliberate recall-over-precision
// tradeoff. Tune the lists, not the matching.
var (
	// passwordKeywords cover the password family of attribute spellings.
	passwordKeywords = []string{"password", "passwd", "pwd", "pass"}

	// identityKeywords cover email/username-shaped attribute spellings.
	identityKeywords = []string{"email", "username", "user", "login", "signin", "sign-in"}

	// genericAuthKeywords extend the permissive net to credential-adjacent
	// attribute vocabulary.
	genericAuthKeywords = []string{"auth", "credential", "account"}

	// strongKeywords is the narrow list strict mode accepts on attributes:
	// explicit flow names only, never bare "password"/"email".
	strongKeywords = []string{
		"sign in", "sign-in", "signin", "sign_in",
		"log in", "log-in", "login", "log_in",
		"sign up", "sign-up", "signup", "sign_up",
		"register",
	}

	// authPhrases is the textual-context vocabulary checked against parent
	// and closest-form text.
	authPhrases = []string{
		"sign in", "log in", "login", "sign up", "register",
		"forgot password", "create account", "create an account",
		"welcome back", "continue with", "remember me",
	}

	// strongAuthPhrases is the narrowed vocabulary strict mode requires.
	strongAuthPhrases = []string{
		"sign in", "log in", "sign up", "register", "forgot password",
		"create account",
	}
)

// containsAny reports whether s contains any of the given substrings.
// s must already be lower-cased.
func containsAny(s string, subs []string) bool {
	if s == "" {
		return false
	}
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
