package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authscope/authscope-cli/internal/htmldoc"
)

func firstInput(t *testing.T, markup string) InputAttributes {
	t.Helper()
	sel := htmldoc.Load(markup).Find("input").First()
	require.Equal(t, 1, sel.Length())
	return extractAttributes(sel)
}

func TestExtractAttributes_CaseFolding(t *testing.T) {
	a := firstInput(t, `<input NAME="UserEmail" TYPE="EMAIL" placeholder=" Your Email ">`)

	assert.Equal(t, "useremail", a.Name)
	assert.Equal(t, "email", a.Type)
	assert.Equal(t, "your email", a.Placeholder)
	assert.Contains(t, a.Joined(), "useremail")
}

// TestExtractAttributes_UndefinedIsAbsent: the literal string "undefined" is
// a serialized client-side templating artifact and must be treated exactly
// like a missing attribute.
func TestExtractAttributes_UndefinedIsAbsent(t *testing.T) {
	a := firstInput(t, `<input name="undefined" id="Undefined" placeholder="undefined" type="text">`)

	assert.Empty(t, a.Name)
	assert.Empty(t, a.ID)
	assert.Empty(t, a.Placeholder)
	assert.Equal(t, "text", a.Type)
	assert.Equal(t, "text", a.Joined())
}

func TestExtractAttributes_TestIDPrecedence(t *testing.T) {
	a := firstInput(t, `<input data-test="second" data-testid="first" data-qa="third">`)
	assert.Equal(t, "first", a.TestID)

	a = firstInput(t, `<input data-qa="qa-login-field">`)
	assert.Equal(t, "qa-login-field", a.TestID)
	assert.Contains(t, a.Joined(), "qa-login-field")
}

func TestExtractAttributes_JoinedBag(t *testing.T) {
	a := firstInput(t, `<input name="fld" aria-label="Email address" autocomplete="username" class="form-control">`)

	assert.Equal(t, "fld form-control email address username", a.Joined())
}

func TestIsPassword(t *testing.T) {
	assert.True(t, firstInput(t, `<input type="password">`).IsPassword())
	assert.True(t, firstInput(t, `<input type="PASSWORD">`).IsPassword())
	assert.False(t, firstInput(t, `<input type="text" name="password">`).IsPassword())
}

func TestMatchesKeyword_Permissive(t *testing.T) {
	permissive := modePolicy{strict: false}

	tests := []struct {
		markup string
		want   bool
	}{
		{`<input name="user_login">`, true},
		{`<input placeholder="Email address">`, true},
		{`<input class="pwd-field">`, true},
		{`<input autocomplete="current-password">`, true},
		{`<input name="credential_id">`, true},
		// Substring matching is deliberate: "username" matches "user".
		{`<input name="forum_username">`, true},
		{`<input name="coupon" type="text">`, false},
		{`<input placeholder="Search">`, false},
	}
	for _, tt := range tests {
		a := firstInput(t, tt.markup)
		assert.Equal(t, tt.want, matchesKeyword(a, permissive), "markup %s", tt.markup)
	}
}

func TestMatchesKeyword_StrictNarrowsToStrongList(t *testing.T) {
	strict := modePolicy{strict: true}

	// Generic password/email vocabulary is not enough in strict mode.
	assert.False(t, matchesKeyword(firstInput(t, `<input name="email">`), strict))
	assert.False(t, matchesKeyword(firstInput(t, `<input name="password_hint">`), strict))

	// Explicit flow names are.
	assert.True(t, matchesKeyword(firstInput(t, `<input data-testid="signin-email">`), strict))
	assert.True(t, matchesKeyword(firstInput(t, `<input id="sign-up-field">`), strict))
	assert.True(t, matchesKeyword(firstInput(t, `<input class="register__input">`), strict))
}
