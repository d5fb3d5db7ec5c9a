package sec

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requestWithCookie(cookie *http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return req
}

func TestSessions_RoundTrip(t *testing.T) {
	t.Parallel()

	sessions := NewSessions("test-secret")
	const userID int64 = 42

	cookie, err := sessions.Issue(userID)
	require.NoError(t, err)
	assert.Equal(t, SessionCookie, cookie.Name)
	assert.True(t, cookie.HttpOnly)

	got, err := sessions.Resolve(requestWithCookie(cookie))
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestSessions_NoCookie(t *testing.T) {
	t.Parallel()

	sessions := NewSessions("test-secret")
	_, err := sessions.Resolve(requestWithCookie(nil))
	require.ErrorIs(t, err, ErrNoSession)
}

func TestSessions_Tampered(t *testing.T) {
	t.Parallel()

	sessions := NewSessions("test-secret")
	cookie, err := sessions.Issue(42)
	require.NoError(t, err)

	// flip the final signature character
	flipped := "A"
	if strings.HasSuffix(cookie.Value, flipped) {
		flipped = "B"
	}
	cookie.Value = cookie.Value[:len(cookie.Value)-1] + flipped

	_, err = sessions.Resolve(requestWithCookie(cookie))
	require.ErrorIs(t, err, ErrNoSession)
}

func TestSessions_WrongKey(t *testing.T) {
	t.Parallel()

	cookie, err := NewSessions("one-secret").Issue(42)
	require.NoError(t, err)

	_, err = NewSessions("another-secret").Resolve(requestWithCookie(cookie))
	require.ErrorIs(t, err, ErrNoSession)
}

func TestSessions_Clear(t *testing.T) {
	t.Parallel()

	sessions := NewSessions("test-secret")
	cookie := sessions.Clear()
	assert.Equal(t, SessionCookie, cookie.Name)
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge)

	_, err := sessions.Resolve(requestWithCookie(cookie))
	require.ErrorIs(t, err, ErrNoSession)
}

func TestNewSecretKey(t *testing.T) {
	t.Parallel()

	key := NewSecretKey()
	assert.Len(t, key, 64)
	assert.NotEqual(t, key, NewSecretKey())
}
