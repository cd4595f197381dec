package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/cabin-engine/auth"
	"github.com/warp/cabin-engine/generic"
)

func TestProvider_IssueAndParse(t *testing.T) {
	p := auth.NewProvider("secret", time.Hour)

	token, err := p.Issue(42, "guest@example.com")
	require.NoError(t, err)

	s, err := p.Parse("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, generic.GuestID(42), s.UserID)
	assert.Equal(t, "guest@example.com", s.Email)

	bare, err := p.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, s, bare)
}

func TestProvider_RejectsBadTokens(t *testing.T) {
	p := auth.NewProvider("secret", time.Hour)
	other := auth.NewProvider("other-secret", time.Hour)
	past := auth.NewProvider("secret", time.Hour).WithClock(func() time.Time {
		return time.Now().Add(-48 * time.Hour)
	})

	foreign, err := other.Issue(1, "a@b.c")
	require.NoError(t, err)

	_, err = p.Parse("")
	assert.ErrorIs(t, err, auth.ErrMissingToken)

	_, err = p.Parse("Bearer " + foreign)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	_, err = p.Parse("Bearer not.a.jwt")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	stale, err := past.Issue(1, "a@b.c")
	require.NoError(t, err)
	_, err = p.Parse("Bearer " + stale)
	assert.ErrorIs(t, err, auth.ErrInvalidToken, "expired")
}

func TestRequireSession(t *testing.T) {
	_, err := auth.RequireSession(context.Background(), "log in to book")
	assert.ErrorIs(t, err, generic.ErrAuthentication)

	ctx := auth.WithSession(context.Background(), auth.Session{UserID: 7})
	s, err := auth.RequireSession(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, generic.GuestID(7), s.UserID)
}

func TestAuthenticate_Middleware(t *testing.T) {
	p := auth.NewProvider("secret", time.Hour)
	token, err := p.Issue(5, "five@example.com")
	require.NoError(t, err)

	var got auth.Session
	var ok bool
	h := auth.Authenticate(p, logrus.New())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = auth.SessionFrom(r.Context())
	}))

	tests := []struct {
		name   string
		header string
		wantOK bool
	}{
		{"valid", "Bearer " + token, true},
		{"anonymous", "", false},
		{"garbage", "Bearer junk", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, generic.GuestID(5), got.UserID)
			}
		})
	}
}
