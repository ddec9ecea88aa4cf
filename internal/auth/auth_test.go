package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studio/internal/model"
)

func init() { gin.SetMode(gin.TestMode) }

func newIssuer() *Issuer {
	return NewIssuer("kasharts-studio", "test-key", 15*time.Minute, 24*time.Hour)
}

func TestIssueAndParse(t *testing.T) {
	i := newIssuer()
	pair, err := i.Issue("ST-2024-001", model.RoleParent)
	require.NoError(t, err)
	assert.True(t, pair.RefreshExp.After(pair.AccessExp))

	claims, err := i.Parse(pair.AccessToken, TypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "ST-2024-001", claims.Subject)
	assert.Equal(t, model.RoleParent, claims.Role)

	_, err = i.Parse(pair.RefreshToken, TypeAccess)
	assert.ErrorIs(t, err, ErrWrongTokenType)
	_, err = i.Parse(pair.AccessToken, TypeRefresh)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestParseRejects(t *testing.T) {
	i := newIssuer()
	pair, err := i.Issue("T-001", model.RoleTeacher)
	require.NoError(t, err)

	other := NewIssuer("kasharts-studio", "other-key", time.Minute, time.Hour)
	_, err = other.Parse(pair.AccessToken, TypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)

	renamed := NewIssuer("someone-else", "test-key", time.Minute, time.Hour)
	_, err = renamed.Parse(pair.AccessToken, TypeAccess)
	assert.ErrorIs(t, err, ErrIssuerMismatch)

	_, err = i.Parse("not-a-token", TypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)

	later := newIssuer()
	later.Now = func() time.Time { return time.Now().Add(time.Hour) }
	_, err = later.Parse(pair.AccessToken, TypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefresh(t *testing.T) {
	i := newIssuer()
	pair, err := i.Issue("admin", model.RoleAdmin)
	require.NoError(t, err)

	next, claims, err := i.Refresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)
	got, err := i.Parse(next.AccessToken, TypeAccess)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, got.Role)

	_, _, err = i.Refresh(pair.AccessToken)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestMiddleware(t *testing.T) {
	i := newIssuer()
	r := gin.New()
	r.GET("/logs", Bearer(i), RequireRole(model.RoleTeacher, model.RoleAdmin), func(c *gin.Context) {
		claims, _ := ClaimsFrom(c)
		c.String(http.StatusOK, claims.Subject)
	})

	teacher, _ := i.Issue("T-001", model.RoleTeacher)
	parent, _ := i.Issue("ST-2024-001", model.RoleParent)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"refresh token", "Bearer " + teacher.RefreshToken, http.StatusUnauthorized},
		{"wrong role", "Bearer " + parent.AccessToken, http.StatusForbidden},
		{"teacher", "Bearer " + teacher.AccessToken, http.StatusOK},
		{"lowercase scheme", "bearer " + teacher.AccessToken, http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/logs", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestRequireRoleWithoutBearer(t *testing.T) {
	r := gin.New()
	r.GET("/x", RequireRole(model.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
