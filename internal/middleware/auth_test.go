package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"bakery-service/internal/models"
	"bakery-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeParser struct {
	actor service.Actor
	err   error
	got   string
}

func (f *fakeParser) Parse(token string) (service.Actor, error) {
	f.got = token
	return f.actor, f.err
}

func TestExtractBearerToken(t *testing.T) {
	cases := map[string]struct {
		in   string
		want string
		ok   bool
	}{
		"plain":   {"Bearer abc.def.ghi", "abc.def.ghi", true},
		"quoted":  {"Bearer \"abc.def.ghi\"", "abc.def.ghi", true},
		"comma":   {"Bearer abc.def.ghi, extra", "abc.def.ghi", true},
		"case":    {"bearer abc", "abc", true},
		"basic":   {"Basic abc", "", false},
		"noSpace": {"Bearer", "", false},
		"empty":   {"", "", false},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, ok := ExtractBearerToken(tc.in)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAuthRequired(t *testing.T) {
	gin.SetMode(gin.TestMode)
	id := uuid.New()
	p := &fakeParser{actor: service.Actor{ID: id, Role: models.RoleStore}}

	r := gin.New()
	r.GET("/me", AuthRequired(p, zap.NewNop()), func(c *gin.Context) {
		a, ok := service.ActorFromContext(c.Request.Context())
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": a.ID, "role": a.Role, "ctx_role": c.GetString(CtxUserRole)})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer tok")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tok", p.got)
	assert.Contains(t, w.Body.String(), id.String())
	assert.Contains(t, w.Body.String(), `"ctx_role":"STORE"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	p.err = errors.New("expired")
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer tok")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"unauthorized"`)
}
