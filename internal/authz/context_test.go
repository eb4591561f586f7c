package authz

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActorFromRequest(t *testing.T) {
	t.Run("all headers present", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/v1/audits", nil)
		r.Header.Set("X-Organization-ID", "org-1")
		r.Header.Set("X-User-ID", "user-1")
		r.Header.Set("X-User-Role", "AUDITOR")

		actor, svcErr := ActorFromRequest(r)
		require.Nil(t, svcErr)
		assert.Equal(t, "org-1", actor.OrgID)
		assert.Equal(t, "user-1", actor.UserID)
		assert.Equal(t, RoleAuditor, actor.Role)
	})

	t.Run("missing headers", func(t *testing.T) {
		tests := []struct {
			name    string
			headers map[string]string
		}{
			{"no org", map[string]string{"X-User-ID": "user-1", "X-User-Role": "VIEWER"}},
			{"no user", map[string]string{"X-Organization-ID": "org-1", "X-User-Role": "VIEWER"}},
			{"no role", map[string]string{"X-Organization-ID": "org-1", "X-User-ID": "user-1"}},
			{"unknown role", map[string]string{
				"X-Organization-ID": "org-1", "X-User-ID": "user-1", "X-User-Role": "SUPERUSER",
			}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				r := httptest.NewRequest("GET", "/api/v1/audits", nil)
				for k, v := range tt.headers {
					r.Header.Set(k, v)
				}
				_, svcErr := ActorFromRequest(r)
				assert.NotNil(t, svcErr)
			})
		}
	})
}
