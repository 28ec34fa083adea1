package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campuswell/internal/model"
	"campuswell/internal/service"
)

type singleUserRepo struct {
	user *model.User
}

func (r *singleUserRepo) Create(ctx context.Context, user *model.User) error {
	r.user = user
	return nil
}

func (r *singleUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	if r.user != nil && r.user.ID == id {
		return r.user, nil
	}
	return nil, nil
}

func (r *singleUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if r.user != nil && r.user.Email == email {
		return r.user, nil
	}
	return nil, nil
}

func (r *singleUserRepo) UpdateLastLogin(ctx context.Context, id string) error {
	return nil
}

func tokenFor(t *testing.T, svc *service.AuthService, role model.Role) string {
	t.Helper()
	_, err := svc.Signup(context.Background(), &model.SignupRequest{
		Email: "u@example.edu", Password: "pw-123456", FirstName: "U", LastName: "Ser", Role: role,
	})
	require.NoError(t, err)
	resp, err := svc.Login(context.Background(), "u@example.edu", "pw-123456")
	require.NoError(t, err)
	return resp.Token
}

func echoIdentity(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Subject", GetSubjectID(r.Context()))
	w.Header().Set("X-Role", string(GetRole(r.Context())))
	w.WriteHeader(http.StatusOK)
}

func TestRequireAuth(t *testing.T) {
	authSvc := service.NewAuthService(&singleUserRepo{}, "test-secret")
	mw := NewAuthMiddleware(authSvc)
	handler := mw.RequireAuth(http.HandlerFunc(echoIdentity))

	// No header
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Garbage token
	rec = httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer nope")
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Valid token lands identity in the context
	token := tokenFor(t, authSvc, model.RoleStudent)
	rec = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Subject"))
	assert.Equal(t, "student", rec.Header().Get("X-Role"))
}

func TestRequireRole(t *testing.T) {
	cases := []struct {
		name     string
		role     model.Role
		required model.Role
		want     int
	}{
		{"student blocked from mentor routes", model.RoleStudent, model.RoleMentor, http.StatusForbidden},
		{"mentor allowed", model.RoleMentor, model.RoleMentor, http.StatusOK},
		{"admin passes mentor checks", model.RoleAdmin, model.RoleMentor, http.StatusOK},
		{"mentor blocked from admin routes", model.RoleMentor, model.RoleAdmin, http.StatusForbidden},
		{"admin allowed on admin routes", model.RoleAdmin, model.RoleAdmin, http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			authSvc := service.NewAuthService(&singleUserRepo{}, "test-secret")
			mw := NewAuthMiddleware(authSvc)
			handler := mw.RequireAuth(mw.RequireRole(tc.required)(http.HandlerFunc(echoIdentity)))

			token := tokenFor(t, authSvc, tc.role)
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}
