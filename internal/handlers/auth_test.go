package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/google/uuid"
	"github.com/yukikurage/task-sphere/internal/constants"
	"github.com/yukikurage/task-sphere/internal/dto"
	apierrors "github.com/yukikurage/task-sphere/internal/errors"
)

func (s *HandlerTestSuite) TestSignup_SetsSessionCookie() {
	w := s.do(http.MethodPost, "/api/auth/signup", dto.SignupRequest{
		Name:     "Alice",
		Email:    "Alice@Example.com",
		Password: "password123",
	}, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var user dto.UserDTO
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &user))
	s.Equal("Alice", user.Name)
	s.Equal("alice@example.com", user.Email)
	s.NoError(uuid.Validate(user.ID))
	s.NotContains(w.Body.String(), "password")

	cookie := s.sessionCookie(w)
	s.Require().NotNil(cookie)
	s.NotEmpty(cookie.Value)
	s.True(cookie.HttpOnly)
	s.False(cookie.Secure)
	s.Equal(http.SameSiteStrictMode, cookie.SameSite)
	s.Equal("/", cookie.Path)
	s.Equal(int(constants.SessionTTL.Seconds()), cookie.MaxAge)
}

func (s *HandlerTestSuite) TestSignup_SecureCookieInProduction() {
	s.deps.SecureCookie = true
	s.router = NewRouter(s.deps)

	w := s.do(http.MethodPost, "/api/auth/signup", dto.SignupRequest{Name: "Al", Email: "al@example.com", Password: "password123"}, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.True(s.sessionCookie(w).Secure)
}

func (s *HandlerTestSuite) TestSignup_Validation() {
	tests := []struct {
		name    string
		body    interface{}
		wantMsg string
	}{
		{"short name", dto.SignupRequest{Name: "A", Email: "a@example.com", Password: "password123"}, "Name must be at least 2 characters"},
		{"bad email", dto.SignupRequest{Name: "Al", Email: "nope", Password: "password123"}, "Invalid email address"},
		{"short password", dto.SignupRequest{Name: "Al", Email: "a@example.com", Password: "short"}, "Password must be at least 8 characters"},
		{"malformed body", "not an object", "Invalid request body"},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			w := s.do(http.MethodPost, "/api/auth/signup", tt.body, nil)

			s.Equal(http.StatusBadRequest, w.Code)
			s.Equal(tt.wantMsg, s.apiError(w).Message)
			s.Nil(s.sessionCookie(w))
		})
	}
}

func (s *HandlerTestSuite) TestSignup_DuplicateEmail() {
	s.signup("Alice", "alice@example.com")

	w := s.do(http.MethodPost, "/api/auth/signup", dto.SignupRequest{Name: "Alice", Email: "ALICE@example.com", Password: "password123"}, nil)

	s.Equal(http.StatusConflict, w.Code)
	s.Equal(apierrors.ErrCodeConflict, s.apiError(w).Code)
}

func (s *HandlerTestSuite) TestLogin() {
	alice, _ := s.signup("Alice", "alice@example.com")

	w := s.do(http.MethodPost, "/api/auth/login", dto.LoginRequest{Email: "alice@example.com", Password: "password123"}, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.NotNil(s.sessionCookie(w))

	var user dto.UserDTO
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &user))
	s.Equal(alice.ID, user.ID)
}

func (s *HandlerTestSuite) TestLogin_GenericFailure() {
	s.signup("Alice", "alice@example.com")

	wrongPassword := s.do(http.MethodPost, "/api/auth/login", dto.LoginRequest{Email: "alice@example.com", Password: "wrong-pass"}, nil)
	unknownEmail := s.do(http.MethodPost, "/api/auth/login", dto.LoginRequest{Email: "bob@example.com", Password: "password123"}, nil)

	for _, w := range []*httptest.ResponseRecorder{wrongPassword, unknownEmail} {
		s.Equal(http.StatusUnauthorized, w.Code)
		s.Equal("Invalid email or password", s.apiError(w).Message)
		s.Nil(s.sessionCookie(w))
	}
	s.Equal(wrongPassword.Body.String(), unknownEmail.Body.String())
}

func (s *HandlerTestSuite) TestLogout_ClearsCookie() {
	w := s.do(http.MethodPost, "/api/auth/logout", nil, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"success":true}`, w.Body.String())

	cookie := s.sessionCookie(w)
	s.Require().NotNil(cookie)
	s.Empty(cookie.Value)
	s.Less(cookie.MaxAge, 0)
}

func (s *HandlerTestSuite) TestMe() {
	alice, session := s.signup("Alice", "alice@example.com")

	w := s.do(http.MethodGet, "/api/auth/me", nil, session)
	s.Require().Equal(http.StatusOK, w.Code)

	var user dto.UserDTO
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &user))
	s.Equal(alice, user)

	w = s.do(http.MethodGet, "/api/auth/me", nil, nil)
	s.Equal(http.StatusUnauthorized, w.Code)
}

