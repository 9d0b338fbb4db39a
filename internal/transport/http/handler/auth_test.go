package handler_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/vmarchenko/contacts-api/internal/domain"
	"github.com/vmarchenko/contacts-api/internal/transport/http/handler"
	"github.com/vmarchenko/contacts-api/internal/usecase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAuthUsecase struct {
	signup             func(ctx context.Context, email, password string) (*domain.User, error)
	login              func(ctx context.Context, email, password string) (*usecase.TokenPair, error)
	refresh            func(ctx context.Context, presented string) (*usecase.TokenPair, error)
	verifyEmail        func(ctx context.Context, rawToken string) error
	resendVerification func(ctx context.Context, email string) error
	updateAvatar       func(ctx context.Context, user *domain.User, r io.Reader) (string, error)
}

func (f *fakeAuthUsecase) Signup(ctx context.Context, email, password string) (*domain.User, error) {
	return f.signup(ctx, email, password)
}

func (f *fakeAuthUsecase) Login(ctx context.Context, email, password string) (*usecase.TokenPair, error) {
	return f.login(ctx, email, password)
}

func (f *fakeAuthUsecase) Refresh(ctx context.Context, presented string) (*usecase.TokenPair, error) {
	return f.refresh(ctx, presented)
}

func (f *fakeAuthUsecase) VerifyEmail(ctx context.Context, rawToken string) error {
	return f.verifyEmail(ctx, rawToken)
}

func (f *fakeAuthUsecase) ResendVerification(ctx context.Context, email string) error {
	return f.resendVerification(ctx, email)
}

func (f *fakeAuthUsecase) UpdateAvatar(ctx context.Context, user *domain.User, r io.Reader) (string, error) {
	return f.updateAvatar(ctx, user, r)
}

var testCaller = &domain.User{ID: "user-1", Email: "a@example.com", IsVerified: true}

func newAuthEngine(uc *fakeAuthUsecase) *gin.Engine {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := handler.NewAuthHandler(uc, logger)

	r := gin.New()
	r.POST("/auth/signup", h.Signup)
	r.POST("/auth/login", h.Login)
	r.GET("/auth/refresh_token", h.Refresh)
	r.GET("/auth/verify", h.Verify)
	r.POST("/auth/resend-verify", h.ResendVerification)
	r.POST("/auth/avatar", func(c *gin.Context) { c.Set("caller", testCaller) }, h.UpdateAvatar)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

// ---- Signup ----

func TestSignup_InvalidJSON_Returns400(t *testing.T) {
	w := postJSON(t, newAuthEngine(&fakeAuthUsecase{}), "/auth/signup", `{bad json}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestSignup_ShortPassword_Returns400(t *testing.T) {
	w := postJSON(t, newAuthEngine(&fakeAuthUsecase{}), "/auth/signup",
		`{"email":"a@example.com","password":"abc"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestSignup_DuplicateEmail_Returns409(t *testing.T) {
	uc := &fakeAuthUsecase{
		signup: func(_ context.Context, _, _ string) (*domain.User, error) {
			return nil, domain.ErrEmailTaken
		},
	}
	w := postJSON(t, newAuthEngine(uc), "/auth/signup",
		`{"email":"a@example.com","password":"secret1"}`)
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
}

func TestSignup_Success_Returns201WithUser(t *testing.T) {
	uc := &fakeAuthUsecase{
		signup: func(_ context.Context, email, _ string) (*domain.User, error) {
			return &domain.User{ID: "user-1", Email: email}, nil
		},
	}
	w := postJSON(t, newAuthEngine(uc), "/auth/signup",
		`{"email":"a@example.com","password":"secret1"}`)

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, `"a@example.com"`) {
		t.Errorf("body %q does not contain the user email", body)
	}
	if strings.Contains(body, "password") {
		t.Errorf("body %q leaks password material", body)
	}
}

// ---- Login ----

func TestLogin_BadCredentials_Returns401(t *testing.T) {
	uc := &fakeAuthUsecase{
		login: func(_ context.Context, _, _ string) (*usecase.TokenPair, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	w := postJSON(t, newAuthEngine(uc), "/auth/login",
		`{"email":"a@example.com","password":"wrong-1"}`)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestLogin_Success_ReturnsTokenPair(t *testing.T) {
	uc := &fakeAuthUsecase{
		login: func(_ context.Context, _, _ string) (*usecase.TokenPair, error) {
			return &usecase.TokenPair{AccessToken: "acc.token", RefreshToken: "ref.token"}, nil
		},
	}
	w := postJSON(t, newAuthEngine(uc), "/auth/login",
		`{"email":"a@example.com","password":"secret1"}`)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"acc.token", "ref.token", `"token_type":"bearer"`} {
		if !strings.Contains(body, want) {
			t.Errorf("body %q missing %q", body, want)
		}
	}
}

// ---- Refresh ----

func TestRefresh_MissingBearer_Returns401(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/auth/refresh_token", nil)
	newAuthEngine(&fakeAuthUsecase{}).ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestRefresh_InvalidToken_Returns401(t *testing.T) {
	uc := &fakeAuthUsecase{
		refresh: func(_ context.Context, _ string) (*usecase.TokenPair, error) {
			return nil, domain.ErrInvalidToken
		},
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/auth/refresh_token", nil)
	req.Header.Set("Authorization", "Bearer stale.token")
	newAuthEngine(uc).ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestRefresh_Success_ReturnsNewPair(t *testing.T) {
	uc := &fakeAuthUsecase{
		refresh: func(_ context.Context, presented string) (*usecase.TokenPair, error) {
			if presented != "current.refresh" {
				t.Errorf("presented = %q", presented)
			}
			return &usecase.TokenPair{AccessToken: "new.access", RefreshToken: "new.refresh"}, nil
		},
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/auth/refresh_token", nil)
	req.Header.Set("Authorization", "Bearer current.refresh")
	newAuthEngine(uc).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "new.refresh") {
		t.Errorf("body %q missing rotated refresh token", w.Body.String())
	}
}

// ---- Verify ----

func TestVerify_MissingToken_Returns401(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/auth/verify", nil)
	newAuthEngine(&fakeAuthUsecase{}).ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestVerify_UnknownUser_Returns404(t *testing.T) {
	uc := &fakeAuthUsecase{
		verifyEmail: func(_ context.Context, _ string) error {
			return domain.ErrUserNotFound
		},
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/auth/verify?token=tok", nil)
	newAuthEngine(uc).ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestVerify_RepeatedCalls_BothSucceed(t *testing.T) {
	calls := 0
	uc := &fakeAuthUsecase{
		verifyEmail: func(_ context.Context, _ string) error {
			calls++
			return nil // usecase treats the second call as a no-op success
		},
	}
	engine := newAuthEngine(uc)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/auth/verify?token=tok", nil)
		engine.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("call %d: status = %d, want 200", i+1, w.Code)
		}
	}
	if calls != 2 {
		t.Errorf("verify called %d times, want 2", calls)
	}
}

// ---- ResendVerification ----

func TestResendVerify_UnknownEmail_Returns404(t *testing.T) {
	uc := &fakeAuthUsecase{
		resendVerification: func(_ context.Context, _ string) error {
			return domain.ErrUserNotFound
		},
	}
	w := postJSON(t, newAuthEngine(uc), "/auth/resend-verify", `{"email":"ghost@example.com"}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestResendVerify_AlreadyVerified_Returns200Distinct(t *testing.T) {
	uc := &fakeAuthUsecase{
		resendVerification: func(_ context.Context, _ string) error {
			return domain.ErrAlreadyVerified
		},
	}
	w := postJSON(t, newAuthEngine(uc), "/auth/resend-verify", `{"email":"a@example.com"}`)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Already verified") {
		t.Errorf("body %q does not signal the no-op", w.Body.String())
	}
}

// ---- UpdateAvatar ----

func multipartFile(t *testing.T, field, name string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, name)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestUpdateAvatar_MissingFile_Returns400(t *testing.T) {
	w := postJSON(t, newAuthEngine(&fakeAuthUsecase{}), "/auth/avatar", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestUpdateAvatar_UploadFailure_Returns400(t *testing.T) {
	uc := &fakeAuthUsecase{
		updateAvatar: func(_ context.Context, _ *domain.User, _ io.Reader) (string, error) {
			return "", errors.New("upstream unavailable")
		},
	}
	body, contentType := multipartFile(t, "file", "me.png", []byte("png-bytes"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/avatar", body)
	req.Header.Set("Content-Type", contentType)
	newAuthEngine(uc).ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestUpdateAvatar_Success_ReturnsURL(t *testing.T) {
	const url = "https://cdn.example.com/avatars/user-1.png"
	uc := &fakeAuthUsecase{
		updateAvatar: func(_ context.Context, user *domain.User, _ io.Reader) (string, error) {
			if user.ID != testCaller.ID {
				t.Errorf("caller = %q, want %q", user.ID, testCaller.ID)
			}
			return url, nil
		},
	}
	body, contentType := multipartFile(t, "file", "me.png", []byte("png-bytes"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/avatar", body)
	req.Header.Set("Content-Type", contentType)
	newAuthEngine(uc).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), url) {
		t.Errorf("body %q missing avatar url", w.Body.String())
	}
}
