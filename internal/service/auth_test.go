package service

import (
	"net/http"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/mdpress/mdpress/internal/config"
	"github.com/mdpress/mdpress/internal/domain"
	internal_errors "github.com/mdpress/mdpress/internal/errors"
	"github.com/mdpress/mdpress/internal/utils/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- Mocks ---

type MockAuthStorage struct {
	SaveUserFunc                func(user domain.User) error
	UserByEmailFunc             func(email string) (domain.User, error)
	UserByIdFunc                func(id string) (domain.User, error)
	UpdatePasswordFunc          func(email, passwordHash string) error
	ReplaceVerificationCodeFunc func(code domain.VerificationCode) error
	VerificationCodeFunc        func(email string) (domain.VerificationCode, error)
	DeleteVerificationCodeFunc  func(email string) error
}

func (m *MockAuthStorage) SaveUser(user domain.User) error {
	if m.SaveUserFunc != nil {
		return m.SaveUserFunc(user)
	}
	return nil
}

func (m *MockAuthStorage) UserByEmail(email string) (domain.User, error) {
	if m.UserByEmailFunc != nil {
		return m.UserByEmailFunc(email)
	}
	// Default: not found
	return domain.User{}, notFound("User not found")
}

func (m *MockAuthStorage) UserById(id string) (domain.User, error) {
	if m.UserByIdFunc != nil {
		return m.UserByIdFunc(id)
	}
	return domain.User{}, notFound("User not found")
}

func (m *MockAuthStorage) UpdatePassword(email, passwordHash string) error {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(email, passwordHash)
	}
	return nil
}

func (m *MockAuthStorage) ReplaceVerificationCode(code domain.VerificationCode) error {
	if m.ReplaceVerificationCodeFunc != nil {
		return m.ReplaceVerificationCodeFunc(code)
	}
	return nil
}

func (m *MockAuthStorage) VerificationCode(email string) (domain.VerificationCode, error) {
	if m.VerificationCodeFunc != nil {
		return m.VerificationCodeFunc(email)
	}
	return domain.VerificationCode{}, notFound("Verification code not found")
}

func (m *MockAuthStorage) DeleteVerificationCode(email string) error {
	if m.DeleteVerificationCodeFunc != nil {
		return m.DeleteVerificationCodeFunc(email)
	}
	return nil
}

type MockEmail struct {
	SendFunc      func(recipientEmail, subject, body string) error
	IsCorrectFunc func(email string) error
}

func (m *MockEmail) Send(recipientEmail, subject, body string) error {
	if m.SendFunc != nil {
		return m.SendFunc(recipientEmail, subject, body)
	}
	return nil
}

func (m *MockEmail) IsCorrect(email string) error {
	if m.IsCorrectFunc != nil {
		return m.IsCorrectFunc(email)
	}
	return nil
}

type MockJwt struct {
	NewTokenFunc func(user domain.User) (string, error)
}

func (m *MockJwt) NewToken(user domain.User) (string, error) {
	if m.NewTokenFunc != nil {
		return m.NewTokenFunc(user)
	}
	return "token-" + user.Id, nil
}

func notFound(msg string) error {
	return &internal_errors.ErrorWithStatusCode{Message: msg, StatusCode: http.StatusNotFound}
}

func testConfig() *config.Config {
	return &config.Config{
		Public: config.Public{
			CodeLen:          6,
			CodeTTLMinutes:   10,
			JwtTTLHours:      168,
			DefaultPageLimit: 10,
		},
	}
}

func statusCode(t *testing.T, err error) int {
	t.Helper()
	var ec *internal_errors.ErrorWithStatusCode
	require.ErrorAs(t, err, &ec)
	return ec.StatusCode
}

// --- SendVerificationCode ---

func TestSendVerificationCode_Register(t *testing.T) {
	var saved domain.VerificationCode
	var sentTo, sentBody string
	storage := &MockAuthStorage{
		ReplaceVerificationCodeFunc: func(code domain.VerificationCode) error {
			saved = code
			return nil
		},
	}
	email := &MockEmail{
		SendFunc: func(recipientEmail, subject, body string) error {
			sentTo = recipientEmail
			sentBody = body
			return nil
		},
	}
	auth := NewAuth(storage, email, &MockJwt{}, testConfig())

	err := auth.SendVerificationCode("User@Example.com", domain.PurposeRegister)

	require.NoError(t, err)
	assert.Equal(t, "user@example.com", saved.Email, "email should be lowercased")
	assert.Len(t, saved.Code, 6)
	assert.Equal(t, "user@example.com", sentTo)
	assert.Contains(t, sentBody, saved.Code)
	assert.WithinDuration(t, time.Now().UTC().Add(10*time.Minute), saved.Expires, 5*time.Second)
}

func TestSendVerificationCode_RegisterExistingEmail(t *testing.T) {
	storage := &MockAuthStorage{
		UserByEmailFunc: func(email string) (domain.User, error) {
			return domain.User{Id: "u-1", Email: email}, nil
		},
	}
	auth := NewAuth(storage, &MockEmail{}, &MockJwt{}, testConfig())

	err := auth.SendVerificationCode("user@example.com", domain.PurposeRegister)

	assert.Equal(t, http.StatusConflict, statusCode(t, err))
}

func TestSendVerificationCode_ResetUnknownEmail(t *testing.T) {
	auth := NewAuth(&MockAuthStorage{}, &MockEmail{}, &MockJwt{}, testConfig())

	err := auth.SendVerificationCode("user@example.com", domain.PurposeReset)

	assert.Equal(t, http.StatusNotFound, statusCode(t, err))
}

func TestSendVerificationCode_DefaultPurposeIsRegister(t *testing.T) {
	storage := &MockAuthStorage{
		UserByEmailFunc: func(email string) (domain.User, error) {
			return domain.User{Id: "u-1"}, nil
		},
	}
	auth := NewAuth(storage, &MockEmail{}, &MockJwt{}, testConfig())

	// Empty purpose behaves like register, so an existing email conflicts
	err := auth.SendVerificationCode("user@example.com", "")

	assert.Equal(t, http.StatusConflict, statusCode(t, err))
}

func TestSendVerificationCode_UnknownPurpose(t *testing.T) {
	auth := NewAuth(&MockAuthStorage{}, &MockEmail{}, &MockJwt{}, testConfig())

	err := auth.SendVerificationCode("user@example.com", "unsubscribe")

	assert.Equal(t, http.StatusBadRequest, statusCode(t, err))
}

func TestSendVerificationCode_DeliveryFailure(t *testing.T) {
	replaced := false
	deleted := false
	storage := &MockAuthStorage{
		ReplaceVerificationCodeFunc: func(code domain.VerificationCode) error {
			replaced = true
			return nil
		},
		DeleteVerificationCodeFunc: func(email string) error {
			deleted = true
			return nil
		},
	}
	email := &MockEmail{
		SendFunc: func(recipientEmail, subject, body string) error {
			return &internal_errors.ErrorWithStatusCode{Message: "smtp down", StatusCode: http.StatusInternalServerError}
		},
	}
	auth := NewAuth(storage, email, &MockJwt{}, testConfig())

	err := auth.SendVerificationCode("user@example.com", domain.PurposeRegister)

	assert.Equal(t, http.StatusInternalServerError, statusCode(t, err))
	assert.True(t, replaced)
	assert.False(t, deleted, "code should stay persisted on delivery failure")
}

// --- Register ---

func registerStorage(code string) *MockAuthStorage {
	now := time.Now().UTC()
	return &MockAuthStorage{
		VerificationCodeFunc: func(email string) (domain.VerificationCode, error) {
			return domain.VerificationCode{
				Email:     email,
				Code:      code,
				CreatedAt: now,
				Expires:   now.Add(10 * time.Minute),
			}, nil
		},
	}
}

func TestRegister_Success(t *testing.T) {
	storage := registerStorage("123456")
	var savedUser domain.User
	storage.SaveUserFunc = func(user domain.User) error {
		savedUser = user
		return nil
	}
	codeDeleted := false
	storage.DeleteVerificationCodeFunc = func(email string) error {
		codeDeleted = true
		return nil
	}
	auth := NewAuth(storage, &MockEmail{}, &MockJwt{}, testConfig())

	user, token, err := auth.Register("alice", "Alice@Example.com", "secret123", "123456")

	require.NoError(t, err)
	assert.NotEmpty(t, user.Id)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "token-"+user.Id, token)
	assert.True(t, codeDeleted, "code must be consumed")
	assert.Equal(t, savedUser.Id, user.Id)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(savedUser.PasswordHash), []byte("secret123")))
	assert.NotEqual(t, "secret123", savedUser.PasswordHash)
}

func TestRegister_TokenResolvesToCreatedUser(t *testing.T) {
	storage := registerStorage("123456")
	tokens := jwt.New("test-secret", time.Hour)
	auth := NewAuth(storage, &MockEmail{}, tokens, testConfig())

	user, token, err := auth.Register("alice", "alice@example.com", "secret123", "123456")
	require.NoError(t, err)

	decoded, err := tokens.DecodeToken(token)
	require.NoError(t, err)
	claims, ok := decoded.Claims.(jwtlib.MapClaims)
	require.True(t, ok)
	assert.Equal(t, user.Id, claims["uid"])
	assert.Equal(t, "alice@example.com", claims["email"])
}

func TestRegister_WrongCode(t *testing.T) {
	saved := false
	storage := registerStorage("123456")
	storage.SaveUserFunc = func(user domain.User) error {
		saved = true
		return nil
	}
	auth := NewAuth(storage, &MockEmail{}, &MockJwt{}, testConfig())

	_, _, err := auth.Register("alice", "alice@example.com", "secret123", "654321")

	assert.Equal(t, http.StatusBadRequest, statusCode(t, err))
	assert.False(t, saved)
}

func TestRegister_ExpiredCode(t *testing.T) {
	now := time.Now().UTC()
	storage := &MockAuthStorage{
		VerificationCodeFunc: func(email string) (domain.VerificationCode, error) {
			return domain.VerificationCode{
				Email:     email,
				Code:      "123456",
				CreatedAt: now.Add(-20 * time.Minute),
				Expires:   now.Add(-10 * time.Minute),
			}, nil
		},
	}
	auth := NewAuth(storage, &MockEmail{}, &MockJwt{}, testConfig())

	_, _, err := auth.Register("alice", "alice@example.com", "secret123", "123456")

	assert.Equal(t, http.StatusBadRequest, statusCode(t, err))
}

func TestRegister_NoPendingCode(t *testing.T) {
	auth := NewAuth(&MockAuthStorage{}, &MockEmail{}, &MockJwt{}, testConfig())

	_, _, err := auth.Register("alice", "alice@example.com", "secret123", "123456")

	assert.Equal(t, http.StatusBadRequest, statusCode(t, err))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	storage := registerStorage("123456")
	storage.UserByEmailFunc = func(email string) (domain.User, error) {
		return domain.User{Id: "u-1", Email: email}, nil
	}
	auth := NewAuth(storage, &MockEmail{}, &MockJwt{}, testConfig())

	_, _, err := auth.Register("alice", "alice@example.com", "secret123", "123456")

	assert.Equal(t, http.StatusConflict, statusCode(t, err))
}

// --- Login ---

func loginStorage(t *testing.T, password string) *MockAuthStorage {
	t.Helper()
	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	require.NoError(t, err)
	return &MockAuthStorage{
		UserByEmailFunc: func(email string) (domain.User, error) {
			return domain.User{Id: "u-1", Username: "alice", Email: email, PasswordHash: string(passHash)}, nil
		},
	}
}

func TestLogin_Success(t *testing.T) {
	auth := NewAuth(loginStorage(t, "secret123"), &MockEmail{}, &MockJwt{}, testConfig())

	user, token, err := auth.Login("alice@example.com", "secret123")

	require.NoError(t, err)
	assert.Equal(t, "u-1", user.Id)
	assert.Equal(t, "token-u-1", token)
}

func TestLogin_WrongPassword(t *testing.T) {
	auth := NewAuth(loginStorage(t, "secret123"), &MockEmail{}, &MockJwt{}, testConfig())

	_, _, err := auth.Login("alice@example.com", "wrong")

	assert.Equal(t, http.StatusUnauthorized, statusCode(t, err))
	assert.Contains(t, err.Error(), "Invalid email or password")
}

func TestLogin_UnknownEmail(t *testing.T) {
	auth := NewAuth(&MockAuthStorage{}, &MockEmail{}, &MockJwt{}, testConfig())

	_, _, err := auth.Login("nobody@example.com", "secret123")

	assert.Equal(t, http.StatusUnauthorized, statusCode(t, err))
	assert.Contains(t, err.Error(), "Invalid email or password")
}

func TestLogin_SameMessageForUnknownEmailAndWrongPassword(t *testing.T) {
	withUser := NewAuth(loginStorage(t, "secret123"), &MockEmail{}, &MockJwt{}, testConfig())
	withoutUser := NewAuth(&MockAuthStorage{}, &MockEmail{}, &MockJwt{}, testConfig())

	_, _, errWrongPass := withUser.Login("alice@example.com", "wrong")
	_, _, errNoUser := withoutUser.Login("nobody@example.com", "secret123")

	assert.Equal(t, errWrongPass.Error(), errNoUser.Error())
}

// --- ResetPassword ---

func TestResetPassword_Success(t *testing.T) {
	now := time.Now().UTC()
	var updatedEmail, updatedHash string
	codeDeleted := false
	storage := &MockAuthStorage{
		UserByEmailFunc: func(email string) (domain.User, error) {
			return domain.User{Id: "u-1", Email: email}, nil
		},
		VerificationCodeFunc: func(email string) (domain.VerificationCode, error) {
			return domain.VerificationCode{Email: email, Code: "123456", CreatedAt: now, Expires: now.Add(10 * time.Minute)}, nil
		},
		DeleteVerificationCodeFunc: func(email string) error {
			codeDeleted = true
			return nil
		},
		UpdatePasswordFunc: func(email, passwordHash string) error {
			updatedEmail = email
			updatedHash = passwordHash
			return nil
		},
	}
	auth := NewAuth(storage, &MockEmail{}, &MockJwt{}, testConfig())

	err := auth.ResetPassword("Alice@Example.com", "123456", "newsecret")

	require.NoError(t, err)
	assert.True(t, codeDeleted)
	assert.Equal(t, "alice@example.com", updatedEmail)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updatedHash), []byte("newsecret")))
}

func TestResetPassword_UnknownUser(t *testing.T) {
	auth := NewAuth(&MockAuthStorage{}, &MockEmail{}, &MockJwt{}, testConfig())

	err := auth.ResetPassword("nobody@example.com", "123456", "newsecret")

	assert.Equal(t, http.StatusNotFound, statusCode(t, err))
}

func TestResetPassword_WrongCode(t *testing.T) {
	now := time.Now().UTC()
	updated := false
	storage := &MockAuthStorage{
		UserByEmailFunc: func(email string) (domain.User, error) {
			return domain.User{Id: "u-1", Email: email}, nil
		},
		VerificationCodeFunc: func(email string) (domain.VerificationCode, error) {
			return domain.VerificationCode{Email: email, Code: "123456", CreatedAt: now, Expires: now.Add(10 * time.Minute)}, nil
		},
		UpdatePasswordFunc: func(email, passwordHash string) error {
			updated = true
			return nil
		},
	}
	auth := NewAuth(storage, &MockEmail{}, &MockJwt{}, testConfig())

	err := auth.ResetPassword("alice@example.com", "000000", "newsecret")

	assert.Equal(t, http.StatusBadRequest, statusCode(t, err))
	assert.False(t, updated)
}
