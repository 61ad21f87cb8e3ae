package service

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mdpress/mdpress/internal/config"
	"github.com/mdpress/mdpress/internal/domain"
	"github.com/mdpress/mdpress/internal/errors"
	"github.com/mdpress/mdpress/internal/logger"
	"github.com/mdpress/mdpress/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	SendVerificationCode(email, purpose string) error
	Register(username, email, password, code string) (domain.User, string, error)
	Login(email, password string) (domain.User, string, error)
	ResetPassword(email, code, newPassword string) error
}

type Auth struct {
	storage AuthStorage
	email   Email
	jwt     Jwt
	cfg     *config.Config
}

type AuthStorage interface {
	SaveUser(user domain.User) error
	UserByEmail(email string) (domain.User, error)
	UserById(id string) (domain.User, error)
	UpdatePassword(email, passwordHash string) error
	ReplaceVerificationCode(code domain.VerificationCode) error
	VerificationCode(email string) (domain.VerificationCode, error)
	DeleteVerificationCode(email string) error
}

type Email interface {
	Send(recipientEmail, subject, body string) error
	IsCorrect(email string) error
}

type Jwt interface {
	NewToken(user domain.User) (string, error)
}

func NewAuth(storage AuthStorage, email Email, jwt Jwt, cfg *config.Config) *Auth {
	return &Auth{
		storage: storage,
		email:   email,
		jwt:     jwt,
		cfg:     cfg,
	}
}

// SendVerificationCode generates a one-time numeric code, atomically
// replaces any pending code for the email, and dispatches it. The caller
// never sees the code itself.
func (a *Auth) SendVerificationCode(email, purpose string) error {
	email = strings.ToLower(email)

	if err := a.email.IsCorrect(email); err != nil {
		return err
	}

	if purpose == "" {
		purpose = domain.PurposeRegister
	}
	if purpose != domain.PurposeRegister && purpose != domain.PurposeReset {
		return &errors.ErrorWithStatusCode{Message: "Unknown verification purpose", StatusCode: http.StatusBadRequest}
	}

	_, err := a.storage.UserByEmail(email)
	switch purpose {
	case domain.PurposeRegister:
		if err == nil {
			return &errors.ErrorWithStatusCode{Message: "Email already registered", StatusCode: http.StatusConflict}
		}
		if !errors.IsNotFound(err) {
			return err
		}
	case domain.PurposeReset:
		if errors.IsNotFound(err) {
			return &errors.ErrorWithStatusCode{Message: "Email not registered", StatusCode: http.StatusNotFound}
		}
		if err != nil {
			return err
		}
	}

	code := utils.GenerateVerificationCode(a.cfg.Public.CodeLen)
	now := time.Now().UTC()
	err = a.storage.ReplaceVerificationCode(domain.VerificationCode{
		Email:     email,
		Code:      code,
		CreatedAt: now,
		Expires:   now.Add(a.cfg.CodeTTL()),
	})
	if err != nil {
		return err
	}

	emailBody := fmt.Sprintf(`
		Hello,

		Your verification code below

		%s

		The code is valid for %d minutes. If you did not request this, please ignore this email.
	`, code, a.cfg.Public.CodeTTLMinutes)

	if err := a.email.Send(email, "Your verification code", emailBody); err != nil {
		// The code stays persisted: the client may retry delivery by
		// requesting a new code, which replaces this one.
		logger.Log.Error("failed to send verification code", "email", email, "error", err)
		return &errors.ErrorWithStatusCode{Message: "Failed to send verification code", StatusCode: http.StatusInternalServerError}
	}
	return nil
}

// Register consumes a pending verification code and creates the user.
func (a *Auth) Register(username, email, password, code string) (domain.User, string, error) {
	email = strings.ToLower(email)

	if err := a.email.IsCorrect(email); err != nil {
		return domain.User{}, "", err
	}

	_, err := a.storage.UserByEmail(email)
	if err == nil {
		return domain.User{}, "", &errors.ErrorWithStatusCode{Message: "Email already registered", StatusCode: http.StatusConflict}
	}
	if !errors.IsNotFound(err) {
		return domain.User{}, "", err
	}

	if err := a.consumeVerificationCode(email, code); err != nil {
		return domain.User{}, "", err
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Error("failed to hash password", "error", err)
		return domain.User{}, "", err
	}

	user := domain.User{
		Id:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(passHash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := a.storage.SaveUser(user); err != nil {
		return domain.User{}, "", err
	}

	token, err := a.jwt.NewToken(user)
	if err != nil {
		logger.Log.Error("failed to create jwt token", "user_id", user.Id, "error", err)
		return domain.User{}, "", err
	}

	return user, token, nil
}

// Login checks credentials and returns the user with a fresh token.
// Unknown email and wrong password produce the same message to avoid
// leaking which accounts exist.
func (a *Auth) Login(email, password string) (domain.User, string, error) {
	email = strings.ToLower(email)

	if err := a.email.IsCorrect(email); err != nil {
		return domain.User{}, "", err
	}

	user, err := a.storage.UserByEmail(email)
	if err != nil {
		if errors.IsNotFound(err) {
			return domain.User{}, "", &errors.ErrorWithStatusCode{Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
		}
		return domain.User{}, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.Log.Error("password verification failed", "user_id", user.Id, "error", err)
		return domain.User{}, "", &errors.ErrorWithStatusCode{Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	}

	token, err := a.jwt.NewToken(user)
	if err != nil {
		logger.Log.Error("failed to create jwt token", "user_id", user.Id, "error", err)
		return domain.User{}, "", err
	}

	return user, token, nil
}

// ResetPassword consumes a pending verification code and overwrites the
// user's password hash.
func (a *Auth) ResetPassword(email, code, newPassword string) error {
	email = strings.ToLower(email)

	if err := a.email.IsCorrect(email); err != nil {
		return err
	}

	if _, err := a.storage.UserByEmail(email); err != nil {
		if errors.IsNotFound(err) {
			return &errors.ErrorWithStatusCode{Message: "User not found", StatusCode: http.StatusNotFound}
		}
		return err
	}

	if err := a.consumeVerificationCode(email, code); err != nil {
		return err
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Error("failed to hash password", "error", err)
		return err
	}

	return a.storage.UpdatePassword(email, string(passHash))
}

// consumeVerificationCode validates the pending code for the email and
// deletes it, so each code is usable at most once.
func (a *Auth) consumeVerificationCode(email, code string) error {
	invalid := &errors.ErrorWithStatusCode{Message: "Invalid or expired verification code", StatusCode: http.StatusBadRequest}

	pending, err := a.storage.VerificationCode(email)
	if err != nil {
		if errors.IsNotFound(err) {
			return invalid
		}
		return err
	}
	if pending.Expired(time.Now().UTC()) {
		return invalid
	}
	if pending.Code != code {
		return invalid
	}

	return a.storage.DeleteVerificationCode(email)
}
