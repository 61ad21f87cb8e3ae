package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/lib/pq"
	"github.com/mdpress/mdpress/internal/domain"
	internal_errors "github.com/mdpress/mdpress/internal/errors"
)

// uniqueViolation is the Postgres error code raised when the users email
// unique constraint is hit by a concurrent insert.
const uniqueViolation = "23505"

// =========================================================================
// Public methods (satisfy the service.AuthStorage interface)
// =========================================================================

// SaveUser is the public entry point for creating a new user. It wraps the
// core logic in a transaction to ensure the operation is atomic.
func (s *Storage) SaveUser(user domain.User) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.saveUser(tx, user)
	})
}

// UserByEmail is a public, read-only method to fetch a user by their email.
func (s *Storage) UserByEmail(email string) (domain.User, error) {
	return s.userBy(s.db, "email", email)
}

// UserById resolves a token subject to a live user record.
func (s *Storage) UserById(id string) (domain.User, error) {
	return s.userBy(s.db, "id", id)
}

// UpdatePassword is the public entry point for changing a user's password.
// It manages the transaction for this security-sensitive operation.
func (s *Storage) UpdatePassword(email, passwordHash string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.updatePassword(tx, email, passwordHash)
	})
}

// ReplaceVerificationCode atomically supersedes any pending code for the
// email. A single upsert keyed by email leaves exactly one pending code
// even under concurrent sends.
func (s *Storage) ReplaceVerificationCode(code domain.VerificationCode) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.replaceVerificationCode(tx, code)
	})
}

// VerificationCode is a public, read-only method returning the pending
// unexpired code for an email.
func (s *Storage) VerificationCode(email string) (domain.VerificationCode, error) {
	return s.verificationCode(s.db, email)
}

// DeleteVerificationCode consumes a pending code.
func (s *Storage) DeleteVerificationCode(email string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.deleteVerificationCode(tx, email)
	})
}

// DeleteExpiredVerificationCodes removes codes past their expiry. Used by
// the periodic sweep; not part of any request path.
func (s *Storage) DeleteExpiredVerificationCodes() (int64, error) {
	result, err := s.db.Exec("DELETE FROM verification_codes WHERE expires_at <= now()")
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired verification codes: %w", err)
	}
	return result.RowsAffected()
}

// =========================================================================
// Internal methods (core database logic)
// These methods accept a Querier and are transaction-agnostic.
// =========================================================================

func (s *Storage) saveUser(q Querier, user domain.User) error {
	_, err := q.Exec(`
        INSERT INTO users(id, username, email, password_hash, created_at)
        VALUES($1, $2, $3, $4, $5)`,
		user.Id, user.Username, user.Email, user.PasswordHash, user.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return &internal_errors.ErrorWithStatusCode{Message: "Email already registered", StatusCode: http.StatusConflict}
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (s *Storage) userBy(q Querier, column, value string) (domain.User, error) {
	var user domain.User
	query := fmt.Sprintf(`
        SELECT id, username, email, password_hash, (created_at at time zone 'utc')
        FROM users WHERE %s = $1`, pq.QuoteIdentifier(column))
	err := q.QueryRow(query, value).Scan(&user.Id, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, &internal_errors.ErrorWithStatusCode{Message: "User not found", StatusCode: http.StatusNotFound}
		}
		return domain.User{}, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

func (s *Storage) updatePassword(q Querier, email, passwordHash string) error {
	result, err := q.Exec("UPDATE users SET password_hash = $1 WHERE email = $2", passwordHash, email)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows for password update: %w", err)
	}
	if rowsAffected == 0 {
		return &internal_errors.ErrorWithStatusCode{Message: "User not found for password update", StatusCode: http.StatusNotFound}
	}
	return nil
}

func (s *Storage) replaceVerificationCode(q Querier, code domain.VerificationCode) error {
	_, err := q.Exec(`
        INSERT INTO verification_codes(email, code, created_at, expires_at)
        VALUES($1, $2, $3, $4)
        ON CONFLICT (email) DO UPDATE
        SET code = EXCLUDED.code, created_at = EXCLUDED.created_at, expires_at = EXCLUDED.expires_at`,
		code.Email, code.Code, code.CreatedAt, code.Expires,
	)
	if err != nil {
		return fmt.Errorf("failed to replace verification code: %w", err)
	}
	return nil
}

func (s *Storage) verificationCode(q Querier, email string) (domain.VerificationCode, error) {
	var code domain.VerificationCode
	err := q.QueryRow(`
        SELECT email, code, (created_at at time zone 'utc'), (expires_at at time zone 'utc')
        FROM verification_codes WHERE email = $1 AND expires_at > now()`,
		email,
	).Scan(&code.Email, &code.Code, &code.CreatedAt, &code.Expires)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.VerificationCode{}, &internal_errors.ErrorWithStatusCode{Message: "Verification code not found", StatusCode: http.StatusNotFound}
		}
		return domain.VerificationCode{}, fmt.Errorf("failed to query verification code: %w", err)
	}
	return code, nil
}

func (s *Storage) deleteVerificationCode(q Querier, email string) error {
	result, err := q.Exec("DELETE FROM verification_codes WHERE email = $1", email)
	if err != nil {
		return fmt.Errorf("failed to delete verification code: %w", err)
	}
	rowsDeleted, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows for verification code deletion: %w", err)
	}
	if rowsDeleted == 0 {
		return &internal_errors.ErrorWithStatusCode{Message: "Verification code not found for deletion", StatusCode: http.StatusNotFound}
	}
	return nil
}
