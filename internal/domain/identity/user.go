package identity

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/smartfertilizer/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Role represents the authorization role of a user
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// IsValid reports whether the role is known
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Password cost for bcrypt
const bcryptCost = 12

const (
	minPasswordLength = 6
	maxPasswordLength = 72 // bcrypt limit, counted in bytes
	maxNameLength     = 100
	resetTokenBytes   = 32
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ErrInvalidResetToken is returned for unknown, consumed or expired reset tokens
var ErrInvalidResetToken = shared.NewDomainError(shared.CodeValidation, "Invalid or expired reset token")

// User represents a registered account
type User struct {
	shared.BaseEntity
	Name                string
	Email               string
	PasswordHash        string
	Role                Role
	ResetTokenHash      string
	ResetTokenExpiresAt *time.Time
	PasswordChangedAt   *time.Time
}

// NewUser creates a new user with a hashed password
func NewUser(name, email, password string) (*User, error) {
	var errs shared.FieldErrors
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)

	if name == "" {
		errs.Add("name", "Name is required", nil)
	} else if utf8.RuneCountInString(name) > maxNameLength {
		errs.Add("name", "Name cannot exceed 100 characters", nil)
	}
	if err := validateEmail(email); err != nil {
		errs.Add("email", err.Error(), nil)
	}
	if err := validatePassword(password); err != nil {
		errs.Add("password", err.Error(), nil)
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, shared.Wrap(err, shared.CodeInternal, "Failed to hash password")
	}

	return &User{
		BaseEntity:   shared.NewBaseEntity(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         RoleUser,
	}, nil
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// SetPassword validates and stores a new password hash
func (u *User) SetPassword(newPassword string, now time.Time) error {
	if err := validatePassword(newPassword); err != nil {
		return shared.NewValidationError(shared.FieldError{Field: "password", Message: err.Error()})
	}

	passwordHash, err := hashPassword(newPassword)
	if err != nil {
		return shared.Wrap(err, shared.CodeInternal, "Failed to hash password")
	}

	u.PasswordHash = passwordHash
	u.PasswordChangedAt = &now
	u.Touch(now)
	return nil
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IssueResetToken generates a single-use reset token.
// Only the SHA-256 digest is kept on the user; the raw token is returned to the caller once.
func (u *User) IssueResetToken(now time.Time, ttl time.Duration) (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", shared.Wrap(err, shared.CodeInternal, "Failed to generate reset token")
	}
	raw := hex.EncodeToString(buf)

	expiresAt := now.Add(ttl)
	u.ResetTokenHash = HashResetToken(raw)
	u.ResetTokenExpiresAt = &expiresAt
	u.Touch(now)
	return raw, nil
}

// HasValidResetToken reports whether rawToken matches the stored digest and has not expired
func (u *User) HasValidResetToken(rawToken string, now time.Time) bool {
	if u.ResetTokenHash == "" || u.ResetTokenExpiresAt == nil {
		return false
	}
	if !now.Before(*u.ResetTokenExpiresAt) {
		return false
	}
	digest := HashResetToken(rawToken)
	return subtle.ConstantTimeCompare([]byte(digest), []byte(u.ResetTokenHash)) == 1
}

// ResetPassword consumes a reset token and sets a new password.
// The password length is checked before the token so a short password never burns a valid token.
func (u *User) ResetPassword(rawToken, newPassword string, now time.Time) error {
	if err := validatePassword(newPassword); err != nil {
		return shared.NewValidationError(shared.FieldError{Field: "password", Message: err.Error()})
	}
	if !u.HasValidResetToken(rawToken, now) {
		return ErrInvalidResetToken
	}
	if err := u.SetPassword(newPassword, now); err != nil {
		return err
	}
	u.ClearResetToken()
	return nil
}

// ClearResetToken removes any pending reset token
func (u *User) ClearResetToken() {
	u.ResetTokenHash = ""
	u.ResetTokenExpiresAt = nil
}

// HashResetToken returns the hex SHA-256 digest stored for a raw reset token
func HashResetToken(rawToken string) string {
	sum := sha256.Sum256([]byte(rawToken))
	return hex.EncodeToString(sum[:])
}

// NormalizeEmail lower-cases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidatePasswordLength exposes the password rule for request validation
func ValidatePasswordLength(password string) error {
	return validatePassword(password)
}

// Validation functions

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return shared.NewDomainError(shared.CodeValidation, "Password must be at least 6 characters")
	}
	if len(password) > maxPasswordLength {
		return shared.NewDomainError(shared.CodeValidation, "Password cannot exceed 72 bytes")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return shared.NewDomainError(shared.CodeValidation, "Email is required")
	}
	if len(email) > 200 {
		return shared.NewDomainError(shared.CodeValidation, "Email cannot exceed 200 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError(shared.CodeValidation, "Please provide a valid email")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
