package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/artem13815/jobtrack/pkg/mailer"
	"github.com/artem13815/jobtrack/pkg/validation"
)

const (
	bcryptCost     = 12
	otpTTL         = 5 * time.Minute
	resetTokenTTL  = 30 * time.Minute
	minPasswordLen = 6
)

var (
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	emailRe    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// AuthUseCase describes registration, authentication and credential flows.
type AuthUseCase interface {
	Register(ctx context.Context, in RegisterInput) (AuthResult, error)
	Login(ctx context.Context, login, password string) (AuthResult, error)
	VerifyEmail(ctx context.Context, email, otp string) error
	ResendVerification(ctx context.Context, email string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error
	Deactivate(ctx context.Context, userID uuid.UUID, password string) error
	CheckUsername(ctx context.Context, username string) (bool, error)
}

type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type AuthResult struct {
	User  User
	Token string
}

type authService struct {
	repo        UserRepository
	tokens      TokenGenerator
	mail        mailer.Sender
	frontendURL string
	log         *zap.Logger
}

// NewAuthService returns the default implementation of AuthUseCase.
func NewAuthService(repo UserRepository, tokens TokenGenerator, mail mailer.Sender, frontendURL string, log *zap.Logger) AuthUseCase {
	return &authService{repo: repo, tokens: tokens, mail: mail, frontendURL: frontendURL, log: log}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	verr := &validation.Error{}
	if len(in.Username) < 3 || len(in.Username) > 30 {
		verr.Add("username", "Username must be between 3 and 30 characters")
	} else if !usernameRe.MatchString(in.Username) {
		verr.Add("username", "Username can only contain letters, numbers, underscores, and hyphens")
	}
	if !emailRe.MatchString(in.Email) {
		verr.Add("email", "Please provide a valid email")
	}
	if len(in.Password) < minPasswordLen {
		verr.Add("password", "Password must be at least 6 characters long")
	}
	if len(in.FirstName) > 50 {
		verr.Add("firstName", "First name cannot exceed 50 characters")
	}
	if len(in.LastName) > 50 {
		verr.Add("lastName", "Last name cannot exceed 50 characters")
	}
	if verr.HasErrors() {
		return AuthResult{}, verr
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	otp, err := generateOTP()
	if err != nil {
		return AuthResult{}, fmt.Errorf("generate otp: %w", err)
	}
	otpExpires := now.Add(otpTTL)

	user := User{
		ID:               uuid.New(),
		Username:         in.Username,
		Email:            in.Email,
		PasswordHash:     string(hash),
		Profile:          DefaultProfile(strings.TrimSpace(in.FirstName), strings.TrimSpace(in.LastName)),
		Preferences:      DefaultPreferences(),
		IsActive:         true,
		VerifyOTPHash:    hashSecret(otp),
		VerifyOTPExpires: &otpExpires,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return AuthResult{}, err
	}

	// Verification mail failure must not abort registration.
	if err := s.mail.SendVerificationOTP(ctx, user.Email, user.Profile.FirstName, otp); err != nil {
		s.log.Warn("verification email not sent", zap.String("email", user.Email), zap.Error(err))
	}

	token, err := s.tokens.Generate(ctx, user)
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue token: %w", err)
	}
	return AuthResult{User: user, Token: token}, nil
}

func (s *authService) Login(ctx context.Context, login, password string) (AuthResult, error) {
	login = strings.ToLower(strings.TrimSpace(login))
	if login == "" || password == "" {
		return AuthResult{}, ErrInvalidCredentials
	}
	user, err := s.repo.GetByLogin(ctx, login)
	if err != nil {
		return AuthResult{}, ErrInvalidCredentials
	}
	if !user.IsActive {
		return AuthResult{}, ErrAccountDeactivated
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return AuthResult{}, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	user.LastLogin = &now
	user.UpdatedAt = now
	if err := s.repo.Update(ctx, user); err != nil {
		return AuthResult{}, err
	}

	token, err := s.tokens.Generate(ctx, user)
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue token: %w", err)
	}
	return AuthResult{User: user, Token: token}, nil
}

func (s *authService) VerifyEmail(ctx context.Context, email, otp string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return ErrInvalidToken
	}
	if user.EmailVerified {
		return nil
	}
	if user.VerifyOTPHash == "" || user.VerifyOTPExpires == nil || time.Now().UTC().After(*user.VerifyOTPExpires) {
		return ErrInvalidToken
	}
	if subtle.ConstantTimeCompare([]byte(user.VerifyOTPHash), []byte(hashSecret(otp))) != 1 {
		return ErrInvalidToken
	}
	user.EmailVerified = true
	user.VerifyOTPHash = ""
	user.VerifyOTPExpires = nil
	user.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, user)
}

func (s *authService) ResendVerification(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil || user.EmailVerified {
		// No account enumeration: report success either way.
		return nil
	}
	otp, err := generateOTP()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}
	expires := time.Now().UTC().Add(otpTTL)
	user.VerifyOTPHash = hashSecret(otp)
	user.VerifyOTPExpires = &expires
	user.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, user); err != nil {
		return err
	}
	if err := s.mail.SendVerificationOTP(ctx, user.Email, user.Profile.FirstName, otp); err != nil {
		s.log.Warn("verification email not sent", zap.String("email", user.Email), zap.Error(err))
	}
	return nil
}

func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil || !user.IsActive {
		// No account enumeration.
		return nil
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}
	token := hex.EncodeToString(raw)
	expires := time.Now().UTC().Add(resetTokenTTL)
	user.ResetTokenHash = hashSecret(token)
	user.ResetExpires = &expires
	user.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, user); err != nil {
		return err
	}

	resetURL := s.frontendURL + "/reset-password?token=" + token
	if err := s.mail.SendPasswordReset(ctx, user.Email, user.Profile.FirstName, resetURL); err != nil {
		// The flow is useless without the mail: roll the token back and fail.
		user.ResetTokenHash = ""
		user.ResetExpires = nil
		if uerr := s.repo.Update(ctx, user); uerr != nil {
			s.log.Error("reset token rollback failed", zap.String("email", user.Email), zap.Error(uerr))
		}
		return fmt.Errorf("send reset email: %w", err)
	}
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return validation.Single("password", "Password must be at least 6 characters long")
	}
	user, err := s.repo.GetByResetTokenHash(ctx, hashSecret(token))
	if err != nil {
		return ErrInvalidToken
	}
	if user.ResetExpires == nil || time.Now().UTC().After(*user.ResetExpires) {
		return ErrInvalidToken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hash)
	user.ResetTokenHash = ""
	user.ResetExpires = nil
	user.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, user)
}

func (s *authService) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	if len(next) < minPasswordLen {
		return validation.Single("newPassword", "New password must be at least 6 characters long")
	}
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return ErrNotFound
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
		return ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hash)
	user.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, user)
}

func (s *authService) Deactivate(ctx context.Context, userID uuid.UUID, password string) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return ErrNotFound
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return ErrInvalidCredentials
	}
	user.IsActive = false
	user.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, user)
}

func (s *authService) CheckUsername(ctx context.Context, username string) (bool, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if len(username) < 3 || len(username) > 30 || !usernameRe.MatchString(username) {
		return false, validation.Single("username", "Invalid username format")
	}
	_, err := s.repo.GetByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if errors.Is(err, ErrNotFound) {
		return true, nil
	}
	return false, err
}

func hashSecret(v string) string {
	sum := sha256.Sum256([]byte(v))
	return hex.EncodeToString(sum[:])
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
