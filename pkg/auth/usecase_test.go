package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/artem13815/jobtrack/pkg/validation"
)

// memRepo is an in-memory UserRepository for use case tests.
type memRepo struct {
	users map[uuid.UUID]User
}

func newMemRepo() *memRepo { return &memRepo{users: make(map[uuid.UUID]User)} }

func (r *memRepo) Create(_ context.Context, user User) error {
	for _, u := range r.users {
		if u.Username == user.Username {
			return ErrUsernameTaken
		}
		if u.Email == user.Email {
			return ErrEmailTaken
		}
	}
	r.users[user.ID] = user
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id uuid.UUID) (User, error) {
	u, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (r *memRepo) GetByLogin(_ context.Context, login string) (User, error) {
	for _, u := range r.users {
		if u.Username == login || u.Email == login {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *memRepo) GetByUsername(_ context.Context, username string) (User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *memRepo) GetByEmail(_ context.Context, email string) (User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *memRepo) GetByResetTokenHash(_ context.Context, hash string) (User, error) {
	for _, u := range r.users {
		if u.ResetTokenHash != "" && u.ResetTokenHash == hash {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *memRepo) Update(_ context.Context, user User) error {
	if _, ok := r.users[user.ID]; !ok {
		return ErrNotFound
	}
	r.users[user.ID] = user
	return nil
}

// stubMailer captures sent secrets and can be told to fail.
type stubMailer struct {
	lastOTP      string
	lastResetURL string
	otpErr       error
	resetErr     error
}

func (m *stubMailer) SendVerificationOTP(_ context.Context, _, _, otp string) error {
	m.lastOTP = otp
	return m.otpErr
}

func (m *stubMailer) SendPasswordReset(_ context.Context, _, _, resetURL string) error {
	m.lastResetURL = resetURL
	return m.resetErr
}

type stubTokens struct{ err error }

func (g stubTokens) Generate(_ context.Context, user User) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	return "token-for-" + user.Username, nil
}

func newTestService(repo UserRepository, mail *stubMailer) AuthUseCase {
	return NewAuthService(repo, stubTokens{}, mail, "https://app.example.com", zap.NewNop())
}

func seedUser(t *testing.T, repo *memRepo, password string) User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := User{
		ID:           uuid.New(),
		Username:     "jdoe",
		Email:        "jdoe@example.com",
		PasswordHash: string(hash),
		Profile:      DefaultProfile("Jane", "Doe"),
		Preferences:  DefaultPreferences(),
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	repo.users[user.ID] = user
	return user
}

func TestRegisterAppliesDefaults(t *testing.T) {
	repo := newMemRepo()
	mail := &stubMailer{}
	svc := newTestService(repo, mail)

	res, err := svc.Register(context.Background(), RegisterInput{
		Username:  " NewUser ",
		Email:     "New.User@Example.com",
		Password:  "hunter22",
		FirstName: "New",
	})
	require.NoError(t, err)

	assert.Equal(t, "newuser", res.User.Username)
	assert.Equal(t, "new.user@example.com", res.User.Email)
	assert.Equal(t, "token-for-newuser", res.Token)
	assert.True(t, res.User.IsActive)
	assert.False(t, res.User.EmailVerified)
	assert.Equal(t, "fresher", res.User.Profile.Experience)
	assert.Equal(t, 25, res.User.Profile.Goals.WeeklyApplicationTarget)
	assert.Equal(t, "daily", res.User.Preferences.ReminderFrequency)

	// A verification code goes out and only its hash is stored.
	require.Len(t, mail.lastOTP, 6)
	assert.NotEqual(t, mail.lastOTP, res.User.VerifyOTPHash)
	assert.NotEmpty(t, res.User.VerifyOTPHash)
	require.NotNil(t, res.User.VerifyOTPExpires)
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(newMemRepo(), &stubMailer{})

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "ab",
		Email:    "not-an-email",
		Password: "short",
	})
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	fields := make(map[string]string, len(verr.Fields))
	for _, f := range verr.Fields {
		fields[f.Field] = f.Message
	}
	assert.Equal(t, "Username must be between 3 and 30 characters", fields["username"])
	assert.Equal(t, "Please provide a valid email", fields["email"])
	assert.Equal(t, "Password must be at least 6 characters long", fields["password"])
}

func TestRegisterRejectsBadUsernameChars(t *testing.T) {
	svc := newTestService(newMemRepo(), &stubMailer{})

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "bad user!",
		Email:    "ok@example.com",
		Password: "hunter22",
	})
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields[0].Message, "letters, numbers")
}

func TestRegisterMailFailureIsNotFatal(t *testing.T) {
	repo := newMemRepo()
	mail := &stubMailer{otpErr: errors.New("smtp down")}
	svc := newTestService(repo, mail)

	res, err := svc.Register(context.Background(), RegisterInput{
		Username: "resilient",
		Email:    "r@example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Len(t, repo.users, 1)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, &stubMailer{})
	seedUser(t, repo, "hunter22")

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "jdoe",
		Email:    "other@example.com",
		Password: "hunter22",
	})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestLoginByUsernameAndEmail(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, &stubMailer{})
	seedUser(t, repo, "hunter22")

	res, err := svc.Login(context.Background(), "jdoe", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "token-for-jdoe", res.Token)
	require.NotNil(t, res.User.LastLogin)

	res, err = svc.Login(context.Background(), "JDoe@Example.COM", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "jdoe", res.User.Username)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, &stubMailer{})
	seedUser(t, repo, "hunter22")

	_, err := svc.Login(context.Background(), "jdoe", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownUserSameError(t *testing.T) {
	svc := newTestService(newMemRepo(), &stubMailer{})

	_, err := svc.Login(context.Background(), "ghost", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginDeactivatedAccount(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, &stubMailer{})
	user := seedUser(t, repo, "hunter22")
	user.IsActive = false
	repo.users[user.ID] = user

	_, err := svc.Login(context.Background(), "jdoe", "hunter22")
	assert.ErrorIs(t, err, ErrAccountDeactivated)
}

func TestVerifyEmailFlow(t *testing.T) {
	repo := newMemRepo()
	mail := &stubMailer{}
	svc := newTestService(repo, mail)

	res, err := svc.Register(context.Background(), RegisterInput{
		Username: "verifyme",
		Email:    "v@example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)

	// Wrong code first, then the one that was mailed.
	wrong := "000000"
	if mail.lastOTP == wrong {
		wrong = "000001"
	}
	err = svc.VerifyEmail(context.Background(), "v@example.com", wrong)
	assert.ErrorIs(t, err, ErrInvalidToken)

	err = svc.VerifyEmail(context.Background(), "V@Example.com", mail.lastOTP)
	require.NoError(t, err)

	stored := repo.users[res.User.ID]
	assert.True(t, stored.EmailVerified)
	assert.Empty(t, stored.VerifyOTPHash)
	assert.Nil(t, stored.VerifyOTPExpires)

	// Verifying again is a no-op, not an error.
	assert.NoError(t, svc.VerifyEmail(context.Background(), "v@example.com", "garbage"))
}

func TestVerifyEmailExpiredCode(t *testing.T) {
	repo := newMemRepo()
	mail := &stubMailer{}
	svc := newTestService(repo, mail)

	res, err := svc.Register(context.Background(), RegisterInput{
		Username: "lateuser",
		Email:    "late@example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)

	stored := repo.users[res.User.ID]
	past := time.Now().UTC().Add(-time.Minute)
	stored.VerifyOTPExpires = &past
	repo.users[res.User.ID] = stored

	err = svc.VerifyEmail(context.Background(), "late@example.com", mail.lastOTP)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestForgotPasswordNoEnumeration(t *testing.T) {
	mail := &stubMailer{}
	svc := newTestService(newMemRepo(), mail)

	// Unknown address reports success and sends nothing.
	require.NoError(t, svc.ForgotPassword(context.Background(), "nobody@example.com"))
	assert.Empty(t, mail.lastResetURL)
}

func TestForgotPasswordMailFailureRollsBackToken(t *testing.T) {
	repo := newMemRepo()
	mail := &stubMailer{resetErr: errors.New("smtp down")}
	svc := newTestService(repo, mail)
	user := seedUser(t, repo, "hunter22")

	err := svc.ForgotPassword(context.Background(), user.Email)
	require.Error(t, err)

	stored := repo.users[user.ID]
	assert.Empty(t, stored.ResetTokenHash)
	assert.Nil(t, stored.ResetExpires)
}

func TestResetPasswordFlow(t *testing.T) {
	repo := newMemRepo()
	mail := &stubMailer{}
	svc := newTestService(repo, mail)
	user := seedUser(t, repo, "hunter22")

	require.NoError(t, svc.ForgotPassword(context.Background(), user.Email))
	require.NotEmpty(t, mail.lastResetURL)
	token := mail.lastResetURL[strings.Index(mail.lastResetURL, "token=")+len("token="):]

	require.NoError(t, svc.ResetPassword(context.Background(), token, "newsecret"))

	stored := repo.users[user.ID]
	assert.Empty(t, stored.ResetTokenHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("newsecret")))

	// The token is single-use.
	err := svc.ResetPassword(context.Background(), token, "anothersecret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestResetPasswordExpiredToken(t *testing.T) {
	repo := newMemRepo()
	mail := &stubMailer{}
	svc := newTestService(repo, mail)
	user := seedUser(t, repo, "hunter22")

	require.NoError(t, svc.ForgotPassword(context.Background(), user.Email))
	token := mail.lastResetURL[strings.Index(mail.lastResetURL, "token=")+len("token="):]

	stored := repo.users[user.ID]
	past := time.Now().UTC().Add(-time.Minute)
	stored.ResetExpires = &past
	repo.users[user.ID] = stored

	err := svc.ResetPassword(context.Background(), token, "newsecret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestResetPasswordTooShort(t *testing.T) {
	svc := newTestService(newMemRepo(), &stubMailer{})

	err := svc.ResetPassword(context.Background(), "whatever", "abc")
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "password", verr.Fields[0].Field)
}

func TestChangePassword(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, &stubMailer{})
	user := seedUser(t, repo, "hunter22")

	err := svc.ChangePassword(context.Background(), user.ID, "wrong", "newsecret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword(context.Background(), user.ID, "hunter22", "newsecret"))
	stored := repo.users[user.ID]
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("newsecret")))
}

func TestDeactivateRequiresPassword(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, &stubMailer{})
	user := seedUser(t, repo, "hunter22")

	err := svc.Deactivate(context.Background(), user.ID, "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, svc.Deactivate(context.Background(), user.ID, "hunter22"))
	assert.False(t, repo.users[user.ID].IsActive)
}

func TestCheckUsername(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, &stubMailer{})
	seedUser(t, repo, "hunter22")

	available, err := svc.CheckUsername(context.Background(), "jdoe")
	require.NoError(t, err)
	assert.False(t, available)

	available, err = svc.CheckUsername(context.Background(), "Free_Name")
	require.NoError(t, err)
	assert.True(t, available)

	_, err = svc.CheckUsername(context.Background(), "x")
	var verr *validation.Error
	assert.ErrorAs(t, err, &verr)
}
