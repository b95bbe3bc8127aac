package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-storefront/internal/domain/apperror"
	"github.com/oksasatya/go-ddd-storefront/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-storefront/internal/domain/repository"
	"github.com/oksasatya/go-ddd-storefront/pkg/helpers"
	tpl "github.com/oksasatya/go-ddd-storefront/pkg/mailer/templates"
	"github.com/oksasatya/go-ddd-storefront/pkg/validation"
)

type AuthService struct {
	Users      repo.UserRepository
	Sessions   SessionStore
	JWT        *helpers.JWTManager
	Notifier   Notifier
	Logger     *logrus.Logger
	BcryptCost int
	SessionTTL time.Duration
	AppName    string
	LoginURL   string
	Clock      Clock
}

func NewAuthService(users repo.UserRepository, sessions SessionStore, jwt *helpers.JWTManager, notifier Notifier, logger *logrus.Logger, bcryptCost int, sessionTTL time.Duration) *AuthService {
	return &AuthService{
		Users:      users,
		Sessions:   sessions,
		JWT:        jwt,
		Notifier:   notifier,
		Logger:     logger,
		BcryptCost: bcryptCost,
		SessionTTL: sessionTTL,
	}
}

type SignupInput struct {
	Email           string
	Password        string
	ConfirmPassword string
}

// validatePassword applies the account password policy.
func validatePassword(field, password string) error {
	if err := validation.Var(password, "required,"+validation.PasswordRule); err != nil {
		return apperror.Invalid(field, validation.Message(err))
	}
	return nil
}

func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*entity.User, error) {
	email := entity.NormalizeEmail(in.Email)
	if err := validation.Var(email, "required,email"); err != nil {
		return nil, apperror.Invalid("email", validation.Message(err))
	}
	if err := validatePassword("password", in.Password); err != nil {
		return nil, err
	}
	if in.Password != in.ConfirmPassword {
		return nil, apperror.Invalid("confirmPassword", "passwords have to match")
	}

	existing, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperror.Upstream("get user by email", err)
	}
	if existing != nil {
		return nil, errEmailTaken()
	}

	hash, err := helpers.HashPassword(in.Password, s.BcryptCost)
	if err != nil {
		return nil, err
	}
	u := &entity.User{Email: email, PasswordHash: hash}
	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, errEmailTaken()
		}
		return nil, apperror.Upstream("create user", err)
	}
	signupsTotal.Add(1)

	s.notify(ctx, u.Email, tpl.SignupCompleted, tpl.NewEmailData(s.AppName, tpl.SignupCompleted, u.Email,
		tpl.WithLoginURL(s.LoginURL),
	))
	return u, nil
}

func errEmailTaken() error {
	return apperror.Invalid("email", "email exists already, please pick a different one")
}

// Login verifies credentials and stores a new session before returning it.
// Unknown email and wrong password fail the same way and take the same time.
func (s *AuthService) Login(ctx context.Context, email, password string) (*entity.Session, error) {
	email = entity.NormalizeEmail(email)
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperror.Upstream("get user by email", err)
	}
	if u == nil {
		helpers.BurnPasswordCheck(password)
		loginsFailed.Add(1)
		return nil, apperror.ErrAuthentication
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, password) {
		loginsFailed.Add(1)
		return nil, apperror.ErrAuthentication
	}

	csrf, err := helpers.RandomURLToken(32)
	if err != nil {
		return nil, err
	}
	now := s.Clock.now()
	sess := &entity.Session{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		CSRFToken: csrf,
		CreatedAt: now,
		ExpiresAt: now.Add(s.SessionTTL),
	}
	if err := s.Sessions.Save(ctx, sess); err != nil {
		return nil, apperror.Upstream("save session", err)
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "session_id": sess.ID}).Info("user logged in")
	}
	return sess, nil
}

// SessionHandle signs the cookie value that names sess.
func (s *AuthService) SessionHandle(sess *entity.Session) (string, time.Time, error) {
	return s.JWT.GenerateSessionToken(sess.UserID, sess.ID)
}

// Logout is idempotent.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.Sessions.Delete(ctx, sessionID); err != nil {
		return apperror.Upstream("delete session", err)
	}
	return nil
}

// ResolveCurrentUser maps a session handle to its user. Any handle that does
// not lead to a live session of an existing user resolves to (nil, nil, nil).
func (s *AuthService) ResolveCurrentUser(ctx context.Context, handle string) (*entity.User, *entity.Session, error) {
	if handle == "" {
		return nil, nil, nil
	}
	claims, err := s.JWT.ParseSessionToken(handle)
	if err != nil {
		return nil, nil, nil
	}
	sess, err := s.Sessions.Get(ctx, claims.SessionID)
	if err != nil {
		return nil, nil, apperror.Upstream("get session", err)
	}
	if sess == nil || sess.UserID != claims.UserID {
		return nil, nil, nil
	}
	u, err := s.Users.GetByID(ctx, sess.UserID)
	if err != nil {
		return nil, nil, apperror.Upstream("get user", err)
	}
	if u == nil {
		// stale session of a deleted account
		_ = s.Sessions.Delete(ctx, sess.ID)
		return nil, nil, nil
	}
	return u, sess, nil
}

// notify renders and sends an email. Failures are logged only.
func (s *AuthService) notify(ctx context.Context, to, name string, data tpl.EmailData) {
	sendEmail(ctx, s.Notifier, s.Logger, to, name, data)
}

func sendEmail(ctx context.Context, n Notifier, logger *logrus.Logger, to, name string, data tpl.EmailData) {
	if n == nil {
		return
	}
	subject, html, err := tpl.Render(name, data)
	if err == nil {
		err = n.Send(ctx, to, subject, html)
	}
	if err != nil && logger != nil {
		logger.WithError(err).WithFields(logrus.Fields{"to": to, "template": name}).Warn("send email failed")
	}
}
