package application

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-storefront/internal/domain/apperror"
	"github.com/oksasatya/go-ddd-storefront/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-storefront/internal/domain/repository"
	"github.com/oksasatya/go-ddd-storefront/pkg/helpers"
	tpl "github.com/oksasatya/go-ddd-storefront/pkg/mailer/templates"
)

// resetTokenBytes gives 256 bits of entropy, hex encoded to 64 characters.
const resetTokenBytes = 32

type ResetService struct {
	Users      repo.UserRepository
	Sessions   SessionStore // optional; sessions are revoked after a reset
	Notifier   Notifier
	Logger     *logrus.Logger
	TokenTTL   time.Duration
	ResetURL   string // token is appended as a path segment
	BcryptCost int
	AppName    string
	Clock      Clock
}

func NewResetService(users repo.UserRepository, notifier Notifier, logger *logrus.Logger, tokenTTL time.Duration, resetURL string, bcryptCost int) *ResetService {
	return &ResetService{
		Users:      users,
		Notifier:   notifier,
		Logger:     logger,
		TokenTTL:   tokenTTL,
		ResetURL:   strings.TrimRight(resetURL, "/"),
		BcryptCost: bcryptCost,
	}
}

// RequestMeta describes who asked for a reset; it only ends up in the email.
type RequestMeta struct {
	IP        string
	UserAgent string
}

type ResetForm struct {
	UserID string `json:"userId"`
	Token  string `json:"passwordToken"`
}

// RequestReset issues a fresh token for a known email. Unknown emails succeed
// silently so the endpoint cannot be used to discover accounts.
func (s *ResetService) RequestReset(ctx context.Context, email string, meta RequestMeta) error {
	email = entity.NormalizeEmail(email)
	if email == "" {
		return nil
	}
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return apperror.Upstream("get user by email", err)
	}
	if u == nil {
		if s.Logger != nil {
			s.Logger.Debug("password reset requested for unknown email")
		}
		return nil
	}

	token, err := helpers.RandomHex(resetTokenBytes)
	if err != nil {
		return err
	}
	now := s.Clock.now()
	expiresAt := now.Add(s.TokenTTL)
	if err := s.Users.SetResetToken(ctx, u.ID, token, expiresAt); err != nil {
		return apperror.Upstream("set reset token", err)
	}

	sendEmail(ctx, s.Notifier, s.Logger, u.Email, tpl.ResetPassword, tpl.NewEmailData(s.AppName, tpl.ResetPassword, u.Email,
		tpl.WithResetURL(s.ResetURL+"/"+token),
		tpl.WithExpiresAt(expiresAt),
		tpl.WithIP(meta.IP),
		tpl.WithUserAgent(meta.UserAgent),
		tpl.WithTime(now),
	))
	return nil
}

// LoadResetForm checks that token is pending and unexpired.
func (s *ResetService) LoadResetForm(ctx context.Context, token string) (*ResetForm, error) {
	if token == "" {
		return nil, apperror.ErrTokenInvalid
	}
	u, err := s.Users.GetByResetToken(ctx, token, s.Clock.now())
	if err != nil {
		return nil, apperror.Upstream("get user by reset token", err)
	}
	if u == nil {
		return nil, apperror.ErrTokenInvalid
	}
	return &ResetForm{UserID: u.ID, Token: token}, nil
}

// CommitNewPassword swaps the password hash and consumes the token in one
// conditional update; a token that was used or expired in the meantime fails.
// Every open session of the user ends with the old password.
func (s *ResetService) CommitNewPassword(ctx context.Context, userID, token, newPassword string) error {
	if userID == "" || token == "" {
		return apperror.ErrTokenInvalid
	}
	if err := validatePassword("password", newPassword); err != nil {
		return err
	}
	hash, err := helpers.HashPassword(newPassword, s.BcryptCost)
	if err != nil {
		return err
	}
	ok, err := s.Users.ConsumeResetToken(ctx, userID, token, hash, s.Clock.now())
	if err != nil {
		return apperror.Upstream("consume reset token", err)
	}
	if !ok {
		return apperror.ErrTokenInvalid
	}
	if s.Sessions != nil {
		// the password is already changed; a failure here is reported, not returned
		if err := s.Sessions.DeleteByUser(ctx, userID); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", userID).Error("revoke sessions after password reset failed")
		}
	}
	if s.Logger != nil {
		s.Logger.WithField("user_id", userID).Info("password reset completed")
	}
	return nil
}
