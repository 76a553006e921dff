package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chilin89117/shopfront/internal/entity"
	"github.com/chilin89117/shopfront/internal/logging"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var ErrBadResetToken = errors.New("invalid or expired reset token")

type AuthConfig struct {
	ResetSecret string
	Issuer      string
	ResetTTL    time.Duration
	ResetURL    string // base URL the token is appended to in the mail
}

type Auth struct {
	users    UserRepo
	sessions SessionStore
	mail     MailSender
	cfg      AuthConfig
}

func NewAuth(users UserRepo, sessions SessionStore, mail MailSender, cfg AuthConfig) *Auth {
	return &Auth{users: users, sessions: sessions, mail: mail, cfg: cfg}
}

type SignupInput struct {
	Name     string
	Email    string
	Password string
}

func (a *Auth) Signup(ctx context.Context, in SignupInput) (entity.Principal, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if existing, err := a.users.GetByEmail(ctx, email); err == nil && existing != nil {
		return entity.Principal{}, entity.ErrDuplicateEmail
	} else if err != nil && !errors.Is(err, entity.ErrNotFound) {
		return entity.Principal{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return entity.Principal{}, fmt.Errorf("hash password: %w", err)
	}

	u := &entity.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := a.users.Create(ctx, u); err != nil {
		return entity.Principal{}, err
	}

	// Welcome mail is best effort; signup never fails on SMTP trouble.
	if err := a.mail.Send(ctx, u.Email, "Welcome to the shop",
		fmt.Sprintf("Hi %s, your account is ready.", u.Name)); err != nil {
		logging.FromCtx(ctx).Warn("welcome mail failed", "err", err, "email", u.Email)
	}

	return u.Principal(), nil
}

// Login verifies credentials and opens a session, returning the session
// token for the cookie along with the principal.
func (a *Auth) Login(ctx context.Context, email, password string) (entity.Principal, string, error) {
	u, err := a.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return entity.Principal{}, "", entity.ErrBadCredentials
		}
		return entity.Principal{}, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return entity.Principal{}, "", entity.ErrBadCredentials
	}

	p := u.Principal()
	token, err := a.sessions.Create(ctx, p)
	if err != nil {
		return entity.Principal{}, "", err
	}
	return p, token, nil
}

func (a *Auth) Logout(ctx context.Context, token string) error {
	return a.sessions.Delete(ctx, token)
}

// RequestReset mails a signed reset token when the address is known.
// The caller responds identically either way to avoid account
// enumeration.
func (a *Auth) RequestReset(ctx context.Context, email string) error {
	u, err := a.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil
		}
		return err
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iss": a.cfg.Issuer,
		"sub": u.ID,
		"iat": now.Unix(),
		"exp": now.Add(a.cfg.ResetTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(a.cfg.ResetSecret))
	if err != nil {
		return fmt.Errorf("sign reset token: %w", err)
	}

	body := fmt.Sprintf("Reset your password: %s%s", a.cfg.ResetURL, signed)
	return a.mail.Send(ctx, u.Email, "Password reset", body)
}

func (a *Auth) ConfirmReset(ctx context.Context, rawToken, newPassword string) error {
	token, err := jwt.Parse(rawToken, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(a.cfg.ResetSecret), nil
	}, jwt.WithIssuer(a.cfg.Issuer), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return ErrBadResetToken
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return ErrBadResetToken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return a.users.UpdatePassword(ctx, sub, string(hash))
}
