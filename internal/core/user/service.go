package user

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/ogurasousui/employee-management/internal/core/auth"
)

const minPasswordLength = 6

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// Service はユーザーに関するユースケースをまとめます。
type Service struct {
	repo       Repository
	clock      Clock
	hasher     PasswordHasher
	adminEmail string
}

// UseCase はユーザーユースケースの公開インターフェースです。
type UseCase interface {
	Register(ctx context.Context, in RegisterInput) (*User, error)
	Authenticate(ctx context.Context, in AuthenticateInput) (*User, error)
	GetUser(ctx context.Context, in GetUserInput) (*User, error)
}

var _ UseCase = (*Service)(nil)

// Option は Service の任意設定です。
type Option func(*Service)

// WithClock は時刻の取得元を差し替えます。
func WithClock(c Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithHasher はパスワードハッシュの実装を差し替えます。
func WithHasher(h PasswordHasher) Option {
	return func(s *Service) {
		if h != nil {
			s.hasher = h
		}
	}
}

// WithBootstrapAdmin は登録時に管理者ロールを付与するメールアドレスを設定します。
func WithBootstrapAdmin(email string) Option {
	return func(s *Service) {
		s.adminEmail = strings.ToLower(strings.TrimSpace(email))
	}
}

// NewService は Service を生成します。
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo, clock: realClock{}, hasher: BcryptHasher{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterInput はユーザー登録時の入力です。
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// AuthenticateInput はログイン時の入力です。
type AuthenticateInput struct {
	Email    string
	Password string
}

// GetUserInput はユーザー取得時の入力です。
type GetUserInput struct {
	ID string
}

// Register は新しいユーザーを登録します。
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrInvalidName
	}

	if len(in.Password) < minPasswordLength {
		return nil, ErrInvalidPassword
	}

	if err := s.ensureEmailNotExists(ctx, email); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("user: hash password: %w", err)
	}

	role := auth.RoleUser
	if s.adminEmail != "" && email == s.adminEmail {
		role = auth.RoleAdmin
	}

	now := s.clock.Now()
	return s.repo.Create(ctx, &User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

// Authenticate はメールアドレスとパスワードを照合し、一致したユーザーを返します。
func (s *Service) Authenticate(ctx context.Context, in AuthenticateInput) (*User, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil || in.Password == "" {
		return nil, ErrInvalidCredentials
	}

	found, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := s.hasher.Compare(found.PasswordHash, in.Password); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("user: compare password: %w", err)
	}

	return found, nil
}

// GetUser は ID でユーザーを取得します。
func (s *Service) GetUser(ctx context.Context, in GetUserInput) (*User, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}
	return s.repo.FindByID(ctx, strings.TrimSpace(in.ID))
}

func (s *Service) ensureEmailNotExists(ctx context.Context, email string) error {
	found, err := s.repo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return err
	}
	if found != nil {
		return ErrEmailAlreadyExists
	}
	return nil
}

func normalizeEmail(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidEmail
	}

	addr, err := mail.ParseAddress(trimmed)
	if err != nil {
		return "", ErrInvalidEmail
	}

	return strings.ToLower(addr.Address), nil
}
