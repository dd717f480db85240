// Package users holds the fake backend's account registry: sign-up,
// credential checks and token issuance.
package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexedwards/argon2id"

	"github.com/dmitrijs2005/mediahub/internal/common"
	"github.com/dmitrijs2005/mediahub/internal/mockapi/auth"
)

// AuthResult is what sign-in and sign-up hand back to the caller.
type AuthResult struct {
	Token  string
	UserID string
}

type Service struct {
	repo             Repository
	jwtSecret        []byte
	validityDuration time.Duration
	params           *argon2id.Params
}

func NewService(repo Repository, secretKey string, validity time.Duration) *Service {
	return &Service{
		repo:             repo,
		jwtSecret:        []byte(secretKey),
		validityDuration: validity,
		params:           argon2id.DefaultParams,
	}
}

// WithHashParams overrides the argon2id cost parameters.
func (s *Service) WithHashParams(p *argon2id.Params) *Service {
	s.params = p
	return s
}

func (s *Service) issue(user *User) (*AuthResult, error) {
	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.validityDuration)
	if err != nil {
		return nil, fmt.Errorf("error generating token: %w", err)
	}
	return &AuthResult{Token: token, UserID: user.ID}, nil
}

// Register creates an account and signs it in. A taken email yields
// common.ErrAlreadyExists.
func (s *Service) Register(ctx context.Context, fullName, email, password string) (*AuthResult, error) {
	hash, err := argon2id.CreateHash(password, s.params)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user, err := s.repo.Create(ctx, &User{FullName: fullName, Email: email, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return s.issue(user)
}

// Login checks the credentials. Unknown emails and wrong passwords both
// yield common.ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error looking up user: %w", err)
	}

	match, err := argon2id.ComparePasswordAndHash(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("error comparing password: %w", err)
	}
	if !match {
		return nil, common.ErrInvalidCredentials
	}

	return s.issue(user)
}

// UserID resolves a bearer token to its user.
func (s *Service) UserID(token string) (string, error) {
	return auth.UserIDFromToken(token, s.jwtSecret)
}

// IssueToken mints a token for userID with an explicit validity. Negative
// values produce expired tokens.
func (s *Service) IssueToken(userID string, validity time.Duration) (string, error) {
	return auth.GenerateToken(userID, s.jwtSecret, validity)
}
