// Package services holds the business logic between controllers and stores.
package services

import (
	"context"
	"errors"

	"github.com/shashiranjanraj/vanijya/app/models"
	"github.com/shashiranjanraj/vanijya/app/repositories"
	"github.com/shashiranjanraj/vanijya/pkg/apperr"
	"github.com/shashiranjanraj/vanijya/pkg/auth"
	"github.com/shashiranjanraj/vanijya/pkg/collection"
	"github.com/shashiranjanraj/vanijya/pkg/logger"
)

// UserStore is the persistence contract for accounts.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	All(ctx context.Context) ([]models.User, error)
	Delete(ctx context.Context, id string) error
}

// AuthService implements signup, login, listing, and account deletion.
type AuthService struct {
	users         UserStore
	registrations RegistrationStore
	tokens        *auth.Manager
}

func NewAuthService(users UserStore, registrations RegistrationStore, tokens *auth.Manager) *AuthService {
	return &AuthService{users: users, registrations: registrations, tokens: tokens}
}

// Signup creates an account with a bcrypt-hashed password.
func (s *AuthService) Signup(ctx context.Context, name, email, password string) (*models.PublicUser, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to hash password", err)
	}

	user := &models.User{Name: name, Email: email, Password: hash}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return nil, apperr.New(apperr.Conflict, "email already registered")
		}
		return nil, apperr.Wrap(apperr.Internal, "failed to create user", err)
	}

	pub := user.Public()
	return &pub, nil
}

// Login checks credentials and issues a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.PublicUser, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		return "", nil, apperr.New(apperr.NotFound, "no account with that email")
	}
	if err != nil {
		return "", nil, apperr.Wrap(apperr.Internal, "failed to look up user", err)
	}

	if !auth.CheckPassword(user.Password, password) {
		return "", nil, apperr.New(apperr.Auth, "invalid credentials")
	}

	token, err := s.tokens.Generate(user.ID.Hex(), user.Email)
	if err != nil {
		return "", nil, apperr.Wrap(apperr.Internal, "failed to issue token", err)
	}

	pub := user.Public()
	return token, &pub, nil
}

// ListUsers returns the name/email directory listing of every account.
func (s *AuthService) ListUsers(ctx context.Context) ([]models.UserSummary, error) {
	users, err := s.users.All(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to list users", err)
	}

	return collection.Map(users, func(u models.User) models.UserSummary {
		return u.Summary()
	}), nil
}

// DeleteAccount removes one account and cascades to the registration
// requests owned by that account's stored email. The target is resolved to a
// single user record first; the caller's verified identity must match that
// record, and a payload naming two different accounts (id of one, email of
// another) is rejected outright. The cascade is best-effort: its failure is
// logged and never rolls back the user delete.
func (s *AuthService) DeleteAccount(ctx context.Context, identity *auth.Claims, targetID, targetEmail string) error {
	if identity == nil {
		return apperr.New(apperr.Auth, "missing identity")
	}

	target, err := s.resolveTarget(ctx, targetID, targetEmail)
	if err != nil {
		return err
	}
	if identity.UserID != target.ID.Hex() && identity.Email != target.Email {
		return apperr.New(apperr.Forbidden, "identity does not match target account")
	}

	if err := s.users.Delete(ctx, target.ID.Hex()); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperr.New(apperr.NotFound, "user not found")
		}
		return apperr.Wrap(apperr.Internal, "failed to delete user", err)
	}

	// Cascade on the email stored with the account, never on caller input.
	deleted, err := s.registrations.DeleteByEmail(ctx, target.Email)
	if err != nil {
		logger.WithCtx(ctx).Error("registration cascade failed", "email", target.Email, "error", err)
	} else if deleted > 0 {
		logger.WithCtx(ctx).Info("registration cascade deleted records", "email", target.Email, "count", deleted)
	}

	return nil
}

// resolveTarget turns the (id, email) pair from a delete request into one
// user record. When both are supplied they must name the same account.
func (s *AuthService) resolveTarget(ctx context.Context, targetID, targetEmail string) (*models.User, error) {
	var (
		target *models.User
		err    error
	)
	switch {
	case targetID != "":
		target, err = s.users.FindByID(ctx, targetID)
	case targetEmail != "":
		target, err = s.users.FindByEmail(ctx, targetEmail)
	default:
		return nil, apperr.New(apperr.Validation, "target account id or email required")
	}
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperr.New(apperr.NotFound, "user not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to look up user", err)
	}

	if targetID != "" && targetEmail != "" && target.Email != targetEmail {
		return nil, apperr.New(apperr.Forbidden, "target id and email name different accounts")
	}
	return target, nil
}
