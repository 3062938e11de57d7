// Package identity resolves caller references to registered users and roles.
// The rest of the application consumes only the Actor it produces.
package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/farmline/marketplace/internal/application"
	"github.com/farmline/marketplace/internal/domain/user"
	"github.com/farmline/marketplace/internal/observability"
	"github.com/farmline/marketplace/internal/observability/logctx"
)

var (
	ErrUnauthenticated = errors.New("identity: unknown caller")
	ErrUnauthorized    = errors.New("identity: operation not permitted")
)

// Actor is the authenticated calling identity.
type Actor struct {
	UserID string
	Role   user.Role
}

type Service struct {
	users user.Repository
	idGen application.IDGenerator
	log   observability.Logger
}

func NewService(users user.Repository, idGen application.IDGenerator, logger observability.Logger) *Service {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Service{
		users: users,
		idGen: idGen,
		log:   logger.With(observability.F("component", "identity_service")),
	}
}

type RegisterInput struct {
	Name string
	Role user.Role
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*user.User, error) {
	logger := logctx.FromOr(ctx, s.log)

	entity, err := user.New(s.idGen.NewID(), in.Name, in.Role)
	if err != nil {
		return nil, err
	}
	if err := s.users.Save(ctx, entity); err != nil {
		logger.Error("user_save_failed", observability.F("error", err))
		return nil, fmt.Errorf("identity: save user: %w", err)
	}

	logger.Info("user_registered",
		observability.F("user_id", entity.ID),
		observability.F("role", entity.Role),
	)
	return entity, nil
}

// Resolve maps a caller reference to an Actor. An empty or unknown reference
// is Unauthenticated.
func (s *Service) Resolve(ctx context.Context, callerRef string) (Actor, error) {
	if callerRef == "" {
		return Actor{}, ErrUnauthenticated
	}
	entity, err := s.users.FindByID(ctx, callerRef)
	if errors.Is(err, user.ErrNotFound) {
		return Actor{}, ErrUnauthenticated
	}
	if err != nil {
		return Actor{}, fmt.Errorf("identity: resolve caller: %w", err)
	}
	return Actor{UserID: entity.ID, Role: entity.Role}, nil
}

func (s *Service) Get(ctx context.Context, id string) (*user.User, error) {
	if id == "" {
		return nil, user.ErrNotFound
	}
	return s.users.FindByID(ctx, id)
}
