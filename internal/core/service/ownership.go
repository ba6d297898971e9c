package service

import (
	"context"

	"github.com/adventureapp/adventure-api/internal/core/domain"
	"github.com/adventureapp/adventure-api/internal/core/ports"
)

// ownershipGuard evaluates the three-way access decision for adventures:
// NotFound (no such record), Forbidden (exists, fails the check), or the
// adventure itself.
type ownershipGuard struct {
	repo ports.AdventureRepository
	auth adminChecker
}

// forRead grants admins, owners, and anyone when the adventure is public.
func (g *ownershipGuard) forRead(ctx context.Context, adventureID string, p domain.Principal) (*domain.Adventure, error) {
	adventure, err := g.repo.FindByID(ctx, adventureID)
	if err != nil {
		return nil, err
	}
	if !adventure.CanRead(p.ActorID(), g.auth.IsAdmin(ctx, p.ActorID())) {
		return nil, domain.ErrForbidden
	}
	return adventure, nil
}

// forMutate is the stricter gate for destructive operations: public
// visibility grants reading, never mutation.
func (g *ownershipGuard) forMutate(ctx context.Context, adventureID string, p domain.Principal) (*domain.Adventure, error) {
	adventure, err := g.repo.FindByID(ctx, adventureID)
	if err != nil {
		return nil, err
	}
	if !adventure.CanMutate(p.ActorID(), g.auth.IsAdmin(ctx, p.ActorID())) {
		return nil, domain.ErrForbidden
	}
	return adventure, nil
}
