// Package access decides which identities may join which rooms. The
// hub consumes the decision as an opaque boolean and fails closed when
// the check itself fails.
package access

import (
	"context"
	"errors"

	"stream-service/internal/models"
	"stream-service/internal/repositories/postgres"
	"stream-service/internal/room"
)

// PortfolioStore is the persistence collaborator behind portfolio-room
// decisions.
type PortfolioStore interface {
	FindByID(ctx context.Context, id uint) (*models.Portfolio, error)
	HasActiveCopy(ctx context.Context, followerID, leaderID uint) (bool, error)
}

// Authorizer implements the room access policy:
//
//	symbol:* and thread:*  public, anyone may join
//	user:<id>              only the identity itself
//	portfolio:<id>         owner, or public portfolio, or an active
//	                       copy relationship to the owner
type Authorizer struct {
	portfolios PortfolioStore
}

func NewAuthorizer(portfolios PortfolioStore) *Authorizer {
	return &Authorizer{portfolios: portfolios}
}

// CanJoin reports whether userID may join r. An error means the check
// itself could not be performed; callers must treat that as a denial.
func (a *Authorizer) CanJoin(ctx context.Context, userID uint, r room.ID) (bool, error) {
	switch r.Kind {
	case room.KindSymbol, room.KindThread:
		return true, nil

	case room.KindUser:
		owner, ok := r.UserID()
		return ok && owner == userID, nil

	case room.KindPortfolio:
		portfolioID, ok := r.PortfolioID()
		if !ok {
			return false, nil
		}
		return a.canJoinPortfolio(ctx, userID, portfolioID)

	default:
		return false, nil
	}
}

func (a *Authorizer) canJoinPortfolio(ctx context.Context, userID, portfolioID uint) (bool, error) {
	p, err := a.portfolios.FindByID(ctx, portfolioID)
	if err != nil {
		if errors.Is(err, postgres.ErrPortfolioNotFound) {
			return false, nil
		}
		return false, err
	}

	if p.OwnerID == userID || p.IsPublic {
		return true, nil
	}
	return a.portfolios.HasActiveCopy(ctx, userID, p.OwnerID)
}
