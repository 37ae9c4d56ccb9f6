package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/forkful/backend/internal/models"
)

// EdgeKind selects which membership relation an edge operation targets.
// Favorite, Cart and Follow share the same add/remove shape, so they run
// through one parameterized service instead of three copies.
type EdgeKind int

const (
	EdgeFavorite EdgeKind = iota
	EdgeCart
	EdgeFollow
)

func (k EdgeKind) String() string {
	switch k {
	case EdgeFavorite:
		return "favorite"
	case EdgeCart:
		return "shopping_cart"
	case EdgeFollow:
		return "follow"
	default:
		return "unknown"
	}
}

// EdgeService creates and deletes membership edges. Uniqueness is
// enforced by the composite indexes on the edge tables; a lost insert
// race surfaces as gorm.ErrDuplicatedKey and is translated here.
type EdgeService struct {
	db *gorm.DB
}

func NewEdgeService(db *gorm.DB) *EdgeService {
	return &EdgeService{db: db}
}

// Add creates the (user, target) edge. The target must exist, follow
// edges must not point back at the user, and duplicates fail.
func (s *EdgeService) Add(ctx context.Context, kind EdgeKind, userID, targetID uuid.UUID) error {
	if kind == EdgeFollow && userID == targetID {
		return fmt.Errorf("%s: %w", kind, ErrSelfReference)
	}
	if err := s.ensureTargetExists(ctx, kind, targetID); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Create(s.record(kind, userID, targetID)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%s: %w", kind, ErrDuplicate)
		}
		return err
	}
	return nil
}

// Remove deletes the (user, target) edge; a missing edge is an error,
// not a no-op.
func (s *EdgeService) Remove(ctx context.Context, kind EdgeKind, userID, targetID uuid.UUID) error {
	result := s.pairQuery(ctx, kind, userID, targetID).Delete(s.model(kind))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%s: %w", kind, ErrNotFound)
	}
	return nil
}

// Exists is the canonical "does an edge exist for this pair" query. It is
// also what backs the is_favorited / is_in_shopping_cart / is_subscribed
// computed fields.
func (s *EdgeService) Exists(ctx context.Context, kind EdgeKind, userID, targetID uuid.UUID) (bool, error) {
	var count int64
	err := s.pairQuery(ctx, kind, userID, targetID).Model(s.model(kind)).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *EdgeService) record(kind EdgeKind, userID, targetID uuid.UUID) interface{} {
	switch kind {
	case EdgeFavorite:
		return &models.Favorite{UserID: userID, RecipeID: targetID}
	case EdgeCart:
		return &models.ShoppingCartEntry{UserID: userID, RecipeID: targetID}
	default:
		return &models.Follow{FollowerID: userID, AuthorID: targetID}
	}
}

func (s *EdgeService) model(kind EdgeKind) interface{} {
	switch kind {
	case EdgeFavorite:
		return &models.Favorite{}
	case EdgeCart:
		return &models.ShoppingCartEntry{}
	default:
		return &models.Follow{}
	}
}

func (s *EdgeService) pairQuery(ctx context.Context, kind EdgeKind, userID, targetID uuid.UUID) *gorm.DB {
	db := s.db.WithContext(ctx)
	if kind == EdgeFollow {
		return db.Where("follower_id = ? AND author_id = ?", userID, targetID)
	}
	return db.Where("user_id = ? AND recipe_id = ?", userID, targetID)
}

func (s *EdgeService) ensureTargetExists(ctx context.Context, kind EdgeKind, targetID uuid.UUID) error {
	var (
		count int64
		err   error
	)
	if kind == EdgeFollow {
		err = s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", targetID).Count(&count).Error
	} else {
		err = s.db.WithContext(ctx).Model(&models.Recipe{}).Where("id = ?", targetID).Count(&count).Error
	}
	if err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%s target %s: %w", kind, targetID, ErrNotFound)
	}
	return nil
}
