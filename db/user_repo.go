package db

import (
	"context"

	"github.com/pkg/errors"
	"github.com/techagentng/photohire/models"
	"gorm.io/gorm"
)

// UserRepository is the read-only user directory used to authorize callers and
// hydrate responses.
type UserRepository interface {
	FindUserByID(ctx context.Context, id uint) (*models.User, error)
	FindSummaries(ctx context.Context, ids []uint) (map[uint]*models.UserSummary, error)
}

type userRepo struct {
	DB *gorm.DB
}

func NewUserRepo(db *GormDB) UserRepository {
	return &userRepo{db.DB}
}

// FindUserByID returns gorm.ErrRecordNotFound (wrapped) when no user matches.
func (u *userRepo) FindUserByID(ctx context.Context, id uint) (*models.User, error) {
	user := &models.User{}
	if err := u.DB.WithContext(ctx).Where("id = ?", id).First(user).Error; err != nil {
		return nil, errors.Wrap(err, "userRepo.FindUserByID")
	}
	return user, nil
}

func (u *userRepo) FindSummaries(ctx context.Context, ids []uint) (map[uint]*models.UserSummary, error) {
	out := make(map[uint]*models.UserSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.UserSummary
	err := u.DB.WithContext(ctx).
		Model(&models.User{}).
		Select("id", "first_name", "last_name", "profile_photo").
		Where("id IN ?", uniqueIDs(ids)).
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "userRepo.FindSummaries")
	}
	for i := range rows {
		out[rows[i].ID] = &rows[i]
	}
	return out, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
