package profile

import (
	"errors"
	"time"

	"weatherbot-api/internal/common"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// gormRepository implements the Repository interface using GORM
type gormRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGormRepository creates a new GORM-based profile repository
func NewGormRepository(db *gorm.DB, logger *zap.Logger) Repository {
	return &gormRepository{
		db:     db,
		logger: logger,
	}
}

// Get retrieves a profile by user ID
func (r *gormRepository) Get(userID common.UserID) (*UserProfile, error) {
	r.logger.Debug("Getting profile", zap.String("user_id", string(userID)))

	var p UserProfile
	err := r.db.Where("user_id = ?", userID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NotFoundError{Resource: "UserProfile", ID: string(userID)}
		}
		return nil, WrapStoreError(err, "get profile")
	}

	return &p, nil
}

// Put creates or replaces a profile
func (r *gormRepository) Put(profile *UserProfile) error {
	r.logger.Debug("Putting profile",
		zap.String("user_id", string(profile.UserID)),
		zap.String("stage", string(profile.Stage)))

	if profile.UserID == "" {
		return common.ValidationError{Field: "user_id", Message: "must not be empty"}
	}
	if !profile.Stage.IsValid() {
		return common.ValidationError{Field: "stage", Message: "unknown onboarding stage"}
	}

	now := time.Now()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now

	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(profile).Error
	if err != nil {
		return WrapStoreError(err, "put profile")
	}

	return nil
}

// Count returns the total number of profiles
func (r *gormRepository) Count() (int64, error) {
	var n int64
	if err := r.db.Model(&UserProfile{}).Count(&n).Error; err != nil {
		return 0, WrapStoreError(err, "count profiles")
	}
	return n, nil
}
