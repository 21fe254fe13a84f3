package profile

import "weatherbot-api/internal/common"

// Repository defines persistence operations for user profiles
type Repository interface {
	// Get returns the profile for userID, or common.NotFoundError
	Get(userID common.UserID) (*UserProfile, error)
	// Put creates or replaces the profile
	Put(profile *UserProfile) error
	// Count returns the total number of profiles
	Count() (int64, error)
}
