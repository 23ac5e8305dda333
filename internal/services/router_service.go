package services

import (
	"github.com/sirupsen/logrus"

	"github.com/fixitnow/maintenance-backend/internal/cache"
	"github.com/fixitnow/maintenance-backend/internal/models"
)

// StaffDirectory is the read side of the staff records the router consumes
type StaffDirectory interface {
	FindActiveByCategory(category models.Category) ([]*models.User, error)
}

// RouterService maps a complaint category to the set of eligible
// maintenance staff. Results are cached per category; the cache is
// invalidated whenever the directory mutates staff for that category.
// Listings are advisory: the lifecycle engine re-validates eligibility at
// assignment time, so a stale list can never authorize an invalid assign.
type RouterService struct {
	directory StaffDirectory
	cache     cache.StaffListCache
	logger    *logrus.Logger
}

// NewRouterService creates a new category router
func NewRouterService(directory StaffDirectory, staffCache cache.StaffListCache, logger *logrus.Logger) *RouterService {
	return &RouterService{
		directory: directory,
		cache:     staffCache,
		logger:    logger,
	}
}

// ResolveStaff returns active staff eligible for the category, in
// directory order. A directory failure degrades to an empty list; an empty
// list is a normal state, not an error.
func (s *RouterService) ResolveStaff(category models.Category) []*models.User {
	if staff, ok := s.cache.Get(category); ok {
		return staff
	}

	staff, err := s.directory.FindActiveByCategory(category)
	if err != nil {
		s.logger.WithError(err).WithField("category", category).
			Warn("Staff directory lookup failed, returning empty candidate list")
		return []*models.User{}
	}

	s.cache.Set(category, staff)
	return staff
}

// Invalidate drops cached candidate lists for the given categories. Called
// after any staff directory mutation that touches them.
func (s *RouterService) Invalidate(categories ...models.Category) {
	for _, category := range categories {
		s.cache.Invalidate(category)
	}
}
