package services

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixitnow/maintenance-backend/internal/cache"
	"github.com/fixitnow/maintenance-backend/internal/models"
)

// countingDirectory counts directory hits so cache behavior is observable
type countingDirectory struct {
	staff map[models.Category][]*models.User
	calls int
	fail  bool
}

func (d *countingDirectory) FindActiveByCategory(category models.Category) ([]*models.User, error) {
	d.calls++
	if d.fail {
		return nil, fmt.Errorf("directory down")
	}
	return d.staff[category], nil
}

func newRouterFixture() (*RouterService, *countingDirectory) {
	directory := &countingDirectory{staff: make(map[models.Category][]*models.User)}
	router := NewRouterService(directory, cache.NewMemoryCache(), testLogger())
	return router, directory
}

func TestResolveStaff(t *testing.T) {
	t.Run("caches directory results per category", func(t *testing.T) {
		router, directory := newRouterFixture()
		plumber := &models.User{ID: uuid.New(), Name: "Plumber"}
		directory.staff[models.CategoryPlumbing] = []*models.User{plumber}

		first := router.ResolveStaff(models.CategoryPlumbing)
		second := router.ResolveStaff(models.CategoryPlumbing)

		require.Len(t, first, 1)
		assert.Equal(t, plumber.ID, first[0].ID)
		assert.Equal(t, first, second)
		assert.Equal(t, 1, directory.calls)
	})

	t.Run("categories are cached independently", func(t *testing.T) {
		router, directory := newRouterFixture()
		directory.staff[models.CategoryWifi] = []*models.User{{ID: uuid.New()}}

		router.ResolveStaff(models.CategoryWifi)
		router.ResolveStaff(models.CategoryElectrical)

		assert.Equal(t, 2, directory.calls)
	})

	t.Run("empty list is a normal cached result", func(t *testing.T) {
		router, directory := newRouterFixture()

		staff := router.ResolveStaff(models.CategoryHeating)
		assert.Empty(t, staff)

		router.ResolveStaff(models.CategoryHeating)
		assert.Equal(t, 1, directory.calls)
	})

	t.Run("directory failure degrades to empty without caching", func(t *testing.T) {
		router, directory := newRouterFixture()
		directory.fail = true

		staff := router.ResolveStaff(models.CategoryCleaning)
		assert.Empty(t, staff)

		// Recovery: the failure was not cached, the next call retries
		directory.fail = false
		directory.staff[models.CategoryCleaning] = []*models.User{{ID: uuid.New()}}
		staff = router.ResolveStaff(models.CategoryCleaning)
		assert.Len(t, staff, 1)
		assert.Equal(t, 2, directory.calls)
	})
}

func TestRouterInvalidate(t *testing.T) {
	router, directory := newRouterFixture()
	directory.staff[models.CategoryFurniture] = []*models.User{{ID: uuid.New()}}

	router.ResolveStaff(models.CategoryFurniture)
	assert.Equal(t, 1, directory.calls)

	// Directory mutates: a second staff member gains the category
	directory.staff[models.CategoryFurniture] = append(
		directory.staff[models.CategoryFurniture],
		&models.User{ID: uuid.New()},
	)
	router.Invalidate(models.CategoryFurniture)

	staff := router.ResolveStaff(models.CategoryFurniture)
	assert.Len(t, staff, 2)
	assert.Equal(t, 2, directory.calls)

	// Invalidating one category leaves the others untouched
	directory.staff[models.CategoryOther] = []*models.User{{ID: uuid.New()}}
	router.ResolveStaff(models.CategoryOther)
	router.Invalidate(models.CategoryFurniture)
	router.ResolveStaff(models.CategoryOther)
	assert.Equal(t, 3, directory.calls)
}
