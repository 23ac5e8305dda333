package cache

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/fixitnow/maintenance-backend/internal/models"
)

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache()

	t.Run("miss on empty cache", func(t *testing.T) {
		_, ok := c.Get(models.CategoryElectrical)
		assert.False(t, ok)
	})

	t.Run("set then get", func(t *testing.T) {
		staff := []*models.User{{ID: uuid.New(), Name: "Ravi"}}
		c.Set(models.CategoryElectrical, staff)

		got, ok := c.Get(models.CategoryElectrical)
		assert.True(t, ok)
		assert.Equal(t, staff, got)
	})

	t.Run("empty list is a hit, not a miss", func(t *testing.T) {
		c.Set(models.CategoryPlumbing, []*models.User{})

		got, ok := c.Get(models.CategoryPlumbing)
		assert.True(t, ok)
		assert.Empty(t, got)
	})

	t.Run("invalidate is per category", func(t *testing.T) {
		c.Set(models.CategoryWifi, []*models.User{{ID: uuid.New()}})
		c.Set(models.CategoryHeating, []*models.User{{ID: uuid.New()}})

		c.Invalidate(models.CategoryWifi)

		_, ok := c.Get(models.CategoryWifi)
		assert.False(t, ok)
		_, ok = c.Get(models.CategoryHeating)
		assert.True(t, ok)
	})
}

func TestMemoryCacheConcurrentAccess(t *testing.T) {
	c := NewMemoryCache()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			c.Set(models.CategoryOther, []*models.User{{ID: uuid.New()}})
		}()
		go func() {
			defer wg.Done()
			c.Get(models.CategoryOther)
		}()
		go func() {
			defer wg.Done()
			c.Invalidate(models.CategoryOther)
		}()
	}

	wg.Wait()
}
