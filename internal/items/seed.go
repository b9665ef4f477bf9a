package items

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/joaosp7/teste-principia-backend/internal/models"
	"github.com/joaosp7/teste-principia-backend/internal/storage"
)

// Seed bounds accepted by the HTTP boundary.
const (
	MinSeedCount     = 1
	MaxSeedCount     = 15
	DefaultSeedCount = 5
)

const seedDescription = "This is the default Seed description"

// Seed inserts n synthetic items through the regular create path. Names carry
// a random 0-999 suffix, so collisions across runs are possible and surface
// as ordinary conflict errors; the seeder does not retry or dedupe. It
// returns how many items were created before the first failure.
func (s *Service) Seed(ctx context.Context, n int) (int, error) {
	s.logger.Info("seeding the database", "count", n)
	for created := 0; created < n; created++ {
		number := rand.Intn(1000)
		params := storage.CreateItemParams{
			Name:        fmt.Sprintf("Seed Item Number %d", number),
			Status:      models.StatusDoing,
			Description: seedDescriptionPtr(),
		}
		if number%2 == 0 {
			params.Status = models.StatusTodo
		}
		if _, err := s.store.InsertItem(ctx, params); err != nil {
			return created, err
		}
	}
	s.logger.Info("seed process finished", "count", n)
	return n, nil
}

func seedDescriptionPtr() *string {
	description := seedDescription
	return &description
}
