package recipe

import (
	"context"
	"sort"
	"sync"

	"github.com/hammamikhairi/visioncook/internal/domain"
	"github.com/hammamikhairi/visioncook/internal/logger"
)

// Compile-time interface check.
var _ domain.RecipeSource = (*MemorySource)(nil)

// MemorySource holds recipes in memory. Safe for concurrent reads.
type MemorySource struct {
	mu      sync.RWMutex
	recipes map[string]*domain.Recipe
	log     *logger.Logger
}

// NewMemorySource creates a recipe source preloaded with built-in recipes.
func NewMemorySource(log *logger.Logger) *MemorySource {
	src := &MemorySource{
		recipes: make(map[string]*domain.Recipe),
		log:     log,
	}
	src.seed()
	return src
}

// List returns all available recipes, sorted by name.
func (s *MemorySource) List(ctx context.Context) ([]domain.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Recipe, 0, len(s.recipes))
	for _, r := range s.recipes {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	s.log.Debug("listing recipes, count=%d", len(out))
	return out, nil
}

// Get returns a recipe by ID.
func (s *MemorySource) Get(ctx context.Context, id string) (*domain.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.recipes[id]
	if !ok {
		s.log.Debug("recipe not found: %s", id)
		return nil, domain.ErrNotFound
	}
	return r, nil
}

// seed populates the source with built-in recipes.
func (s *MemorySource) seed() {
	builtin := []*domain.Recipe{
		{
			ID:          "pasta",
			Name:        "Simple Pasta",
			Description: "Boil, cook, drain. The weeknight classic.",
			Steps: []domain.RecipeStep{
				{Description: "Boil water", DurationSeconds: 300},
				{Description: "Add pasta", DurationSeconds: 480},
				{Description: "Drain", DurationSeconds: 60},
			},
		},
		{
			ID:          "grilled-cheese",
			Name:        "Grilled Cheese",
			Description: "Butter, bread, cheese, patience.",
			Steps: []domain.RecipeStep{
				{Description: "Heat the pan on medium", DurationSeconds: 120},
				{Description: "Butter the bread and assemble", DurationSeconds: 90},
				{Description: "Toast the first side", DurationSeconds: 180},
				{Description: "Flip and toast the second side", DurationSeconds: 150},
				{Description: "Rest and slice", DurationSeconds: 60},
			},
		},
		{
			ID:          "fried-egg",
			Name:        "Fried Egg",
			Description: "One pan, one egg, three minutes.",
			Steps: []domain.RecipeStep{
				{Description: "Heat a little oil in the pan", DurationSeconds: 60},
				{Description: "Crack the egg in and fry", DurationSeconds: 150},
				{Description: "Season and plate", DurationSeconds: 30},
			},
		},
	}

	for _, r := range builtin {
		s.recipes[r.ID] = r
	}
}
