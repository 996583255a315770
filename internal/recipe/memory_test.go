package recipe

import (
	"context"
	"errors"
	"testing"

	"github.com/hammamikhairi/visioncook/internal/domain"
	"github.com/hammamikhairi/visioncook/internal/logger"
)

func TestMemorySourceGet(t *testing.T) {
	src := NewMemorySource(logger.New(logger.LevelOff, nil))
	ctx := context.Background()

	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"builtin pasta", "pasta", false},
		{"builtin grilled cheese", "grilled-cheese", false},
		{"unknown", "beef-wellington", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := src.Get(ctx, tt.id)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrNotFound) {
					t.Fatalf("expected ErrNotFound, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(r.Steps) == 0 {
				t.Fatalf("recipe %s has no steps", tt.id)
			}
			for i, s := range r.Steps {
				if s.DurationSeconds <= 0 {
					t.Fatalf("step %d has duration %d", i, s.DurationSeconds)
				}
			}
		})
	}
}

func TestMemorySourceList(t *testing.T) {
	src := NewMemorySource(logger.New(logger.LevelOff, nil))

	recipes, err := src.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recipes) < 3 {
		t.Fatalf("expected at least 3 built-in recipes, got %d", len(recipes))
	}
	for i := 1; i < len(recipes); i++ {
		if recipes[i-1].Name > recipes[i].Name {
			t.Fatal("recipes not sorted by name")
		}
	}
}
