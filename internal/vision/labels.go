// Package vision provides Detector implementations and frame-analysis
// helpers for the cooking watcher.
package vision

// foodLabels is the fixed allow-list of food-related COCO classes the
// detection loop cares about. Everything else a model reports is
// ignored.
var foodLabels = map[string]bool{
	"bottle":     true,
	"wine glass": true,
	"cup":        true,
	"fork":       true,
	"knife":      true,
	"spoon":      true,
	"bowl":       true,
	"banana":     true,
	"apple":      true,
	"sandwich":   true,
	"orange":     true,
	"broccoli":   true,
	"carrot":     true,
	"hot dog":    true,
	"pizza":      true,
	"donut":      true,
	"cake":       true,
}

// IsFood reports whether a detection label is on the food allow-list.
func IsFood(label string) bool {
	return foodLabels[label]
}

// FoodLabels returns a copy of the allow-list.
func FoodLabels() []string {
	out := make([]string, 0, len(foodLabels))
	for l := range foodLabels {
		out = append(out, l)
	}
	return out
}
