// internal/domain/models/tag.go
package models

import "strings"

// Tag is a content category. Tags only live in the console; the community
// API has no endpoint for them.
type Tag struct {
	ID        ID     `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	PostCount int    `json:"post_count"`
}

// TagPalette is the set of colours a tag may use.
var TagPalette = []string{
	"#3B82F6",
	"#10B981",
	"#F59E0B",
	"#8B5CF6",
	"#EF4444",
	"#06B6D4",
	"#84CC16",
	"#F97316",
	"#EC4899",
	"#6366F1",
}

// DefaultTagColor is used when a tag is created without a colour.
const DefaultTagColor = "#F97316"

// InPalette reports whether color is one of TagPalette (case-insensitive).
func InPalette(color string) bool {
	for _, c := range TagPalette {
		if strings.EqualFold(c, strings.TrimSpace(color)) {
			return true
		}
	}
	return false
}

// DefaultTags is the tag set the console starts with.
func DefaultTags() []Tag {
	return []Tag{
		{ID: "1", Name: "Finance", Color: DefaultTagColor, PostCount: 245},
		{ID: "2", Name: "Investissement", Color: DefaultTagColor, PostCount: 189},
		{ID: "3", Name: "Crédit", Color: DefaultTagColor, PostCount: 156},
		{ID: "4", Name: "Épargne", Color: DefaultTagColor, PostCount: 134},
		{ID: "5", Name: "Assurance", Color: DefaultTagColor, PostCount: 123},
		{ID: "6", Name: "Banque Digitale", Color: DefaultTagColor, PostCount: 98},
		{ID: "7", Name: "Conseils", Color: DefaultTagColor, PostCount: 87},
		{ID: "8", Name: "Cartes Bancaires", Color: DefaultTagColor, PostCount: 76},
		{ID: "9", Name: "Prêt Immobilier", Color: DefaultTagColor, PostCount: 65},
		{ID: "10", Name: "Services", Color: DefaultTagColor, PostCount: 54},
	}
}
