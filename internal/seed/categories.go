package seed

import (
	"fmt"
	"os"

	"postmarket/internal/models"
	"postmarket/internal/validation"

	"gopkg.in/yaml.v3"
)

// categoryPreset is one entry of the category preset file.
type categoryPreset struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// defaultCategoryPresets is used when no preset file is supplied.
var defaultCategoryPresets = []categoryPreset{
	{Name: "Technology", Description: "Software, hardware and developer blogs"},
	{Name: "Health & Fitness", Description: "Wellness, nutrition and training sites"},
	{Name: "Finance", Description: "Personal finance and investing publications"},
	{Name: "Travel", Description: "Destination guides and travel journals"},
	{Name: "Food & Cooking", Description: "Recipes, restaurants and food culture"},
	{Name: "Marketing", Description: "SEO, content and growth marketing sites"},
	{Name: "Lifestyle", Description: "General interest and lifestyle magazines"},
	{Name: "Education", Description: "Learning resources and academic blogs"},
}

// LoadCategoryPresets reads category presets from a YAML file. An empty path
// returns the built-in defaults.
func LoadCategoryPresets(path string) ([]categoryPreset, error) {
	if path == "" {
		return defaultCategoryPresets, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading category presets: %w", err)
	}
	var presets []categoryPreset
	if err := yaml.Unmarshal(raw, &presets); err != nil {
		return nil, fmt.Errorf("parsing category presets: %w", err)
	}
	if len(presets) == 0 {
		return nil, fmt.Errorf("category preset file %q is empty", path)
	}
	return presets, nil
}

func (p categoryPreset) toModel() models.Category {
	return models.Category{
		Name:        p.Name,
		Slug:        validation.Slugify(p.Name),
		Description: p.Description,
	}
}
