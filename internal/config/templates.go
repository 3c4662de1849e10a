package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
)

// QuestTemplate is one starter quest definition loaded from config
type QuestTemplate struct {
	Title        string   `json:"title" validate:"required"`
	Description  string   `json:"description"`
	Difficulty   string   `json:"difficulty" validate:"required,oneof=trivial easy medium hard epic"`
	TargetStats  []string `json:"target_stats" validate:"required,min=1,max=3,dive,oneof=strength intellect discipline vitality charisma"`
	Frequency    string   `json:"frequency" validate:"required,oneof=hourly daily semiweekly weekly monthly"`
	TrackingMode string   `json:"tracking_mode" validate:"required,oneof=manual health location screen"`
	TargetValue  float64  `json:"target_value" validate:"gte=0"`
	TargetUnit   string   `json:"target_unit"`
	Optional     bool     `json:"optional"`
}

// QuestTemplateConfig is the on-disk quest template file
type QuestTemplateConfig struct {
	Version   string          `json:"version"`
	Templates []QuestTemplate `json:"templates"`
}

// LoadQuestTemplates reads and validates the quest template file
func LoadQuestTemplates(path string) ([]QuestTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read quest templates: %w", err)
	}

	var cfg QuestTemplateConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse quest templates: %w", err)
	}

	validate := validator.New()
	for i, tmpl := range cfg.Templates {
		if err := validate.Struct(tmpl); err != nil {
			return nil, fmt.Errorf("quest template %d (%q) invalid: %w", i, tmpl.Title, err)
		}
	}

	return cfg.Templates, nil
}
