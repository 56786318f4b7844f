package qualify

import (
	"errors"
	"fmt"
	"math"
)

// ScoringWeights distributes the base score across the five core dimensions.
// Weights are expected to sum to 1.0.
type ScoringWeights struct {
	ProjectType  float64 `json:"projectType"`
	Timeline     float64 `json:"timeline"`
	Budget       float64 `json:"budget"`
	CompanySize  float64 `json:"companySize"`
	AIExperience float64 `json:"aiExperience"`
}

// CategoryThresholds maps a final score onto a lead category. Each bound is
// inclusive; anything below Nurture is unqualified.
type CategoryThresholds struct {
	HighValue int `json:"highValue"`
	Qualified int `json:"qualified"`
	Nurture   int `json:"nurture"`
}

// Config tunes scoring and conversation behavior for the qualification engine.
type Config struct {
	Weights               ScoringWeights     `json:"scoringWeights"`
	Thresholds            CategoryThresholds `json:"categoryThresholds"`
	AutoResponseEnabled   bool               `json:"autoResponseEnabled"`
	MaxConversationLength int                `json:"maxConversationLength"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Weights: ScoringWeights{
			ProjectType:  0.25,
			Timeline:     0.30,
			Budget:       0.25,
			CompanySize:  0.15,
			AIExperience: 0.05,
		},
		Thresholds: CategoryThresholds{
			HighValue: 80,
			Qualified: 60,
			Nurture:   40,
		},
		AutoResponseEnabled:   true,
		MaxConversationLength: 20,
	}
}

// Validate checks the config for internally consistent values.
func (c Config) Validate() error {
	sum := c.Weights.ProjectType + c.Weights.Timeline + c.Weights.Budget +
		c.Weights.CompanySize + c.Weights.AIExperience
	if math.Abs(sum-1.0) > 0.001 {
		return fmt.Errorf("qualify: scoring weights must sum to 1.0, got %.3f", sum)
	}
	if c.Weights.ProjectType < 0 || c.Weights.Timeline < 0 || c.Weights.Budget < 0 ||
		c.Weights.CompanySize < 0 || c.Weights.AIExperience < 0 {
		return errors.New("qualify: scoring weights must be non-negative")
	}
	if c.Thresholds.HighValue <= c.Thresholds.Qualified ||
		c.Thresholds.Qualified <= c.Thresholds.Nurture ||
		c.Thresholds.Nurture <= 0 {
		return errors.New("qualify: category thresholds must be strictly descending and positive")
	}
	if c.MaxConversationLength < 2 {
		return errors.New("qualify: max conversation length must allow at least one exchange")
	}
	return nil
}
