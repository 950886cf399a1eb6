package domain

import (
	"strings"

	"github.com/dsaidinesh/adsynth-backedn/internal/constants"
	"github.com/dsaidinesh/adsynth-backedn/pkg/errors"
)

// ProductInfo describes the product an ad is written for.
type ProductInfo struct {
	Name           string `json:"product_name" yaml:"product_name"`
	Description    string `json:"product_description" yaml:"product_description"`
	TargetAudience string `json:"target_audience" yaml:"target_audience"`
	UseCases       string `json:"use_cases,omitempty" yaml:"use_cases,omitempty"`
	KeyUseCases    string `json:"key_use_cases,omitempty" yaml:"key_use_cases,omitempty"`
	Niche          string `json:"niche,omitempty" yaml:"niche,omitempty"`
	Keywords       string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	CampaignGoal   string `json:"campaign_goal" yaml:"campaign_goal"`
}

// Normalize trims every field and folds the legacy key_use_cases field into UseCases.
func (p ProductInfo) Normalize() ProductInfo {
	p.Name = strings.TrimSpace(p.Name)
	p.Description = strings.TrimSpace(p.Description)
	p.TargetAudience = strings.TrimSpace(p.TargetAudience)
	p.UseCases = strings.TrimSpace(p.UseCases)
	p.KeyUseCases = strings.TrimSpace(p.KeyUseCases)
	p.Niche = strings.TrimSpace(p.Niche)
	p.Keywords = strings.TrimSpace(p.Keywords)
	p.CampaignGoal = strings.TrimSpace(p.CampaignGoal)
	if p.UseCases == "" {
		p.UseCases = p.KeyUseCases
	}
	p.KeyUseCases = ""
	return p
}

func (p ProductInfo) Validate() error {
	required := []struct {
		field string
		value string
	}{
		{"product_name", p.Name},
		{"product_description", p.Description},
		{"target_audience", p.TargetAudience},
		{"campaign_goal", p.CampaignGoal},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return errors.NewValidationError(r.field+" is required", r.field, r.value)
		}
	}
	return nil
}

// OrNotSpecified returns value, or the prompt sentinel when it is blank.
func OrNotSpecified(value string) string {
	if strings.TrimSpace(value) == "" {
		return constants.NotSpecified
	}
	return value
}

// DefaultProduct is the sample product used when no product info is supplied.
func DefaultProduct() ProductInfo {
	return ProductInfo{
		Name:           "FocusFlow",
		Description:    "A productivity app that helps users maintain focus and track their work habits using AI-powered insights and gentle reminders.",
		TargetAudience: "Remote workers, freelancers, and students who struggle with distractions",
		UseCases:       "Deep work sessions, deadline management, habit building, distraction blocking",
		Niche:          "productivity",
		CampaignGoal:   "Increase app downloads and free trial signups",
	}
}
