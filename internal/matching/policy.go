package matching

import (
	"errors"
	"strings"
)

const (
	// DefaultWeakMatchThreshold is the top similarity under which the lexical fallback runs.
	DefaultWeakMatchThreshold = 0.25
	// DefaultSkillWeight weighs skill overlap in the alternative score.
	DefaultSkillWeight = 0.75
	// DefaultTitleWeight weighs title overlap in the alternative score.
	DefaultTitleWeight = 0.25
	// DefaultAlternativeReason labels every alternative result.
	DefaultAlternativeReason = "skills or title closely related"
)

// Policy holds the tunable values of the fallback pass.
// The defaults are uncalibrated against real embedding score distributions.
type Policy struct {
	WeakMatchThreshold float64 `mapstructure:"weak-match-threshold"`
	SkillWeight        float64 `mapstructure:"skill-weight"`
	TitleWeight        float64 `mapstructure:"title-weight"`
	AlternativeReason  string  `mapstructure:"alternative-reason"`
}

// DefaultPolicy returns the stock fallback policy.
func DefaultPolicy() Policy {
	return Policy{
		WeakMatchThreshold: DefaultWeakMatchThreshold,
		SkillWeight:        DefaultSkillWeight,
		TitleWeight:        DefaultTitleWeight,
		AlternativeReason:  DefaultAlternativeReason,
	}
}

// Validate checks the weights.
func (p Policy) Validate() error {
	if p.SkillWeight < 0 || p.TitleWeight < 0 {
		return errors.New("fallback weights must not be negative")
	}
	if p.SkillWeight+p.TitleWeight == 0 {
		return errors.New("at least one fallback weight must be positive")
	}
	return nil
}

func (p Policy) reason() string {
	if reason := strings.TrimSpace(p.AlternativeReason); reason != "" {
		return reason
	}
	return DefaultAlternativeReason
}
