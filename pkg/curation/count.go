package curation

import (
	"errors"
	"fmt"
)

// CountPolicy is the selection-count contract sent to the model.
// Either Exact is set (optionally with a Min floor for scarce candidates),
// or a Min..Max range is.
type CountPolicy struct {
	Exact int `json:"exact,omitempty" yaml:"exact,omitempty"`
	Min   int `json:"min,omitempty" yaml:"min,omitempty"`
	Max   int `json:"max,omitempty" yaml:"max,omitempty"`
}

// Exactly returns an exact policy with a floor.
func Exactly(n, floor int) CountPolicy {
	return CountPolicy{Exact: n, Min: floor}
}

// Between returns a range policy.
func Between(lo, hi int) CountPolicy {
	return CountPolicy{Min: lo, Max: hi}
}

// Validate checks the policy is one of the two supported shapes.
func (c CountPolicy) Validate() error {
	if c.Exact < 0 || c.Min < 0 || c.Max < 0 {
		return errors.New("count values must not be negative")
	}
	switch {
	case c.Exact > 0 && c.Max > 0:
		return errors.New("count must set either exact or max, not both")
	case c.Exact > 0:
		if c.Min > c.Exact {
			return fmt.Errorf("count min %d exceeds exact %d", c.Min, c.Exact)
		}
	case c.Max > 0:
		if c.Min > c.Max {
			return fmt.Errorf("count min %d exceeds max %d", c.Min, c.Max)
		}
	default:
		return errors.New("count requires exact or max")
	}
	return nil
}

// Target is the upper bound the model is asked for.
func (c CountPolicy) Target() int {
	if c.Exact > 0 {
		return c.Exact
	}
	return c.Max
}

// Describe renders the count instruction for the prompt.
func (c CountPolicy) Describe() string {
	if c.Exact > 0 {
		if c.Min > 0 && c.Min < c.Exact {
			return fmt.Sprintf("중요도 순으로 정확히 %d개 추천해줘. 만약 후보가 너무 부족하면 최소 %d개는 선정해.", c.Exact, c.Min)
		}
		return fmt.Sprintf("중요도 순으로 정확히 %d개 추천해줘.", c.Exact)
	}
	floor := c.Min
	if floor <= 0 {
		floor = 1
	}
	return fmt.Sprintf("중요도 순으로 최소 %d개, 최대 %d개 추천해줘.", floor, c.Max)
}
