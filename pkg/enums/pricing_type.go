package enums

import "fmt"

// PricingType describes how an agent is billed.
type PricingType string

const (
	PricingTypeMonthly    PricingType = "monthly"
	PricingTypeUsage      PricingType = "usage"
	PricingTypeEnterprise PricingType = "enterprise"
)

var validPricingTypes = []PricingType{
	PricingTypeMonthly,
	PricingTypeUsage,
	PricingTypeEnterprise,
}

// String implements fmt.Stringer.
func (p PricingType) String() string {
	return string(p)
}

// IsValid reports whether the value is known.
func (p PricingType) IsValid() bool {
	for _, candidate := range validPricingTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePricingType converts raw input into a PricingType.
func ParsePricingType(value string) (PricingType, error) {
	for _, candidate := range validPricingTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid pricing type %q", value)
}
