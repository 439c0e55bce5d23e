package enums

import "fmt"

// Capability is an optional configuration module an agent may offer.
type Capability string

const (
	CapabilityProviders       Capability = "providers"
	CapabilityProducts        Capability = "products"
	CapabilityAutomotiveInfo  Capability = "automotive_info"
	CapabilityAdvancedCatalog Capability = "advanced_catalog"
)

var validCapabilities = []Capability{
	CapabilityProviders,
	CapabilityProducts,
	CapabilityAutomotiveInfo,
	CapabilityAdvancedCatalog,
}

// String implements fmt.Stringer.
func (c Capability) String() string {
	return string(c)
}

// IsValid reports whether the value is known.
func (c Capability) IsValid() bool {
	for _, candidate := range validCapabilities {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCapability converts raw input into a Capability.
func ParseCapability(value string) (Capability, error) {
	for _, candidate := range validCapabilities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid capability %q", value)
}

// Capabilities lists every known capability in display order.
func Capabilities() []Capability {
	out := make([]Capability, len(validCapabilities))
	copy(out, validCapabilities)
	return out
}

// Toggleable reports whether end users may flip the capability from the module toggle endpoint.
// advanced_catalog is managed by staff only.
func (c Capability) Toggleable() bool {
	switch c {
	case CapabilityProviders, CapabilityProducts, CapabilityAutomotiveInfo:
		return true
	default:
		return false
	}
}
