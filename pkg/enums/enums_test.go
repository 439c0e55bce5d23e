package enums

import "testing"

func TestParseRoundTrips(t *testing.T) {
	for _, v := range validSubscriptionStatuses {
		got, err := ParseSubscriptionStatus(v.String())
		if err != nil || got != v {
			t.Fatalf("round trip failed for %s: %v", v, err)
		}
	}
	for _, v := range validCapabilities {
		got, err := ParseCapability(v.String())
		if err != nil || got != v {
			t.Fatalf("round trip failed for %s: %v", v, err)
		}
	}
	if _, err := ParseBlogCategory("news"); err == nil {
		t.Fatal("expected unknown blog category to fail")
	}
	if _, err := ParsePricingType(""); err == nil {
		t.Fatal("expected empty pricing type to fail")
	}
}

func TestCapabilityToggleable(t *testing.T) {
	cases := map[Capability]bool{
		CapabilityProviders:       true,
		CapabilityProducts:        true,
		CapabilityAutomotiveInfo:  true,
		CapabilityAdvancedCatalog: false,
		Capability("unknown"):     false,
	}
	for c, want := range cases {
		if got := c.Toggleable(); got != want {
			t.Fatalf("%s: expected toggleable=%v got %v", c, want, got)
		}
	}
	if len(Capabilities()) != 4 {
		t.Fatalf("expected four capabilities")
	}
}

func TestRoleAndStatusHelpers(t *testing.T) {
	if UserRoleUser.IsStaff() || !UserRoleStaff.IsStaff() || !UserRoleSuperuser.IsStaff() {
		t.Fatal("unexpected staff classification")
	}
	if !SubscriptionStatusActive.Entitles() {
		t.Fatal("active should entitle")
	}
	for _, s := range []SubscriptionStatus{SubscriptionStatusInactive, SubscriptionStatusExpired, SubscriptionStatusCancelled} {
		if s.Entitles() {
			t.Fatalf("%s should not entitle", s)
		}
	}
}
