package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpiration(t *testing.T) {
	cases := []struct {
		name     string
		methodID int
		want     string
		ok       bool
	}{
		{name: "ideal is regional", methodID: 10, want: "+15 minutes", ok: true},
		{name: "payconiq is regional", methodID: 2379, want: "+15 minutes", ok: true},
		{name: "klarna is bnpl", methodID: 1717, want: "+30 minutes", ok: true},
		{name: "spraypay uses the default", methodID: 1987, want: "+4 hours", ok: true},
		{name: "creditcard uses the default", methodID: 706, want: "+4 hours", ok: true},
		{name: "unknown method uses the default", methodID: 424242, want: "+4 hours", ok: true},
		{name: "bank transfer has no expiry", methodID: 136, ok: false},
		{name: "direct debit has no expiry", methodID: 137, ok: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Expiration(tc.methodID)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestLookupMethod(t *testing.T) {
	m, ok := LookupMethod(1717)
	require.True(t, ok)
	assert.Equal(t, "Klarna", m.Name)
	assert.Equal(t, CategoryBuyNowPayLater, m.Category)

	_, ok = LookupMethod(-1)
	assert.False(t, ok)
}

func TestDescriptorsUseKnownMethods(t *testing.T) {
	seen := map[string]bool{}
	for _, d := range Descriptors {
		assert.False(t, seen[d.Identifier], "duplicate identifier %s", d.Identifier)
		seen[d.Identifier] = true
		assert.Contains(t, []string{SegmentPay, SegmentPayment}, d.WebhookSegment)
		if d.HasMethod() {
			m, ok := LookupMethod(d.MethodID)
			require.True(t, ok, "method %d of %s missing from the method table", d.MethodID, d.Identifier)
			assert.Equal(t, d.Identifier, m.Provider)
		}
	}
}

func TestMethodsReturnsCopy(t *testing.T) {
	methods := Methods()
	methods[0].Name = "changed"
	m, _ := LookupMethod(methods[0].ID)
	assert.NotEqual(t, "changed", m.Name)
}
