package provider

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vibast-solutions/ms-go-paynl/app/paynl"
)

func TestParseMethodInputEmpty(t *testing.T) {
	for _, raw := range []string{"", "null", "{}", "  "} {
		input, err := ParseMethodInput(InputKindIdeal, json.RawMessage(raw))
		require.NoError(t, err)
		assert.Nil(t, input)
	}
}

func TestParseMethodInputDeclaredKind(t *testing.T) {
	input, err := ParseMethodInput(InputKindDirectDebit, json.RawMessage(`{"iban":"nl91 abna 0417 1643 00","firstName":"Jan"}`))
	require.NoError(t, err)

	dd, ok := input.(DirectDebitInput)
	require.True(t, ok)
	assert.Equal(t, "NL91ABNA0417164300", dd.IBAN)
	assert.Equal(t, "Jan", dd.FirstName)

	encoded, err := EncodeMethodInput(input)
	require.NoError(t, err)
	assert.JSONEq(t, `{"iban":"NL91ABNA0417164300","firstName":"Jan"}`, string(encoded))
}

func TestParseMethodInputDetectsShape(t *testing.T) {
	cases := map[string]InputKind{
		`{"issuerId":"INGBNL2A"}`:                InputKindIdeal,
		`{"countryCode":"nl"}`:                   InputKindKlarna,
		`{"cardNumber":"6064","pincode":"1234"}`: InputKindGiftCard,
		`{"terminalCode":"TH-1234-5678"}`:        InputKindPin,
		`{"iban":"DE89370400440532013000"}`:      InputKindDirectDebit,
	}
	for raw, want := range cases {
		input, err := ParseMethodInput(InputKindNone, json.RawMessage(raw))
		require.NoError(t, err, raw)
		assert.Equal(t, want, input.Kind(), raw)
	}
}

func TestParseMethodInputRejectsInvalid(t *testing.T) {
	cases := []struct {
		kind InputKind
		raw  string
	}{
		{InputKindDirectDebit, `{"firstName":"Jan"}`},
		{InputKindDirectDebit, `{"iban":"not-an-iban"}`},
		{InputKindDirectDebit, `{"iban":"NL91ABNA0417164300","permissionGiven":false}`},
		{InputKindKlarna, `{"countryCode":"NLD"}`},
		{InputKindIdeal, `{"issuerId":"X","unexpected":true}`},
		{InputKindPin, `{"terminalCode":""}`},
		{InputKindNone, `{"something":"else"}`},
		{InputKindNone, `["issuerId"]`},
	}
	for _, tc := range cases {
		_, err := ParseMethodInput(tc.kind, json.RawMessage(tc.raw))
		require.Error(t, err, tc.raw)
		assert.True(t, errors.Is(err, paynl.ErrInvalidData), tc.raw)
	}
}
