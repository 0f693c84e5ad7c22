package provider

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/vibast-solutions/ms-go-paynl/app/paynl"
)

// InputKind names the shape of the method specific data a provider accepts.
type InputKind string

const (
	InputKindNone        InputKind = ""
	InputKindIdeal       InputKind = "ideal"
	InputKindDirectDebit InputKind = "direct_debit"
	InputKindKlarna      InputKind = "klarna"
	InputKindGiftCard    InputKind = "gift_card"
	InputKindPin         InputKind = "pin"
)

// MethodInput is the structured data attached to paymentMethod.input on a
// new gateway order.
type MethodInput interface {
	Kind() InputKind
	Validate() error
}

type IdealInput struct {
	IssuerID string `json:"issuerId,omitempty"`
}

func (IdealInput) Kind() InputKind { return InputKindIdeal }

func (i IdealInput) Validate() error { return nil }

type DirectDebitInput struct {
	FirstName       string `json:"firstName,omitempty"`
	LastName        string `json:"lastName,omitempty"`
	Email           string `json:"email,omitempty"`
	City            string `json:"city,omitempty"`
	IBAN            string `json:"iban"`
	BIC             string `json:"bic,omitempty"`
	PermissionGiven *bool  `json:"permissionGiven,omitempty"`
}

var ibanPattern = regexp.MustCompile(`^[A-Z]{2}[0-9]{2}[A-Z0-9]{10,30}$`)

func (DirectDebitInput) Kind() InputKind { return InputKindDirectDebit }

// NormalizeIBAN strips spaces and upper-cases an IBAN.
func NormalizeIBAN(iban string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(iban), " ", ""))
}

func (d DirectDebitInput) Validate() error {
	iban := NormalizeIBAN(d.IBAN)
	if iban == "" {
		return paynl.NewError(paynl.ErrorTypeInvalidData, "iban is required for direct debit")
	}
	if !ibanPattern.MatchString(iban) {
		return paynl.NewError(paynl.ErrorTypeInvalidData, "iban %q is not valid", d.IBAN)
	}
	if d.PermissionGiven != nil && !*d.PermissionGiven {
		return paynl.NewError(paynl.ErrorTypeInvalidData, "direct debit permission was not given")
	}
	return nil
}

type KlarnaInput struct {
	CountryCode string `json:"countryCode"`
}

func (KlarnaInput) Kind() InputKind { return InputKindKlarna }

func (k KlarnaInput) Validate() error {
	if len(strings.TrimSpace(k.CountryCode)) != 2 {
		return paynl.NewError(paynl.ErrorTypeInvalidData, "countryCode must be a two letter country code")
	}
	return nil
}

type GiftCardInput struct {
	CardNumber string `json:"cardNumber"`
	PinCode    string `json:"pincode,omitempty"`
}

func (GiftCardInput) Kind() InputKind { return InputKindGiftCard }

func (g GiftCardInput) Validate() error {
	if strings.TrimSpace(g.CardNumber) == "" {
		return paynl.NewError(paynl.ErrorTypeInvalidData, "cardNumber is required for gift cards")
	}
	return nil
}

type PinInput struct {
	TerminalCode string `json:"terminalCode"`
}

func (PinInput) Kind() InputKind { return InputKindPin }

func (p PinInput) Validate() error {
	if strings.TrimSpace(p.TerminalCode) == "" {
		return paynl.NewError(paynl.ErrorTypeInvalidData, "terminalCode is required for pin payments")
	}
	return nil
}

// ParseMethodInput decodes and validates raw method input. When kind is
// InputKindNone the shape is detected from the keys present. Empty input
// yields a nil MethodInput.
func ParseMethodInput(kind InputKind, raw json.RawMessage) (MethodInput, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte("{}")) {
		return nil, nil
	}
	if trimmed[0] != '{' {
		return nil, paynl.NewError(paynl.ErrorTypeInvalidData, "paymentMethodInput must be an object")
	}

	if kind == InputKindNone {
		detected, err := detectInputKind(trimmed)
		if err != nil {
			return nil, err
		}
		kind = detected
	}

	var input MethodInput
	switch kind {
	case InputKindIdeal:
		var v IdealInput
		if err := strictDecode(trimmed, &v); err != nil {
			return nil, err
		}
		input = v
	case InputKindDirectDebit:
		var v DirectDebitInput
		if err := strictDecode(trimmed, &v); err != nil {
			return nil, err
		}
		v.IBAN = NormalizeIBAN(v.IBAN)
		input = v
	case InputKindKlarna:
		var v KlarnaInput
		if err := strictDecode(trimmed, &v); err != nil {
			return nil, err
		}
		v.CountryCode = strings.ToUpper(strings.TrimSpace(v.CountryCode))
		input = v
	case InputKindGiftCard:
		var v GiftCardInput
		if err := strictDecode(trimmed, &v); err != nil {
			return nil, err
		}
		input = v
	case InputKindPin:
		var v PinInput
		if err := strictDecode(trimmed, &v); err != nil {
			return nil, err
		}
		input = v
	default:
		return nil, paynl.NewError(paynl.ErrorTypeInvalidData, "unsupported payment method input %q", kind)
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}
	return input, nil
}

// EncodeMethodInput renders the input as the gateway's paymentMethod.input.
func EncodeMethodInput(input MethodInput) (json.RawMessage, error) {
	if input == nil {
		return nil, nil
	}
	return json.Marshal(input)
}

func detectInputKind(raw []byte) (InputKind, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return InputKindNone, paynl.NewError(paynl.ErrorTypeInvalidData, "paymentMethodInput is not valid JSON")
	}
	switch {
	case has(keys, "iban"):
		return InputKindDirectDebit, nil
	case has(keys, "cardNumber"):
		return InputKindGiftCard, nil
	case has(keys, "terminalCode"):
		return InputKindPin, nil
	case has(keys, "countryCode"):
		return InputKindKlarna, nil
	case has(keys, "issuerId"):
		return InputKindIdeal, nil
	}
	return InputKindNone, paynl.NewError(paynl.ErrorTypeInvalidData, "unrecognised paymentMethodInput")
}

func has(keys map[string]json.RawMessage, key string) bool {
	_, ok := keys[key]
	return ok
}

func strictDecode(raw []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return paynl.NewError(paynl.ErrorTypeInvalidData, "invalid paymentMethodInput: %v", err)
	}
	return nil
}
