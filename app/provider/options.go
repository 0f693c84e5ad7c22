package provider

import (
	"strings"
	"time"

	"github.com/vibast-solutions/ms-go-paynl/app/paynl"
)

type CaptureMode string

const (
	CaptureModeAutomatic CaptureMode = "automatic"
	CaptureModeManual    CaptureMode = "manual"
)

// Options are the merchant settings shared by every Pay. provider. They are
// loaded once at startup and never mutated.
type Options struct {
	AccountCode         string
	APIToken            string
	ServiceID           string
	ServiceSecret       string
	OtherServiceSecrets map[string]string

	// ProviderConfigID is the suffix the host appends to provider ids.
	ProviderConfigID string

	ReturnURL      string
	WebhookBaseURL string

	TestMode    bool
	Debug       bool
	CaptureMode CaptureMode

	WebhookDelay   time.Duration
	WebhookRetries int

	PaymentDescriptions map[string]string
}

func (o Options) Validate() error {
	if strings.TrimSpace(o.AccountCode) == "" ||
		strings.TrimSpace(o.APIToken) == "" ||
		strings.TrimSpace(o.ServiceID) == "" ||
		strings.TrimSpace(o.ServiceSecret) == "" {
		return paynl.NewError(paynl.ErrorTypeInvalidData,
			"AT Code, API Token, SL Code and SL Secret are required in the provider's options.")
	}
	switch o.CaptureMode {
	case "", CaptureModeAutomatic, CaptureModeManual:
	default:
		return paynl.NewError(paynl.ErrorTypeInvalidData, "capture mode must be automatic or manual")
	}
	return nil
}

// KeyMap maps signature key ids to their HMAC secrets.
func (o Options) KeyMap() map[string]string {
	keys := make(map[string]string, len(o.OtherServiceSecrets)+2)
	keys[o.AccountCode] = o.APIToken
	keys[o.ServiceID] = o.ServiceSecret
	for code, secret := range o.OtherServiceSecrets {
		keys[code] = secret
	}
	return keys
}

func (o Options) debugEnabled() bool {
	return o.TestMode || o.Debug
}

func (o Options) configID() string {
	if strings.TrimSpace(o.ProviderConfigID) == "" {
		return "pay"
	}
	return o.ProviderConfigID
}
