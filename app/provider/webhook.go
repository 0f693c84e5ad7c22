package provider

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"hash"
	"net/http"
	"net/url"
	"strings"

	"github.com/vibast-solutions/ms-go-paynl/app/paynl"
)

const (
	HeaderSignatureMethod    = "signature-method"
	HeaderSignatureKeyID     = "signature-keyid"
	HeaderSignatureAlgorithm = "signature-algorithm"
	HeaderSignature          = "signature"

	legacyWebhookAction = "new_ppt"
	signedObjectOrder   = "order"
)

// webhookBody holds the fields read from either webhook shape.
type webhookBody struct {
	Action     string
	OrderID    string
	OrderIDAlt string
	ID         string
	Type       string
	Object     json.RawMessage
}

func (b webhookBody) legacy() bool {
	return b.Action == legacyWebhookAction
}

// fallbackID is the id used for the best-effort retrieval after a failed
// dispatch. Only the top-level order ids qualify: the object of a non-order
// event names some other resource.
func (b webhookBody) fallbackID() string {
	return firstNonEmpty(b.OrderIDAlt, b.OrderID)
}

func parseWebhookBody(payload WebhookPayload) (webhookBody, error) {
	raw := bytes.TrimSpace(payload.Raw)
	if len(raw) == 0 {
		return webhookBody{}, paynl.NewError(paynl.ErrorTypeInvalidData, "webhook body is empty")
	}

	if raw[0] == '{' {
		return parseJSONWebhook(raw)
	}
	return parseFormWebhook(raw)
}

func parseJSONWebhook(raw []byte) (webhookBody, error) {
	var fields struct {
		Action     string          `json:"action"`
		OrderID    json.RawMessage `json:"order_id"`
		OrderIDAlt json.RawMessage `json:"orderId"`
		ID         json.RawMessage `json:"id"`
		Type       string          `json:"type"`
		Object     json.RawMessage `json:"object"`
	}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return webhookBody{}, paynl.NewError(paynl.ErrorTypeInvalidData, "webhook body is not valid JSON: %v", err)
	}

	return webhookBody{
		Action:     fields.Action,
		OrderID:    scalarString(fields.OrderID),
		OrderIDAlt: scalarString(fields.OrderIDAlt),
		ID:         scalarString(fields.ID),
		Type:       fields.Type,
		Object:     fields.Object,
	}, nil
}

func parseFormWebhook(raw []byte) (webhookBody, error) {
	values, err := url.ParseQuery(string(raw))
	if err != nil {
		return webhookBody{}, paynl.NewError(paynl.ErrorTypeInvalidData, "webhook body is not form encoded: %v", err)
	}
	return webhookBody{
		Action:     values.Get("action"),
		OrderID:    values.Get("order_id"),
		OrderIDAlt: values.Get("orderId"),
		ID:         values.Get("id"),
		Type:       values.Get("type"),
	}, nil
}

func scalarString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
		return ""
	}
	return string(raw)
}

// VerifySignature checks the HMAC headers of a signed webhook against the raw
// body. keys maps signature key ids to secrets.
func VerifySignature(headers http.Header, raw []byte, keys map[string]string) error {
	method := headers.Get(HeaderSignatureMethod)
	keyID := headers.Get(HeaderSignatureKeyID)
	algorithm := strings.ToLower(strings.TrimSpace(headers.Get(HeaderSignatureAlgorithm)))
	signature := headers.Get(HeaderSignature)

	if method != "HMAC" {
		return paynl.NewError(paynl.ErrorTypeInvalidData, "Invalid signature method")
	}
	secret, ok := keys[keyID]
	if !ok || keyID == "" || secret == "" {
		return paynl.NewError(paynl.ErrorTypeInvalidData, "No secret key found for %s", keyID)
	}
	if algorithm == "" {
		algorithm = "sha256"
	}

	expected, err := ComputeSignature(algorithm, secret, raw)
	if err != nil {
		return err
	}
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return paynl.NewError(paynl.ErrorTypeInvalidData, "Invalid signature")
	}
	return nil
}

// ComputeSignature returns the lowercase hex HMAC of body.
func ComputeSignature(algorithm, secret string, body []byte) (string, error) {
	var newHash func() hash.Hash
	switch algorithm {
	case "sha1":
		newHash = sha1.New
	case "sha256":
		newHash = sha256.New
	case "sha512":
		newHash = sha512.New
	default:
		return "", paynl.NewError(paynl.ErrorTypeInvalidData, "Unsupported signature algorithm %s", algorithm)
	}
	mac := hmac.New(newHash, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil)), nil
}
