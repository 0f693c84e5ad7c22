package provider

const (
	IdentifierPay          = "pay"
	IdentifierSoftPOS      = "pay-softpos"
	IdentifierAlmaPay      = "pay-almapay"
	IdentifierApplePay     = "pay-apple-pay"
	IdentifierBancontact   = "pay-bancontact"
	IdentifierBillink      = "pay-billink"
	IdentifierBlik         = "pay-blik"
	IdentifierBrite        = "pay-brite"
	IdentifierCreditCard   = "pay-creditcard"
	IdentifierDirectDebit  = "pay-direct-debit"
	IdentifierEPS          = "pay-eps"
	IdentifierGooglePay    = "pay-google-pay"
	IdentifierIdeal        = "pay-ideal"
	IdentifierIdealIn3     = "pay-ideal-in3"
	IdentifierKlarna       = "pay-klarna"
	IdentifierMobilePay    = "pay-mobilepay"
	IdentifierMondu        = "pay-mondu"
	IdentifierPayByBank    = "pay-paybybank"
	IdentifierPayconiq     = "pay-payconiq"
	IdentifierPayPal       = "pay-paypal"
	IdentifierPrzelewy24   = "pay-przelewy24"
	IdentifierRiverty      = "pay-riverty"
	IdentifierSEPATransfer = "pay-sepa-transfer"
	IdentifierSprayPay     = "pay-spraypay"
	IdentifierTwint        = "pay-twint"
	IdentifierVipps        = "pay-vipps"
	IdentifierWeChatPay    = "pay-wechatpay"
	IdentifierWero         = "pay-wero"
)

// Webhook path segments. Both routes accept Pay. webhooks.
const (
	SegmentPay     = "pay"
	SegmentPayment = "payment"
)

// Descriptor is the data that distinguishes one payment-method provider from
// another. A zero MethodID means hosted checkout: the gateway lets the
// customer pick the method.
type Descriptor struct {
	Identifier     string
	MethodID       int
	WebhookSegment string
	InputKind      InputKind
}

func (d Descriptor) HasMethod() bool {
	return d.MethodID != 0
}

// Descriptors lists every supported provider.
var Descriptors = []Descriptor{
	{Identifier: IdentifierPay, WebhookSegment: SegmentPayment},
	{Identifier: IdentifierSoftPOS, WebhookSegment: SegmentPay, InputKind: InputKindPin},
	{Identifier: IdentifierAlmaPay, MethodID: 3552, WebhookSegment: SegmentPay},
	{Identifier: IdentifierApplePay, MethodID: 2277, WebhookSegment: SegmentPayment},
	{Identifier: IdentifierBancontact, MethodID: 436, WebhookSegment: SegmentPayment},
	{Identifier: IdentifierBillink, MethodID: 1672, WebhookSegment: SegmentPayment},
	{Identifier: IdentifierBlik, MethodID: 2856, WebhookSegment: SegmentPayment},
	{Identifier: IdentifierBrite, MethodID: 4287, WebhookSegment: SegmentPay},
	{Identifier: IdentifierCreditCard, MethodID: 706, WebhookSegment: SegmentPayment},
	{Identifier: IdentifierDirectDebit, MethodID: 137, WebhookSegment: SegmentPayment, InputKind: InputKindDirectDebit},
	{Identifier: IdentifierEPS, MethodID: 2062, WebhookSegment: SegmentPay},
	{Identifier: IdentifierGooglePay, MethodID: 2558, WebhookSegment: SegmentPayment},
	{Identifier: IdentifierIdeal, MethodID: 10, WebhookSegment: SegmentPayment, InputKind: InputKindIdeal},
	{Identifier: IdentifierIdealIn3, MethodID: 1813, WebhookSegment: SegmentPayment},
	{Identifier: IdentifierKlarna, MethodID: 1717, WebhookSegment: SegmentPayment, InputKind: InputKindKlarna},
	{Identifier: IdentifierMobilePay, MethodID: 3558, WebhookSegment: SegmentPay},
	{Identifier: IdentifierMondu, MethodID: 3192, WebhookSegment: SegmentPayment},
	{Identifier: IdentifierPayByBank, MethodID: 2970, WebhookSegment: SegmentPay},
	{Identifier: IdentifierPayconiq, MethodID: 2379, WebhookSegment: SegmentPayment},
	{Identifier: IdentifierPayPal, MethodID: 138, WebhookSegment: SegmentPay},
	{Identifier: IdentifierPrzelewy24, MethodID: 2151, WebhookSegment: SegmentPay},
	{Identifier: IdentifierRiverty, MethodID: 2561, WebhookSegment: SegmentPay},
	{Identifier: IdentifierSEPATransfer, MethodID: 136, WebhookSegment: SegmentPay},
	{Identifier: IdentifierSprayPay, MethodID: 1987, WebhookSegment: SegmentPayment},
	{Identifier: IdentifierTwint, MethodID: 3840, WebhookSegment: SegmentPay},
	{Identifier: IdentifierVipps, MethodID: 3834, WebhookSegment: SegmentPay},
	{Identifier: IdentifierWeChatPay, MethodID: 1978, WebhookSegment: SegmentPay},
	{Identifier: IdentifierWero, MethodID: 3762, WebhookSegment: SegmentPay},
}
