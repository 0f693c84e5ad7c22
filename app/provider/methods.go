package provider

// MethodCategory groups gateway payment methods.
// See https://developer.pay.nl/docs/payment-option-ids-subids
type MethodCategory string

const (
	CategoryRegional       MethodCategory = "regional"
	CategoryCardNotPresent MethodCategory = "card_not_present"
	CategoryInPerson       MethodCategory = "in_person"
	CategoryBuyNowPayLater MethodCategory = "buy_now_pay_later"
	CategoryAlternative    MethodCategory = "alternative"
)

type Method struct {
	ID       int            `json:"id"`
	Name     string         `json:"name"`
	Category MethodCategory `json:"type"`
	Provider string         `json:"value,omitempty"`
}

const (
	methodBankTransfer = 136
	methodDirectDebit  = 137
	methodSprayPay     = 1987
)

var paymentMethods = []Method{
	{ID: 10, Name: "iDEAL", Category: CategoryRegional, Provider: IdentifierIdeal},
	{ID: 436, Name: "Bancontact", Category: CategoryRegional, Provider: IdentifierBancontact},
	{ID: 2970, Name: "Pay By Bank", Category: CategoryRegional, Provider: IdentifierPayByBank},
	{ID: 559, Name: "SOFORT Banking", Category: CategoryRegional},
	{ID: 577, Name: "SOFORT Banking", Category: CategoryRegional},
	{ID: 595, Name: "SOFORT Banking", Category: CategoryRegional},
	{ID: 694, Name: "Giropay", Category: CategoryRegional},
	{ID: 1978, Name: "WeChat Pay e-commerce", Category: CategoryRegional, Provider: IdentifierWeChatPay},
	{ID: 2074, Name: "WeChat Quickpay", Category: CategoryRegional},
	{ID: 2062, Name: "EPS Überweisung", Category: CategoryRegional, Provider: IdentifierEPS},
	{ID: 2080, Name: "Alipay", Category: CategoryRegional},
	{ID: 2151, Name: "Przelewy24", Category: CategoryRegional, Provider: IdentifierPrzelewy24},
	{ID: 2271, Name: "Multibanco", Category: CategoryRegional},
	{ID: 2379, Name: "Payconiq", Category: CategoryRegional, Provider: IdentifierPayconiq},
	{ID: 2718, Name: "Trustly", Category: CategoryRegional},
	{ID: 2856, Name: "Blik", Category: CategoryRegional, Provider: IdentifierBlik},
	{ID: 3558, Name: "MobilePay", Category: CategoryRegional, Provider: IdentifierMobilePay},
	{ID: 2907, Name: "AliPay PLUS", Category: CategoryRegional},
	{ID: 3840, Name: "Twint", Category: CategoryRegional, Provider: IdentifierTwint},
	{ID: 3762, Name: "WERO", Category: CategoryRegional, Provider: IdentifierWero},
	{ID: 4287, Name: "Brite Payments", Category: CategoryRegional, Provider: IdentifierBrite},
	{ID: 3834, Name: "Vipps", Category: CategoryRegional, Provider: IdentifierVipps},

	{ID: 706, Name: "Visa / Mastercard", Category: CategoryCardNotPresent, Provider: IdentifierCreditCard},
	{ID: 709, Name: "Visa / Mastercard", Category: CategoryCardNotPresent},
	{ID: 3141, Name: "Visa", Category: CategoryCardNotPresent},
	{ID: 3138, Name: "Mastercard", Category: CategoryCardNotPresent},
	{ID: 707, Name: "PostePay", Category: CategoryCardNotPresent},
	{ID: 708, Name: "PostePay", Category: CategoryCardNotPresent},
	{ID: 2268, Name: "Carte Bancaire", Category: CategoryCardNotPresent},
	{ID: 712, Name: "Maestro", Category: CategoryCardNotPresent},
	{ID: 715, Name: "Maestro", Category: CategoryCardNotPresent},
	{ID: 1705, Name: "American Express", Category: CategoryCardNotPresent},
	{ID: 1939, Name: "Dankort", Category: CategoryCardNotPresent},
	{ID: 1945, Name: "Nexi", Category: CategoryCardNotPresent},
	{ID: 2277, Name: "Apple Pay", Category: CategoryCardNotPresent, Provider: IdentifierApplePay},
	{ID: 2558, Name: "Google Pay", Category: CategoryCardNotPresent, Provider: IdentifierGooglePay},

	{ID: 2561, Name: "Riverty", Category: CategoryBuyNowPayLater, Provider: IdentifierRiverty},
	{ID: 1672, Name: "Billink", Category: CategoryBuyNowPayLater, Provider: IdentifierBillink},
	{ID: 1717, Name: "Klarna", Category: CategoryBuyNowPayLater, Provider: IdentifierKlarna},
	{ID: 1813, Name: "iDEAL In3", Category: CategoryBuyNowPayLater, Provider: IdentifierIdealIn3},
	{ID: 1987, Name: "SprayPay", Category: CategoryBuyNowPayLater, Provider: IdentifierSprayPay},
	{ID: 2107, Name: "CreditClick", Category: CategoryBuyNowPayLater},
	{ID: 2931, Name: "NOTYD", Category: CategoryBuyNowPayLater},
	{ID: 3552, Name: "AlmaPAY", Category: CategoryBuyNowPayLater, Provider: IdentifierAlmaPay},
	{ID: 3192, Name: "Mondu", Category: CategoryBuyNowPayLater, Provider: IdentifierMondu},

	{ID: 1013, Name: "Bancontact", Category: CategoryInPerson},
	{ID: 1002, Name: "Visa Electron", Category: CategoryInPerson},
	{ID: 1003, Name: "V Pay", Category: CategoryInPerson},
	{ID: 1009, Name: "Maestro", Category: CategoryInPerson},
	{ID: 1052, Name: "Visa Debit", Category: CategoryInPerson},
	{ID: 1053, Name: "Mastercard Debit", Category: CategoryInPerson},
	{ID: 2002, Name: "Visa", Category: CategoryInPerson},
	{ID: 2003, Name: "Mastercard", Category: CategoryInPerson},
	{ID: 2004, Name: "American Express", Category: CategoryInPerson},
	{ID: 2005, Name: "Diners/Discover", Category: CategoryInPerson},
	{ID: 2007, Name: "JCB", Category: CategoryInPerson},
	{ID: 2008, Name: "UnionPay", Category: CategoryInPerson},
	{ID: 2009, Name: "Monizze", Category: CategoryInPerson},
	{ID: 2012, Name: "CMFC", Category: CategoryInPerson},
	{ID: 2014, Name: "Basic Card", Category: CategoryInPerson},
	{ID: 3003, Name: "Sodexo Card", Category: CategoryInPerson},
	{ID: 3004, Name: "Edenred", Category: CategoryInPerson},
	{ID: 3013, Name: "CCV Card", Category: CategoryInPerson},
	{ID: 3014, Name: "Travelcard", Category: CategoryInPerson},
	{ID: 3020, Name: "Company cards", Category: CategoryInPerson},
	{ID: 3021, Name: "Wordline WL", Category: CategoryInPerson},
	{ID: 3100, Name: "Equens WL", Category: CategoryInPerson},
	{ID: 3200, Name: "Yourgift", Category: CategoryInPerson},
	{ID: 3300, Name: "Giftcard", Category: CategoryInPerson},

	{ID: 136, Name: "Bank Transfer (SCT)", Category: CategoryAlternative, Provider: IdentifierSEPATransfer},
	{ID: 137, Name: "SEPA Direct Debit", Category: CategoryAlternative, Provider: IdentifierDirectDebit},
	{ID: 138, Name: "PayPal", Category: CategoryAlternative, Provider: IdentifierPayPal},
	{ID: 1903, Name: "Amazon Pay", Category: CategoryAlternative},
	{ID: 553, Name: "Paysafecard", Category: CategoryAlternative},
	{ID: 1600, Name: "Telephone payments", Category: CategoryAlternative},
}

var methodsByID = func() map[int]Method {
	out := make(map[int]Method, len(paymentMethods))
	for _, m := range paymentMethods {
		out[m.ID] = m
	}
	return out
}()

func LookupMethod(id int) (Method, bool) {
	m, ok := methodsByID[id]
	return m, ok
}

// Methods returns a copy of the payment method table.
func Methods() []Method {
	out := make([]Method, len(paymentMethods))
	copy(out, paymentMethods)
	return out
}

// Expiration returns the relative expiry sent with a new order. Bank transfer
// and direct debit orders carry no expiry, signalled by ok == false.
func Expiration(methodID int) (expire string, ok bool) {
	if methodID == methodBankTransfer || methodID == methodDirectDebit {
		return "", false
	}
	m, found := methodsByID[methodID]
	if found {
		switch {
		case m.Category == CategoryRegional:
			return "+15 minutes", true
		case m.Category == CategoryBuyNowPayLater && m.ID != methodSprayPay:
			return "+30 minutes", true
		}
	}
	return "+4 hours", true
}
