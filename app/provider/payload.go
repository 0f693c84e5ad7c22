package provider

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/vibast-solutions/ms-go-paynl/app/paynl"
)

const displayIDPlaceholder = "[display_id]"

// PayloadBuilder turns a host order and payment session into a gateway order
// request. It only reads its inputs.
type PayloadBuilder struct {
	options    Options
	descriptor Descriptor
	webhookURL string
}

func NewPayloadBuilder(options Options, descriptor Descriptor, webhookURL string) *PayloadBuilder {
	return &PayloadBuilder{options: options, descriptor: descriptor, webhookURL: webhookURL}
}

func (b *PayloadBuilder) Build(order Order, session PaymentSession) (paynl.CreateOrderRequest, error) {
	currency := strings.ToUpper(order.CurrencyCode)
	if currency == "" {
		currency = strings.ToUpper(session.CurrencyCode)
	}
	locale := order.metadataString("locale")

	req := paynl.CreateOrderRequest{
		Reference:   strconv.FormatInt(order.DisplayID, 10),
		Description: b.description(order, locale),
		ReturnURL:   b.returnURL(order.ID, locale),
		ExchangeURL: b.webhookURL,
		Amount: paynl.Amount{
			Value:    MinorUnits(session.Amount),
			Currency: currency,
		},
		TransferData: map[string]string{dataKeySessionID: session.Data.SessionID()},
		Customer:     buildCustomer(order, locale),
		Order: &paynl.OrderDetails{
			InvoiceAddress:  buildAddress(order.BillingAddress),
			DeliveryAddress: buildAddress(order.ShippingAddress),
			Products:        buildProducts(order, currency),
		},
	}
	if order.BillingAddress != nil {
		req.Order.CountryCode = strings.ToUpper(order.BillingAddress.CountryCode)
	}

	if b.descriptor.HasMethod() {
		input, err := ParseMethodInput(b.descriptor.InputKind, session.Data.MethodInput())
		if err != nil {
			return paynl.CreateOrderRequest{}, err
		}
		encoded, err := EncodeMethodInput(input)
		if err != nil {
			return paynl.CreateOrderRequest{}, err
		}
		req.PaymentMethod = &paynl.PaymentMethod{ID: b.descriptor.MethodID, Input: encoded}
	}

	expire, ok := b.expiration()
	if ok {
		req.Expire = expire
	}

	return req, nil
}

func (b *PayloadBuilder) expiration() (string, bool) {
	if !b.descriptor.HasMethod() {
		return "+4 hours", true
	}
	return Expiration(b.descriptor.MethodID)
}

func (b *PayloadBuilder) description(order Order, locale string) string {
	displayID := strconv.FormatInt(order.DisplayID, 10)

	if len(b.options.PaymentDescriptions) == 0 {
		if order.SalesChannel != nil && order.SalesChannel.Name != "" {
			return order.SalesChannel.Name + " - #" + displayID
		}
		return "#" + displayID
	}

	template, ok := b.options.PaymentDescriptions[locale]
	if locale == "" || !ok {
		template, ok = b.options.PaymentDescriptions["default"]
		if !ok {
			template = displayIDPlaceholder
		}
	}
	return strings.Replace(template, displayIDPlaceholder, displayID, 1)
}

func (b *PayloadBuilder) returnURL(orderID, locale string) string {
	if b.options.ReturnURL == "" {
		return ""
	}
	query := url.Values{}
	if locale != "" {
		query.Set("locale", strings.ToLower(locale))
	}
	query.Set("orderId", orderID)

	sep := "?"
	if strings.Contains(b.options.ReturnURL, "?") {
		sep = "&"
	}
	return b.options.ReturnURL + sep + query.Encode()
}

func buildProducts(order Order, currency string) []paynl.Product {
	products := make([]paynl.Product, 0, len(order.Items)+2)
	for _, item := range order.Items {
		products = append(products, paynl.Product{
			ID:          firstNonEmpty(item.VariantSKU, item.VariantID, item.ID),
			Description: item.ProductTitle + " - " + item.VariantTitle,
			Type:        "ARTICLE",
			Price: &paynl.Amount{
				Value:    MinorUnits(unitPrice(item)),
				Currency: currency,
			},
			Quantity:      item.Quantity,
			VATPercentage: vatPercentage(item),
		})
	}

	if order.DiscountTotal.IsPositive() {
		products = append(products, paynl.Product{
			ID:          "DISCOUNT",
			Description: "Discount",
			Type:        "DISCOUNT",
			Price:       &paynl.Amount{Value: -MinorUnits(order.DiscountTotal), Currency: currency},
			Quantity:    1,
		})
	}
	if order.ShippingTotal.IsPositive() {
		products = append(products, paynl.Product{
			ID:          "SHIPPING",
			Description: "Shipping",
			Type:        "SHIPPING",
			Price:       &paynl.Amount{Value: MinorUnits(order.ShippingTotal), Currency: currency},
			Quantity:    1,
		})
	}
	return products
}

// unitPrice is rounded to minor units per unit, never on the line total.
func unitPrice(item LineItem) decimal.Decimal {
	if !item.UnitPrice.IsZero() || item.Quantity <= 0 {
		return item.UnitPrice
	}
	return item.OriginalTotal.Div(decimal.NewFromInt(int64(item.Quantity)))
}

func vatPercentage(item LineItem) *float64 {
	if len(item.TaxLines) == 0 {
		return nil
	}
	rate := item.TaxLines[0].Rate
	return &rate
}

func buildCustomer(order Order, locale string) *paynl.Customer {
	customer := &paynl.Customer{
		IPAddress: order.metadataString("ip"),
		Email:     order.Email,
		Locale:    "EN",
	}
	if locale != "" {
		customer.Locale = strings.ToUpper(locale)
	}

	var profile Customer
	if order.Customer != nil {
		profile = *order.Customer
		customer.Reference = profile.ID
	}
	var billing Address
	if order.BillingAddress != nil {
		billing = *order.BillingAddress
	}
	customer.FirstName = firstNonEmpty(profile.FirstName, billing.FirstName)
	customer.LastName = firstNonEmpty(profile.LastName, billing.LastName)
	customer.Phone = firstNonEmpty(profile.Phone, billing.Phone)
	return customer
}

func buildAddress(address *Address) *paynl.Address {
	if address == nil {
		return nil
	}
	return &paynl.Address{
		FirstName:    address.FirstName,
		LastName:     address.LastName,
		Street:       address.Address1,
		StreetNumber: address.Address2,
		ZipCode:      address.PostalCode,
		City:         address.City,
		Country:      strings.ToUpper(address.CountryCode),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
