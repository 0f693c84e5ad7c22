package paynl

const (
	DefaultRESTAPIURL   = "https://rest.pay.nl/v2"
	DefaultTGUAPIURL    = "https://connect.pay.nl/v1"
	DefaultRESTAPIV3URL = "https://rest-api.pay.nl/v3"
)

const (
	pathGetConfig         = "/services/config?serviceId={id}"
	pathOrderCreate       = "/orders"
	pathOrderUpdate       = "/orders/{id}"
	pathOrderStatus       = "/orders/{id}/status"
	pathOrderCapture      = "/orders/{id}/capture"
	pathOrderAbort        = "/orders/{id}/abort"
	pathGetTransaction    = "/transactions/{id}"
	pathTransactionRefund = "/transactions/{id}/refund"
	pathDirectDebit       = "/DirectDebit/debitAdd/json"
	pathDirectDebitInfo   = "/DirectDebit/info/json"
)

// StatsObject identifies this integration in the gateway statistics.
const StatsObject = "ms-go-paynl|version 1.0.0"

// Gateway transaction status codes.
// See https://developer.pay.nl/docs/transaction-statuses
const (
	StatusInit            = 20
	StatusPending20       = 20
	StatusPending50       = 50
	StatusPending90       = 90
	StatusPending98       = 98
	StatusCancel          = -90
	StatusExpired         = -80
	StatusDenied64        = -64
	StatusDenied63        = -63
	StatusCancel61        = -61
	StatusFailure         = -60
	StatusPaidCheckAmount = -51
	StatusPartialPayment  = 80
	StatusVerify          = 85
	StatusAuthorize       = 95
	StatusPartlyCaptured  = 97
	StatusPaid            = 100
	StatusChargeback      = -71
	StatusRefunding       = -72
	StatusRefund          = -81
	StatusPartialRefund   = -82
)
