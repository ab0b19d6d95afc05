package domain

// Order Statuses
const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
	OrderStatusRefunded   = "refunded"
	OrderStatusReturned   = "returned"
)

// Payment Statuses
const (
	PaymentStatusPending      = "pending"
	PaymentStatusPendingVerif = "pending_verification"
	PaymentStatusPaid         = "paid"
	PaymentStatusFailed       = "failed"
	PaymentStatusRefunded     = "refunded"
)

// Payment Methods
const (
	PaymentMethodCOD   = "cod"
	PaymentMethodBKash = "bkash"
	PaymentMethodNagad = "nagad"
)

// List exports for the config enums API
var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusRefunded,
	OrderStatusReturned,
}

var PaymentStatuses = []string{
	PaymentStatusPending,
	PaymentStatusPendingVerif,
	PaymentStatusPaid,
	PaymentStatusFailed,
	PaymentStatusRefunded,
}

var PaymentMethods = []string{
	PaymentMethodCOD,
	PaymentMethodBKash,
	PaymentMethodNagad,
}
