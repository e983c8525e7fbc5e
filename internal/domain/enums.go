package domain

// Closed enumerations. Invalid values are rejected at the boundary rather
// than silently stored.

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"
)

func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCash, PaymentCard, PaymentTransfer:
		return true
	}
	return false
}

type OperationType string

const (
	OperationRefund   OperationType = "refund"
	OperationExchange OperationType = "exchange"
)

func (o OperationType) Valid() bool {
	return o == OperationRefund || o == OperationExchange
}

type ReturnReason string

const (
	ReasonDefective       ReturnReason = "defective"
	ReasonWrongItem       ReturnReason = "wrong_item"
	ReasonCustomerRequest ReturnReason = "customer_request"
	ReasonOther           ReturnReason = "other"
)

func (r ReturnReason) Valid() bool {
	switch r {
	case ReasonDefective, ReasonWrongItem, ReasonCustomerRequest, ReasonOther:
		return true
	}
	return false
}

type Gender string

const (
	GenderUnisex Gender = "unisex"
	GenderWomen  Gender = "women"
	GenderMen    Gender = "men"
)

func (g Gender) Valid() bool {
	switch g {
	case GenderUnisex, GenderWomen, GenderMen:
		return true
	}
	return false
}
