package sales

import "fmt"

// PaymentStatus is the state of TicketSale.PaymentInfo.
type PaymentStatus string

const (
	PaymentPending         PaymentStatus = "pending"
	PaymentPendingTransfer PaymentStatus = "pending_transfer"
	PaymentPendingApproval PaymentStatus = "pending_approval"
	PaymentCompleted       PaymentStatus = "completed"
	PaymentFailed          PaymentStatus = "failed"
	PaymentRejected        PaymentStatus = "rejected"
	PaymentRefunded        PaymentStatus = "refunded"
)

var paymentStatuses = []PaymentStatus{
	PaymentPending,
	PaymentPendingTransfer,
	PaymentPendingApproval,
	PaymentCompleted,
	PaymentFailed,
	PaymentRejected,
	PaymentRefunded,
}

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	for _, status := range paymentStatuses {
		if string(status) == s {
			return status, nil
		}
	}
	return "", NewValidationError("status", fmt.Sprintf("unknown payment status %q", s))
}

func (s PaymentStatus) IsTerminal() bool {
	switch s {
	case PaymentCompleted, PaymentFailed, PaymentRejected, PaymentRefunded:
		return true
	case PaymentPending, PaymentPendingTransfer, PaymentPendingApproval:
		return false
	}
	panic(fmt.Sprintf("unhandled payment status %q", string(s)))
}

// SaleStatus is the coarse lifecycle flag, always derived from PaymentStatus.
type SaleStatus string

const (
	SalePendingPayment SaleStatus = "pending_payment"
	SaleConfirmed      SaleStatus = "confirmed"
	SaleCancelled      SaleStatus = "cancelled"
	SaleRejected       SaleStatus = "rejected"
)

func SaleStatusFor(s PaymentStatus) SaleStatus {
	switch s {
	case PaymentPending, PaymentPendingTransfer, PaymentPendingApproval:
		return SalePendingPayment
	case PaymentCompleted:
		return SaleConfirmed
	case PaymentRejected:
		return SaleRejected
	case PaymentFailed, PaymentRefunded:
		return SaleCancelled
	}
	panic(fmt.Sprintf("unhandled payment status %q", string(s)))
}

type Method string

const (
	MethodBankTransfer Method = "bank_transfer"
	MethodPaystack     Method = "paystack"
	MethodOpay         Method = "opay"
)

// Transition names an edge of the payment state machine.
type Transition string

const (
	TransitionMarkTransfer   Transition = "mark_transfer"
	TransitionApprove        Transition = "approve"
	TransitionLegacyApprove  Transition = "legacy_approve"
	TransitionReject         Transition = "reject"
	TransitionGatewaySuccess Transition = "gateway_success"
	TransitionGatewayFailure Transition = "gateway_failure"
	TransitionRefund         Transition = "refund"
)

func (t Transition) Target() PaymentStatus {
	switch t {
	case TransitionMarkTransfer:
		return PaymentPendingApproval
	case TransitionApprove, TransitionLegacyApprove, TransitionGatewaySuccess:
		return PaymentCompleted
	case TransitionReject:
		return PaymentRejected
	case TransitionGatewayFailure:
		return PaymentFailed
	case TransitionRefund:
		return PaymentRefunded
	}
	panic(fmt.Sprintf("unhandled transition %q", string(t)))
}

// CheckTransition reports whether t may be applied to a sale in status from.
// The returned error is one of ErrAlreadyProcessed or ErrAlreadyApproved.
func CheckTransition(t Transition, from PaymentStatus) error {
	switch t {
	case TransitionMarkTransfer:
		if from != PaymentPendingTransfer {
			return ErrAlreadyProcessed
		}
		return nil
	case TransitionApprove:
		if from == PaymentCompleted {
			return ErrAlreadyApproved
		}
		if from != PaymentPendingApproval {
			return ErrAlreadyProcessed
		}
		return nil
	case TransitionLegacyApprove:
		if from == PaymentCompleted {
			return ErrAlreadyApproved
		}
		if from == PaymentRefunded {
			return ErrAlreadyProcessed
		}
		return nil
	case TransitionReject:
		if from == PaymentCompleted {
			return ErrAlreadyApproved
		}
		if from != PaymentPendingApproval {
			return ErrAlreadyProcessed
		}
		return nil
	case TransitionGatewaySuccess:
		if from == PaymentCompleted {
			return ErrAlreadyApproved
		}
		if from != PaymentPending && from != PaymentFailed {
			return ErrAlreadyProcessed
		}
		return nil
	case TransitionGatewayFailure:
		if from != PaymentPending {
			return ErrAlreadyProcessed
		}
		return nil
	case TransitionRefund:
		if from != PaymentCompleted {
			return ErrAlreadyProcessed
		}
		return nil
	}
	panic(fmt.Sprintf("unhandled transition %q", string(t)))
}
