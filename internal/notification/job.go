package notification

import (
	"errors"
	"ticketsale/internal/domain/sales"
	"time"

	"github.com/segmentio/ksuid"
)

type JobType string

const (
	JobTransferCompleted JobType = "transfer_completed"
	JobTicketEmail       JobType = "ticket_email"
	JobPaymentRejection  JobType = "payment_rejection"
	JobReminder          JobType = "reminder"
)

type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

var ErrUnknownJobType = errors.New("unknown notification job type")

// Job is one email to deliver. Sale is a snapshot taken when the job was created.
type Job struct {
	ID            string           `json:"id"`
	Type          JobType          `json:"type"`
	Sale          sales.TicketSale `json:"sale"`
	Reason        string           `json:"reason,omitempty"`
	Suspicious    bool             `json:"suspicious,omitempty"`
	Attempts      int              `json:"attempts"`
	Priority      Priority         `json:"priority"`
	CreatedAt     time.Time        `json:"createdAt"`
	NextAttemptAt time.Time        `json:"nextAttemptAt"`
}

func NewJob(jobType JobType, sale sales.TicketSale, now time.Time) Job {
	return Job{
		ID:            ksuid.New().String(),
		Type:          jobType,
		Sale:          sale,
		Priority:      PriorityNormal,
		CreatedAt:     now,
		NextAttemptAt: now,
	}
}

func TransferCompletedJob(sale sales.TicketSale, now time.Time) Job {
	return NewJob(JobTransferCompleted, sale, now)
}

func TicketEmailJob(sale sales.TicketSale, now time.Time) Job {
	return NewJob(JobTicketEmail, sale, now)
}

func RejectionJob(sale sales.TicketSale, now time.Time) Job {
	job := NewJob(JobPaymentRejection, sale, now)
	job.Reason = sale.PaymentInfo.RejectionReason
	return job
}

func ReminderJob(sale sales.TicketSale, suspicious bool, now time.Time) Job {
	job := NewJob(JobReminder, sale, now)
	job.Suspicious = suspicious
	return job
}

func (j Job) WithPriority(p Priority) Job {
	j.Priority = p
	return j
}

func (j Job) Reference() string {
	return j.Sale.Reference()
}
