package models

import "time"

type InvoiceStatus string

const (
	InvoiceUnverified InvoiceStatus = "Unverified"
	InvoiceVerified   InvoiceStatus = "Verified"
	InvoiceExpired    InvoiceStatus = "Expired"
)

// PaymentWindow is how long a priced enrollment stays payable.
const PaymentWindow = 60 * time.Minute

type Invoice struct {
	Model
	EnrollmentID         uint          `json:"enrollmentId" gorm:"uniqueIndex;not null"`
	AmountIdr            int64         `json:"amountIdr" gorm:"not null;default:0"`
	VirtualAccountNumber *string       `json:"virtualAccountNumber" gorm:"type:varchar(18)"`
	PaymentDueDatetime   *time.Time    `json:"paymentDueDatetime" gorm:"index"`
	Status               InvoiceStatus `json:"status" gorm:"type:varchar(20);index;not null"`
}
