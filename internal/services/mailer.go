package services

import (
	"log"

	"harvestlink/internal/domain"
)

// Mailer is the outbound notification collaborator (transactional email).
// Delivery is best effort: a failure is logged and never fails the inquiry
// mutation that produced the event.
type Mailer interface {
	NotifyInquiry(ev domain.NotificationEvent) error
}

// LogMailer stands in for the real email collaborator and writes the
// would-be notification to the process log.
type LogMailer struct{}

func (LogMailer) NotifyInquiry(ev domain.NotificationEvent) error {
	log.Printf("[mail] farmer=%s inquiry=%s kind=%s seq=%d", ev.FarmerID, ev.InquiryID, ev.Kind, ev.Seq)
	return nil
}
