// Package sla computes the payment deadline window that opens when a claim
// enters en_paiement. Everything here is a pure function of the claim's
// timestamps; nothing mutates.
package sla

import "time"

// PaymentDeadlineDays is the fixed regulatory window for settling every
// quittance once a claim is approved for payment.
const PaymentDeadlineDays = 10

// Urgency bands a delay status for dashboards and work queues.
type Urgency string

const (
	UrgencyNormal  Urgency = "normal"
	UrgencyUrgent  Urgency = "urgent"
	UrgencyOverdue Urgency = "overdue"
)

// Window is the delay window of one claim in payment.
type Window struct {
	DateDebut    time.Time `json:"date_debut"`
	DateEcheance time.Time `json:"date_echeance"`
}

// NewWindow opens a window at the payment-approval time.
func NewWindow(debut time.Time) Window {
	return Window{
		DateDebut:    debut,
		DateEcheance: debut.AddDate(0, 0, PaymentDeadlineDays),
	}
}

// Status is the computed position of now inside a window.
type Status struct {
	JoursRestants int  `json:"jours_restants"`
	Depasse       bool `json:"depasse"`
}

// ComputeStatus returns the whole days remaining until the deadline.
// Negative days mean the deadline has passed.
func ComputeStatus(w Window, now time.Time) Status {
	remaining := w.DateEcheance.Sub(now)
	days := int(remaining.Hours() / 24)
	// Truncation rounds toward zero; a partially elapsed overdue day still
	// counts against the deadline.
	if remaining < 0 && remaining.Hours() != float64(days*24) {
		days--
	}
	return Status{JoursRestants: days, Depasse: days < 0}
}

// Classify bands a status into its urgency.
func Classify(s Status) Urgency {
	switch {
	case s.Depasse:
		return UrgencyOverdue
	case s.JoursRestants <= 3:
		return UrgencyUrgent
	default:
		return UrgencyNormal
	}
}

// Progress reports how much of the window has elapsed, as a percentage.
// Overdue windows are pinned to 100.
func Progress(s Status) int {
	if s.Depasse {
		return 100
	}
	p := 100 - s.JoursRestants*100/PaymentDeadlineDays
	if p < 0 {
		return 0
	}
	return p
}
