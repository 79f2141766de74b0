package service

import (
	"fmt"
	"time"

	"sinistra/internal/claims/models"
	"sinistra/internal/sla"
)

// DelayStatus is the read-side projection of the payment deadline window.
type DelayStatus struct {
	DateDebut     time.Time   `json:"date_debut"`
	DateEcheance  time.Time   `json:"date_echeance"`
	JoursRestants int         `json:"jours_restants"`
	Depasse       bool        `json:"depasse"`
	Urgence       sla.Urgency `json:"urgence"`
	Progression   int         `json:"progression"`
}

// View is the claim read model: the aggregate plus everything a work queue
// needs that is a pure function of it.
type View struct {
	*models.Claim
	Delai         *DelayStatus `json:"delai,omitempty"`
	EstModifiable bool         `json:"est_modifiable"`
}

func newView(claim *models.Claim, now time.Time) *View {
	view := &View{Claim: claim, EstModifiable: !claim.IsLocked()}
	if window, ok := claim.DelayWindow(); ok {
		status := sla.ComputeStatus(window, now)
		view.Delai = &DelayStatus{
			DateDebut:     window.DateDebut,
			DateEcheance:  window.DateEcheance,
			JoursRestants: status.JoursRestants,
			Depasse:       status.Depasse,
			Urgence:       sla.Classify(status),
			Progression:   sla.Progress(status),
		}
	}
	return view
}

// parseDate accepts a bare date or a full RFC 3339 timestamp; declaration
// clients send both depending on which partner system originated the claim.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}
