package models

import "time"

// Dialog flows. Each multi-step conversation keeps its progress here instead
// of in process memory so a restart never strands a user mid-wizard.
const (
	FlowAddPromo       = "add-promo"
	FlowEditPromo      = "edit-promo"
	FlowAddStaff       = "add-staff"
	FlowRedeemCode     = "redeem-code"
	FlowManualActivate = "manual-activate"
)

type DialogState struct {
	Flow      string    `msgpack:"flow" json:"flow"`
	Step      int       `msgpack:"step" json:"step"`
	StartedAt time.Time `msgpack:"started_at" json:"started_at"`

	// collected wizard input, meaningful per flow
	PromoID     int64  `msgpack:"promo_id,omitempty" json:"promo_id,omitempty"`
	EditField   string `msgpack:"edit_field,omitempty" json:"edit_field,omitempty"`
	Name        string `msgpack:"name,omitempty" json:"name,omitempty"`
	Description string `msgpack:"description,omitempty" json:"description,omitempty"`
	TotalLimit  int    `msgpack:"total_limit,omitempty" json:"total_limit,omitempty"`
	Role        string `msgpack:"role,omitempty" json:"role,omitempty"`
	TargetID    int64  `msgpack:"target_id,omitempty" json:"target_id,omitempty"`
	FirstName   string `msgpack:"first_name,omitempty" json:"first_name,omitempty"`
	LastName    string `msgpack:"last_name,omitempty" json:"last_name,omitempty"`
}

func (state *DialogState) Next() *DialogState {
	state.Step++
	return state
}
