package models

// Vessel is the static metadata of a tracked ship keyed by its MMSI.
// Nil fields are unknown; an update never replaces a known value with nil.
type Vessel struct {
	MMSI     int64   `json:"id"`
	Name     *string `json:"name"`
	IMO      *int64  `json:"imo"`
	CallSign *string `json:"call_sign"`
	ShipType *int    `json:"ship_type"`
}

// DisplayName returns the name or "" when unknown.
func (v *Vessel) DisplayName() string {
	if v == nil || v.Name == nil {
		return ""
	}
	return *v.Name
}
