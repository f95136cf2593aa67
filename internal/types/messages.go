package types

// Messages exchanged on the panel presence WebSocket. Agents log into
// the panel through this socket; the dashboard snapshot only shows
// agents with a live panel session.

// PanelRegister is sent by an agent's panel right after connecting.
type PanelRegister struct {
	Type       string `json:"type"` // "register"
	Login      string `json:"login"`
	InternalID string `json:"internalId"`
	Ramal      string `json:"ramal"`
	Status     string `json:"status,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

// PanelHeartbeat keeps the panel session alive.
type PanelHeartbeat struct {
	Type  string `json:"type"` // "heartbeat"
	Login string `json:"login"`
}

// PanelLogout ends the panel session explicitly.
type PanelLogout struct {
	Type  string `json:"type"` // "logout"
	Login string `json:"login"`
}

// ServerAck confirms a register to the panel.
type ServerAck struct {
	Type  string `json:"type"` // "ack"
	Login string `json:"login"`
}
