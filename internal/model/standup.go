package model

// StandupLine is one buffered submission inside an active standup window.
// The handle is captured at submission time, so a later rename (which never
// changes a handle anyway) or departure can't alter already-buffered lines.
type StandupLine struct {
	Handle string
	Text   string
}

// StandupStatus reports whether a channel has an active standup window.
// TimeFinish is nil when the channel is idle — the JSON null the API
// promises, rather than a zero timestamp a client could mistake for 1970.
type StandupStatus struct {
	IsActive   bool   `json:"isActive"`
	TimeFinish *int64 `json:"timeFinish"` // unix seconds; null when idle
}
