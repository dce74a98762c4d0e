package presence

// ActivityType is Discord's activity kind, shown as e.g. "Listening to".
type ActivityType int

const ActivityListening ActivityType = 2

// Payload is a rich presence activity, shaped like Discord's activity object.
type Payload struct {
	Type       ActivityType `json:"type"`
	State      string       `json:"state,omitempty"`
	Details    string       `json:"details,omitempty"`
	Timestamps *Timestamps  `json:"timestamps,omitempty"`
	Assets     Assets       `json:"assets"`
}

type Timestamps struct {
	End int64 `json:"end,omitempty"` // unix seconds
}

type Assets struct {
	LargeImage string `json:"large_image,omitempty"`
	LargeText  string `json:"large_text,omitempty"`
	SmallImage string `json:"small_image,omitempty"`
	SmallText  string `json:"small_text,omitempty"`
}

// EndTimestamp returns the track end time, present only while playing.
func (p *Payload) EndTimestamp() (int64, bool) {
	if p.Timestamps == nil {
		return 0, false
	}
	return p.Timestamps.End, true
}
