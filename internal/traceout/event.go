package traceout

// Event is one begin or end record in the Trace Event Format consumed
// by chrome://tracing and compatible viewers.
type Event struct {
	Name      string         `json:"name"`
	Phase     string         `json:"ph"` // "B" or "E"
	Category  string         `json:"cat"`
	Timestamp float64        `json:"ts"` // microseconds
	PID       int            `json:"pid"`
	TID       int            `json:"tid"`
	Args      map[string]any `json:"args"`
}

// Document is the complete trace artifact.
type Document struct {
	DisplayTimeUnit string  `json:"displayTimeUnit"`
	BeginningOfTime int64   `json:"beginningOfTime"`
	TraceEvents     []Event `json:"traceEvents"`
}
