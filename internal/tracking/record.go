package tracking

// TimeSpan is a closed [Start, End] interval in nanoseconds relative to
// the run epoch. End >= Start once a span is closed; spans are never
// reopened after they are read out of the run.
type TimeSpan struct {
	Start int64
	End   int64
}

// Duration returns End - Start.
func (s TimeSpan) Duration() int64 {
	return s.End - s.Start
}

// InclusionRecord tracks one included file. A record is open until its
// matching leave (or the forced close at end of run) sets End.
type InclusionRecord struct {
	Name   string
	Span   TimeSpan
	Closed bool
}

// StageRecord is one completed transformation-stage run. Stages are
// strictly sequential; starting a stage closes its predecessor.
type StageRecord struct {
	Label    string
	Category Category
	Order    int
	Span     TimeSpan
}

// ScopeRecord covers a contiguous run of function parses sharing the
// same enclosing scope.
type ScopeRecord struct {
	Name     string
	Category Category
	Span     TimeSpan
}

// FunctionRecord is one parsed function, in emission order.
type FunctionRecord struct {
	Signature string
	File      string
	Span      TimeSpan
}
