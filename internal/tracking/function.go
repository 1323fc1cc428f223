package tracking

// FunctionParsed records one completed function parse. Real parse
// durations can be near-zero, so the span is anchored at the last
// boundary plus a pad, which keeps consecutive function spans strictly
// increasing and non-overlapping.
//
// Adjacent functions sharing the same enclosing scope extend one
// ScopeRecord instead of creating new ones. Scope spans are padded by
// one nanosecond on each side so they visually enclose their first and
// last child without sharing a boundary instant. An empty scopeName
// clears the coalescing state.
func (r *Run) FunctionParsed(signature, file, scopeName string, scopeCat Category) {
	now := r.clock.Elapsed()

	span := TimeSpan{Start: r.lastBoundary + funcPad, End: now}
	r.lastBoundary = now

	r.functions = append(r.functions, FunctionRecord{
		Signature: signature,
		File:      file,
		Span:      span,
	})

	if scopeName == "" {
		r.lastHadScope = false
		return
	}

	if r.lastHadScope && len(r.scopes) > 0 && r.scopes[len(r.scopes)-1].Name == scopeName {
		r.scopes[len(r.scopes)-1].Span.End = span.End + scopePad
	} else {
		r.scopes = append(r.scopes, ScopeRecord{
			Name:     scopeName,
			Category: scopeCat,
			Span: TimeSpan{
				Start: span.Start - scopePad,
				End:   span.End + scopePad,
			},
		})
	}
	r.lastHadScope = true
}
