package tracking

// StageBegin starts tracking a transformation stage. The previous
// stage, if any, is implicitly closed at the same instant and moved to
// history; the new stage starts one nanosecond later so the two never
// share a boundary.
func (r *Run) StageBegin(label string, cat Category, order int) {
	now := r.clock.Elapsed()

	if r.pending != nil {
		r.pending.Span.End = now
		r.stages = append(r.stages, *r.pending)
	}

	r.pending = &StageRecord{
		Label:    label,
		Category: cat,
		Order:    order,
		Span:     TimeSpan{Start: now + stagePad},
	}
}

// StageRecords flushes the pending stage into history with the current
// time as its end and returns all completed stages in order.
func (r *Run) StageRecords() []StageRecord {
	if r.pending != nil {
		r.pending.Span.End = r.clock.Elapsed()
		r.stages = append(r.stages, *r.pending)
		r.pending = nil
	}
	return r.stages
}
