package model

// StepState is one ledger entry, serialized as {"status": "..."}.
type StepState struct {
	Status StepStatus `json:"status"`
}

// Ledger maps step index to its status. JSON keys are the decimal indices.
type Ledger map[int]StepState

// NewLedger returns the fresh-start ledger: step 0 current, everything else pending.
func NewLedger() Ledger {
	return Ledger{0: {Status: StatusCurrent}}
}

// Status returns the status of step i, pending when unset.
func (l Ledger) Status(i int) StepStatus {
	if s, ok := l[i]; ok && s.Status != "" {
		return s.Status
	}
	return StatusPending
}

// Merge writes every entry of partial into the ledger and leaves the rest untouched.
func (l Ledger) Merge(partial map[int]StepStatus) {
	for i, s := range partial {
		l[i] = StepState{Status: s}
	}
}

// Clone returns an independent copy.
func (l Ledger) Clone() Ledger {
	out := make(Ledger, len(l))
	for k, v := range l {
		out[k] = v
	}
	return out
}

// CurrentIndex returns the lowest index marked current, or -1.
func (l Ledger) CurrentIndex() int {
	idx := -1
	for i, s := range l {
		if s.Status == StatusCurrent && (idx == -1 || i < idx) {
			idx = i
		}
	}
	return idx
}
