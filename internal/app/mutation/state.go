package mutation

// Phase is where a row is in the view/edit/delete flow.
//
//	Idle -> ViewOpen -> Idle
//	Idle -> EditOpen -> Saving -> Idle | Failed
//	Idle -> ConfirmingDelete -> Deleting -> Idle | Failed
type Phase int

const (
	Idle Phase = iota
	ViewOpen
	EditOpen
	Saving
	ConfirmingDelete
	Deleting
	Failed
)

var phaseNames = [...]string{"idle", "view_open", "edit_open", "saving", "confirming_delete", "deleting", "error"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// MarshalText encodes the phase as its name.
func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// InFlight reports whether a remote call is outstanding.
func (p Phase) InFlight() bool { return p == Saving || p == Deleting }

// RowState is the phase of one row plus the message of its last failure.
type RowState struct {
	Phase Phase  `json:"phase"`
	Err   string `json:"error,omitempty"`
}
