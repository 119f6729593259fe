package ports

// Control is the small observation handle a ReaderLoop holds instead of a
// back-reference to its owning replication source (see spec §9: "avoid the
// temptation to have the ReaderLoop hold a back-reference to its owning
// source object just to read peer_enabled").
//
// Pause and Cancel are receive-only signal channels the loop selects on at
// every suspension point; closing either one must cause a clean exit after
// the current EntryReader is released and any not-yet-enqueued batch has
// had its quota bytes released.
type Control struct {
	// PeerEnabled reports whether the replication destination is
	// administratively active. When false, the reader pauses but
	// retains state.
	PeerEnabled func() bool

	// Pause is closed to ask the loop to suspend and exit without
	// discarding durable state (the loop can be restarted fresh).
	Pause <-chan struct{}

	// Cancel is closed to ask the loop to exit promptly; in-flight
	// accounting is still unwound cleanly.
	Cancel <-chan struct{}
}

// AlwaysEnabled is a Control.PeerEnabled implementation for callers that
// have no peer-disable concept.
func AlwaysEnabled() bool { return true }

// Stopped reports whether either the Pause or Cancel channel has fired.
func (c *Control) Stopped() bool {
	if c == nil {
		return false
	}
	select {
	case <-c.Pause:
		return true
	case <-c.Cancel:
		return true
	default:
		return false
	}
}
