package advisory

import "time"

// Bulletin is one advisory mail pulled from the configured mailbox.
type Bulletin struct {
	MessageID string
	Subject   string
	From      string
	Date      time.Time
	UID       uint32
	TextBody  string
}
