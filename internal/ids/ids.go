package ids

import "github.com/segmentio/ksuid"

// New returns a fresh record identifier. KSUIDs sort by creation time,
// which the event feed relies on for stable insertion order.
func New() string {
	return ksuid.New().String()
}
