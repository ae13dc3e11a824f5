package dashboard

import "time"

// Kind is the visual class of a notification.
type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

const (
	DisplayDuration = 3 * time.Second
	ExitDuration    = 300 * time.Millisecond
)

type Notification struct {
	ID      int
	Kind    Kind
	Text    string
	Exiting bool
}

// Notifier holds the stack of visible notifications. Each one moves through
// visible → exiting → removed on its own schedule; the caller drives the
// transitions from timer messages.
type Notifier struct {
	nextID int
	items  []Notification
}

// Push appends a notification and returns its id. An empty kind is info.
func (n *Notifier) Push(kind Kind, text string) int {
	if kind == "" {
		kind = KindInfo
	}
	n.nextID++
	n.items = append(n.items, Notification{ID: n.nextID, Kind: kind, Text: text})
	return n.nextID
}

// BeginExit moves a notification into its exit phase.
func (n *Notifier) BeginExit(id int) bool {
	for i := range n.items {
		if n.items[i].ID == id {
			n.items[i].Exiting = true
			return true
		}
	}
	return false
}

func (n *Notifier) Remove(id int) bool {
	for i := range n.items {
		if n.items[i].ID == id {
			n.items = append(n.items[:i], n.items[i+1:]...)
			return true
		}
	}
	return false
}

// Active returns the notifications oldest first.
func (n *Notifier) Active() []Notification {
	out := make([]Notification, len(n.items))
	copy(out, n.items)
	return out
}

func (n *Notifier) Len() int { return len(n.items) }
