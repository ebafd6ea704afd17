package suggest

import (
	"sync"
)

// Title and detail of the warning shown when suggestions can't be provided for a reason
// the user can fix.
const (
	UnavailableTitle  = "Elm autocompletions unavailable"
	UnavailableDetail = "Please ensure you have:\n  - Set the proper elm-oracle path\n  - run `elm package install` within your project folder"
)

// A Notifier shows a warning to the user.
type Notifier interface {
	Warn(title, detail string)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(title, detail string)

// Warn implements Notifier.
func (f NotifierFunc) Warn(title, detail string) {
	f(title, detail)
}

// LogNotifier is a Notifier that just logs, for surfaces with nobody to show a popup to.
var LogNotifier = NotifierFunc(func(title, detail string) {
	log.Warning("%s. %s", title, detail)
})

// A OnceNotifier passes on only the first warning it's given. One should be created per
// editor session.
type OnceNotifier struct {
	sink Notifier
	once sync.Once
}

// NewOnceNotifier returns a OnceNotifier sending to the given sink.
func NewOnceNotifier(sink Notifier) *OnceNotifier {
	return &OnceNotifier{sink: sink}
}

// Warn implements Notifier.
func (n *OnceNotifier) Warn(title, detail string) {
	n.once.Do(func() {
		n.sink.Warn(title, detail)
	})
}
