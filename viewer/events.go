package viewer

import "sync"

// EventKind enumerates what the viewer announces to its presentation layer.
type EventKind int

const (
	IssuesLoaded EventKind = iota + 1
	IssueCreated
	FiltersApplied
	SuggestionsUpdated
	SuggestionSelected
	MapClicked
	MessageShown
	LoadingChanged
	LiveStateChanged
	ThemeChanged
	TourAdvanced
)

var eventNames = map[EventKind]string{
	IssuesLoaded:       "IssuesLoaded",
	IssueCreated:       "IssueCreated",
	FiltersApplied:     "FiltersApplied",
	SuggestionsUpdated: "SuggestionsUpdated",
	SuggestionSelected: "SuggestionSelected",
	MapClicked:         "MapClicked",
	MessageShown:       "MessageShown",
	LoadingChanged:     "LoadingChanged",
	LiveStateChanged:   "LiveStateChanged",
	ThemeChanged:       "ThemeChanged",
	TourAdvanced:       "TourAdvanced",
}

func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return "Unknown"
}

// IssueSource tells whether an IssueCreated came from this client's own
// submission or from the live channel.
type IssueSource int

const (
	SourceLocal IssueSource = iota
	SourceLive
)

// Event carries the payload relevant to its Kind; other fields are zero.
type Event struct {
	Kind      EventKind
	Issue     *Issue
	Source    IssueSource
	Count     int
	Loading   bool
	Message   *Message
	Position  *LatLng
	LiveState LiveState
	Theme     Theme
	TourIndex int
}

type Handler func(Event)

// Dispatcher fans events out to registered handlers. Handlers run on the
// goroutine that emitted the event and must not block.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[EventKind][]Handler
	catchAll []Handler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[EventKind][]Handler)}
}

// On registers h for one kind of event.
func (d *Dispatcher) On(kind EventKind, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[kind] = append(d.handlers[kind], h)
}

// OnAny registers h for every event.
func (d *Dispatcher) OnAny(h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.catchAll = append(d.catchAll, h)
}

func (d *Dispatcher) Emit(events ...Event) {
	for _, e := range events {
		d.mu.RLock()
		handlers := append([]Handler(nil), d.handlers[e.Kind]...)
		handlers = append(handlers, d.catchAll...)
		d.mu.RUnlock()

		for _, h := range handlers {
			h(e)
		}
	}
}
