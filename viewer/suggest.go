package viewer

import (
	"context"
	"strings"
	"time"
)

// TypeAddress records a keystroke in the address box. A search is sent
// once the text has been left alone for the debounce period; empty text
// hides the list immediately without searching.
func (v *Viewer) TypeAddress(text string) {
	v.mu.Lock()
	v.form.Address = text
	if text != v.selectedAddress {
		v.selectedAddress = ""
	}
	v.suggestGen++
	gen := v.suggestGen
	if v.suggestTimer != nil {
		v.suggestTimer.Stop()
		v.suggestTimer = nil
	}

	query := strings.TrimSpace(text)
	if query == "" {
		hidden := v.hideSuggestionsLocked()
		v.mu.Unlock()
		if hidden {
			v.events.Emit(Event{Kind: SuggestionsUpdated})
		}
		return
	}

	v.suggestTimer = time.AfterFunc(v.debounce, func() {
		v.runSuggest(v.ctx, gen, query)
	})
	v.mu.Unlock()
}

func (v *Viewer) runSuggest(ctx context.Context, gen uint64, query string) {
	v.mu.Lock()
	current := gen == v.suggestGen
	v.mu.Unlock()
	if !current {
		return
	}

	suggestions, err := v.backend.SearchAddress(ctx, query)

	v.mu.Lock()
	if gen != v.suggestGen {
		v.mu.Unlock()
		return
	}
	if err != nil || len(suggestions) == 0 {
		if err != nil {
			logger.Debug().Err(err).Str("query", query).Msg("Address search failed")
		}
		v.hideSuggestionsLocked()
		v.mu.Unlock()
		v.events.Emit(Event{Kind: SuggestionsUpdated})
		return
	}
	if len(suggestions) > MaxSuggestions {
		suggestions = suggestions[:MaxSuggestions]
	}
	v.suggestions = suggestions
	v.suggestionsVisible = true
	v.mu.Unlock()

	v.events.Emit(Event{Kind: SuggestionsUpdated, Count: len(suggestions)})
}

func (v *Viewer) hideSuggestionsLocked() bool {
	wasVisible := v.suggestionsVisible
	v.suggestions = nil
	v.suggestionsVisible = false
	return wasVisible
}

// SelectSuggestion jumps the map to the i-th suggestion and attaches its
// label to the next submission.
func (v *Viewer) SelectSuggestion(ctx context.Context, i int) error {
	v.mu.Lock()
	if !v.suggestionsVisible || i < 0 || i >= len(v.suggestions) {
		v.mu.Unlock()
		return nil
	}
	s := v.suggestions[i]
	v.suggestGen++
	v.hideSuggestionsLocked()
	v.form.Address = s.Label
	v.selectedAddress = s.Label
	runPending := v.setCenterLocked(s.Position, SelectionZoom)
	v.mu.Unlock()

	pos := s.Position
	v.events.Emit(Event{Kind: SuggestionSelected, Position: &pos})
	if runPending {
		return v.Refresh(ctx)
	}
	return nil
}

// ClickOutside hides the suggestion list.
func (v *Viewer) ClickOutside() {
	v.mu.Lock()
	hidden := v.hideSuggestionsLocked()
	v.mu.Unlock()

	if hidden {
		v.events.Emit(Event{Kind: SuggestionsUpdated})
	}
}

// ClickMap moves the map center to p and fills the address box with the
// place found there. A failed lookup leaves the address untouched.
func (v *Viewer) ClickMap(ctx context.Context, p LatLng) error {
	v.mu.Lock()
	hidden := v.hideSuggestionsLocked()
	runPending := v.setCenterLocked(p, 0)
	v.suggestGen++
	gen := v.suggestGen
	v.mu.Unlock()

	if hidden {
		v.events.Emit(Event{Kind: SuggestionsUpdated})
	}
	v.events.Emit(Event{Kind: MapClicked, Position: &p})

	// A failed fetch shows its own retry banner; the lookup still runs.
	var fetchErr error
	if runPending {
		fetchErr = v.Refresh(ctx)
	}

	place, err := v.backend.ReverseGeocode(ctx, p)
	if err != nil {
		logger.Debug().Err(err).Msg("Reverse geocoding failed")
		return fetchErr
	}

	v.mu.Lock()
	if gen == v.suggestGen {
		v.form.Address = place.Label
		v.selectedAddress = place.Label
	}
	v.mu.Unlock()
	return fetchErr
}
