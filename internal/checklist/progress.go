package checklist

import (
	"encoding/json"
	"fmt"
	"math"
)

// FontSizeKey stores the visitor's preferred text size. It is shared by all
// checklists.
const FontSizeKey = "thai-visa-checklist:fontsize:v1"

type FontSize string

const (
	FontSmall  FontSize = "small"
	FontMedium FontSize = "medium"
	FontLarge  FontSize = "large"
)

// FontSizes lists the choices in display order.
var FontSizes = []FontSize{FontSmall, FontMedium, FontLarge}

// ParseFontSize accepts only the known sizes.
func ParseFontSize(s string) (FontSize, bool) {
	switch FontSize(s) {
	case FontSmall, FontMedium, FontLarge:
		return FontSize(s), true
	}
	return "", false
}

// LoadFontSize returns the stored size, or small when unset or unknown.
func LoadFontSize(store Store) FontSize {
	raw, ok := store.Get(FontSizeKey)
	if !ok {
		return FontSmall
	}
	size, ok := ParseFontSize(raw)
	if !ok {
		return FontSmall
	}
	return size
}

func SaveFontSize(store Store, size FontSize) error {
	if _, ok := ParseFontSize(string(size)); !ok {
		return fmt.Errorf("unknown font size %q", size)
	}
	return store.Set(FontSizeKey, string(size))
}

// State is the set of ticked keys for one checklist.
type State map[string]bool

// Progress summarises a State against its checklist.
type Progress struct {
	Done    int
	Total   int
	Percent int
}

// Tracker reads and writes ticked items for one checklist.
type Tracker struct {
	store     Store
	checklist *Checklist
}

func NewTracker(store Store, c *Checklist) *Tracker {
	return &Tracker{store: store, checklist: c}
}

// State loads ticked keys. Missing or unreadable data yields an empty state.
func (t *Tracker) State() State {
	state := State{}
	raw, ok := t.store.Get(t.checklist.StorageKey())
	if !ok || raw == "" {
		return state
	}
	var decoded map[string]bool
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return state
	}
	for k, v := range decoded {
		if v {
			state[k] = true
		}
	}
	return state
}

func (t *Tracker) save(state State) error {
	ticked := make(map[string]bool, len(state))
	for k, v := range state {
		if v {
			ticked[k] = true
		}
	}
	raw, err := json.Marshal(ticked)
	if err != nil {
		return err
	}
	return t.store.Set(t.checklist.StorageKey(), string(raw))
}

// Toggle flips key and returns its new value.
func (t *Tracker) Toggle(key string) (bool, error) {
	if !t.checklist.HasKey(key) {
		return false, fmt.Errorf("%w: item %q", ErrNotFound, key)
	}
	state := t.State()
	next := !state[key]
	if next {
		state[key] = true
	} else {
		delete(state, key)
	}
	if err := t.save(state); err != nil {
		return false, fmt.Errorf("save progress: %w", err)
	}
	return next, nil
}

// Reset clears every ticked item.
func (t *Tracker) Reset() error {
	return t.store.Delete(t.checklist.StorageKey())
}

// Progress counts ticked keys that still exist in the checklist.
func (t *Tracker) Progress(state State) Progress {
	total := t.checklist.Total()
	done := 0
	for _, k := range t.checklist.Keys() {
		if state[k] {
			done++
		}
	}
	p := Progress{Done: done, Total: total}
	if total > 0 {
		p.Percent = int(math.Round(float64(done) / float64(total) * 100))
	}
	return p
}
