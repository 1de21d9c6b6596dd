package directory

import (
	"encoding/json"
	"strings"
)

// StorageKey names the durable storage entry holding Preferences.
const StorageKey = "stores-storage"

// Criteria holds the session-only filter state. It is never persisted.
type Criteria struct {
	SearchTerm             string
	ShowOnlyNew            bool
	ShowOnlyWithPromotions bool
	ShowOnlyWithLoyalty    bool
}

// Preferences is the persisted subset of directory state.
// Zero ActiveCategory and ActiveFloor mean "no filter".
type Preferences struct {
	ActiveCategory Category
	ActiveFloor    int
	ViewMode       ViewMode
}

// DefaultPreferences is used when storage is empty or unreadable.
func DefaultPreferences() Preferences {
	return Preferences{ViewMode: ViewList}
}

type preferencesWire struct {
	ActiveCategory *string `json:"activeCategory"`
	ActiveFloor    *int    `json:"activeFloor"`
	ViewMode       string  `json:"viewMode"`
}

// MarshalJSON writes unset filters as null.
func (p Preferences) MarshalJSON() ([]byte, error) {
	w := preferencesWire{ViewMode: string(ParseViewMode(string(p.ViewMode)))}
	if p.ActiveCategory != "" {
		c := string(p.ActiveCategory)
		w.ActiveCategory = &c
	}
	if p.ActiveFloor != 0 {
		f := p.ActiveFloor
		w.ActiveFloor = &f
	}
	return json.Marshal(w)
}

// UnmarshalJSON reads the stored object; null fields clear the filter.
func (p *Preferences) UnmarshalJSON(b []byte) error {
	var w preferencesWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	out := DefaultPreferences()
	if w.ActiveCategory != nil {
		out.ActiveCategory = Category(strings.TrimSpace(*w.ActiveCategory))
	}
	if w.ActiveFloor != nil {
		out.ActiveFloor = *w.ActiveFloor
	}
	out.ViewMode = ParseViewMode(w.ViewMode)
	*p = out
	return nil
}

// DecodePreferences parses a stored entry. Malformed content yields defaults and false.
// Entries wrapped in a {"state": {...}} envelope are accepted as well.
func DecodePreferences(raw []byte) (Preferences, bool) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return DefaultPreferences(), false
	}
	var envelope struct {
		State json.RawMessage `json:"state"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return DefaultPreferences(), false
	}
	if len(envelope.State) > 0 && string(envelope.State) != "null" {
		raw = envelope.State
	}
	var p Preferences
	if err := json.Unmarshal(raw, &p); err != nil {
		return DefaultPreferences(), false
	}
	return p, true
}

// EncodePreferences renders the storage representation of p.
func EncodePreferences(p Preferences) []byte {
	b, _ := json.Marshal(p)
	return b
}
