package directory

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCatalog is returned when catalog records violate identity or floor constraints.
var ErrInvalidCatalog = errors.New("directory: invalid catalog")

// Category is a raw category key. Human readable labels are resolved by i18n.
type Category string

const (
	CategoryWomenClothing Category = "womenClothing"
	CategorySportswear    Category = "sportswear"
	CategoryAppliances    Category = "appliances"
	CategoryToys          Category = "toys"
	CategoryUnderwear     Category = "underwear"
	CategoryMenClothing   Category = "menClothing"
	CategoryOther         Category = "other"
)

// KnownCategories lists the category keys the UI knows how to label.
var KnownCategories = []Category{
	CategoryWomenClothing,
	CategorySportswear,
	CategoryAppliances,
	CategoryToys,
	CategoryUnderwear,
	CategoryMenClothing,
	CategoryOther,
}

// LabelKey returns the translation key for the category label.
func (c Category) LabelKey() string {
	return "category." + string(c)
}

// Floors are the mall levels a store can be located on.
var Floors = []int{1, 2, 3}

// ViewMode selects how the directory renders.
type ViewMode string

const (
	ViewList ViewMode = "list"
	ViewMap  ViewMode = "map"
)

// ParseViewMode normalizes s; anything other than "map" is the list view.
func ParseViewMode(s string) ViewMode {
	if strings.EqualFold(strings.TrimSpace(s), string(ViewMap)) {
		return ViewMap
	}
	return ViewList
}

// Store is an immutable catalog record.
type Store struct {
	ID                int
	Name              string
	Category          Category
	Floor             int
	IsNew             bool
	HasPromotions     bool
	HasLoyaltyProgram bool
	TemporarilyClosed bool
	LogoURL           string
	Description       string
}

// Initial returns the first letter of the store name for logo placeholders.
func (s Store) Initial() string {
	for _, r := range s.Name {
		return strings.ToUpper(string(r))
	}
	return ""
}

// ValidateCatalog checks id uniqueness, floor range and category presence.
func ValidateCatalog(stores []Store) error {
	seen := make(map[int]struct{}, len(stores))
	for i, st := range stores {
		if st.ID <= 0 {
			return fmt.Errorf("%w: record %d has non-positive id %d", ErrInvalidCatalog, i, st.ID)
		}
		if _, dup := seen[st.ID]; dup {
			return fmt.Errorf("%w: duplicate id %d", ErrInvalidCatalog, st.ID)
		}
		seen[st.ID] = struct{}{}
		if st.Floor < 1 || st.Floor > 3 {
			return fmt.Errorf("%w: store %d on floor %d", ErrInvalidCatalog, st.ID, st.Floor)
		}
		if strings.TrimSpace(string(st.Category)) == "" {
			return fmt.Errorf("%w: store %d has empty category", ErrInvalidCatalog, st.ID)
		}
	}
	return nil
}

// FindByID returns the store with the given id.
func FindByID(stores []Store, id int) (Store, bool) {
	for _, st := range stores {
		if st.ID == id {
			return st, true
		}
	}
	return Store{}, false
}

func cloneStores(in []Store) []Store {
	if in == nil {
		return nil
	}
	out := make([]Store, len(in))
	copy(out, in)
	return out
}
