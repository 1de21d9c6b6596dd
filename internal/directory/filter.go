package directory

import "strings"

// Filter returns the stores matching every active criterion, in catalog order.
func Filter(stores []Store, c Criteria, p Preferences) []Store {
	term := strings.ToLower(c.SearchTerm)

	var filters []func(Store) bool
	if term != "" {
		filters = append(filters, func(st Store) bool {
			return strings.Contains(strings.ToLower(st.Name), term)
		})
	}
	if p.ActiveCategory != "" {
		filters = append(filters, func(st Store) bool {
			return st.Category == p.ActiveCategory
		})
	}
	if p.ActiveFloor != 0 {
		filters = append(filters, func(st Store) bool {
			return st.Floor == p.ActiveFloor
		})
	}
	if c.ShowOnlyNew {
		filters = append(filters, func(st Store) bool { return st.IsNew })
	}
	if c.ShowOnlyWithPromotions {
		filters = append(filters, func(st Store) bool { return st.HasPromotions })
	}
	if c.ShowOnlyWithLoyalty {
		filters = append(filters, func(st Store) bool { return st.HasLoyaltyProgram })
	}

	out := make([]Store, 0, len(stores))
	for _, st := range stores {
		matches := true
		for _, fn := range filters {
			if !fn(st) {
				matches = false
				break
			}
		}
		if matches {
			out = append(out, st)
		}
	}
	return out
}

// Categories returns the distinct categories present in stores, by first occurrence.
func Categories(stores []Store) []Category {
	seen := make(map[Category]struct{}, len(KnownCategories))
	out := make([]Category, 0, len(KnownCategories))
	for _, st := range stores {
		if _, ok := seen[st.Category]; ok {
			continue
		}
		seen[st.Category] = struct{}{}
		out = append(out, st.Category)
	}
	return out
}
