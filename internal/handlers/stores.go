package handlers

import (
	"strconv"

	"finitefield.org/mall-web/internal/directory"
)

// Directory toggle flags accepted by POST /stores/toggle/{flag}.
const (
	FlagNew        = "new"
	FlagPromotions = "promotions"
	FlagLoyalty    = "loyalty"
)

// Badge is a small label on a store card.
type Badge struct {
	Kind     string
	LabelKey string
}

// StoreCard is one directory result.
type StoreCard struct {
	ID          int
	Name        string
	Initial     string
	LogoURL     string
	Description string
	CategoryKey string
	Floor       int
	Closed      bool
	Badges      []Badge
	Href        string
}

// Option is a selectable filter value.
type Option struct {
	Value    string
	LabelKey string
	Label    string
	Active   bool
}

// Toggle is one boolean filter switch.
type Toggle struct {
	Flag     string
	LabelKey string
	Active   bool
}

// PinView is a store card positioned on the map.
type PinView struct {
	StoreCard
	Left float64
	Top  float64
}

// MapData is the map view for a single floor.
type MapData struct {
	Floor  int
	Tabs   []Option
	Pins   []PinView
	Width  float64
	Height float64
}

// StoresData is the directory view model shared by the page and its fragments.
type StoresData struct {
	PageData
	Search     string
	Categories []Option
	Floors     []Option
	Toggles    []Toggle
	View       string
	IsMap      bool
	Loading    bool
	Results    []StoreCard
	Count      int
	Map        MapData
	// Poll makes the results fragment refresh until the fetch completes.
	Poll bool
}

// BuildStoresData maps a directory snapshot to the view model. mapFloor is
// the requested floor tab (0 when none).
func BuildStoresData(page PageData, snap directory.Snapshot, mapFloor int) StoresData {
	d := StoresData{
		PageData: page,
		Search:   snap.Criteria.SearchTerm,
		View:     string(snap.Preferences.ViewMode),
		IsMap:    snap.Preferences.ViewMode == directory.ViewMap,
		Loading:  snap.Loading,
		Poll:     snap.Loading,
		Count:    len(snap.Filtered),
	}
	if d.Template == "" {
		d.Template = "stores"
	}

	d.Categories = append(d.Categories, Option{LabelKey: "stores.allCategories", Active: snap.Preferences.ActiveCategory == ""})
	seen := false
	for _, c := range snap.Categories {
		active := c == snap.Preferences.ActiveCategory
		seen = seen || active
		d.Categories = append(d.Categories, Option{Value: string(c), LabelKey: c.LabelKey(), Active: active})
	}
	if !seen && snap.Preferences.ActiveCategory != "" {
		// keep a persisted filter visible before the catalog has loaded
		c := snap.Preferences.ActiveCategory
		d.Categories = append(d.Categories, Option{Value: string(c), LabelKey: c.LabelKey(), Active: true})
	}

	d.Floors = append(d.Floors, Option{LabelKey: "stores.allFloors", Active: snap.Preferences.ActiveFloor == 0})
	d.Floors = append(d.Floors, floorOptions(snap.Preferences.ActiveFloor)...)

	d.Toggles = []Toggle{
		{Flag: FlagNew, LabelKey: "stores.showNew", Active: snap.Criteria.ShowOnlyNew},
		{Flag: FlagPromotions, LabelKey: "stores.showPromotions", Active: snap.Criteria.ShowOnlyWithPromotions},
		{Flag: FlagLoyalty, LabelKey: "stores.showLoyalty", Active: snap.Criteria.ShowOnlyWithLoyalty},
	}

	d.Results = make([]StoreCard, 0, len(snap.Filtered))
	for _, st := range snap.Filtered {
		d.Results = append(d.Results, Card(st))
	}
	d.Map = BuildMapData(snap, mapFloor)
	return d
}

// BuildMapData positions the filtered stores of one floor.
func BuildMapData(snap directory.Snapshot, requested int) MapData {
	floor := directory.MapFloor(requested, snap.Preferences)
	c := directory.DefaultCanvas
	m := MapData{Floor: floor, Tabs: floorOptions(floor), Width: c.Width, Height: c.Height}
	for _, pin := range directory.FloorPlan(snap.Filtered, floor, c) {
		m.Pins = append(m.Pins, PinView{StoreCard: Card(pin.Store), Left: pin.Left, Top: pin.Top})
	}
	return m
}

// Card converts a catalog record into its rendered form.
func Card(st directory.Store) StoreCard {
	card := StoreCard{
		ID:          st.ID,
		Name:        st.Name,
		Initial:     st.Initial(),
		LogoURL:     st.LogoURL,
		Description: st.Description,
		CategoryKey: st.Category.LabelKey(),
		Floor:       st.Floor,
		Closed:      st.TemporarilyClosed,
		Href:        "/store/" + strconv.Itoa(st.ID),
	}
	if st.IsNew {
		card.Badges = append(card.Badges, Badge{Kind: "new", LabelKey: "stores.badge.new"})
	}
	if st.HasPromotions {
		card.Badges = append(card.Badges, Badge{Kind: "promotion", LabelKey: "stores.badge.promotion"})
	}
	if st.HasLoyaltyProgram {
		card.Badges = append(card.Badges, Badge{Kind: "loyalty", LabelKey: "stores.badge.loyalty"})
	}
	if st.TemporarilyClosed {
		card.Badges = append(card.Badges, Badge{Kind: "closed", LabelKey: "stores.badge.closed"})
	}
	return card
}

func floorOptions(active int) []Option {
	out := make([]Option, 0, len(directory.Floors))
	for _, f := range directory.Floors {
		out = append(out, Option{
			Value:    strconv.Itoa(f),
			LabelKey: "stores.floor" + strconv.Itoa(f),
			Active:   f == active,
		})
	}
	return out
}

// StoreData is the view model for the store detail placeholder.
type StoreData struct {
	PageData
	Store StoreCard
}
