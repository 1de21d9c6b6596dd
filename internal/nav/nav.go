package nav

import (
	"path"
	"strings"
)

// Item represents a navigation entry. An empty Path renders as a
// non-interactive placeholder.
type Item struct {
	Path     string
	LabelKey string
	Icon     string
}

// RenderedItem is a view model for templates.
type RenderedItem struct {
	Href     string
	LabelKey string
	Icon     string
	Active   bool
	Disabled bool
}

// Crumb represents a breadcrumb entry. If LabelKey is empty, use Label.
type Crumb struct {
	Href     string
	LabelKey string
	Label    string
	Active   bool
}

// Main is the header navigation.
var Main = []Item{
	{Path: "/", LabelKey: "nav.home"},
	{Path: "/stores", LabelKey: "nav.stores"},
}

// Sidebar is the drawer menu.
var Sidebar = []Item{
	{Path: "/stores", LabelKey: "menu.shops", Icon: "bag"},
	{LabelKey: "menu.cafesAndRestaurants", Icon: "cup"},
	{LabelKey: "menu.services", Icon: "wrench"},
	{LabelKey: "menu.entertainment", Icon: "star"},
	{LabelKey: "menu.newsAndPromotions", Icon: "megaphone"},
	{LabelKey: "menu.vacancies", Icon: "briefcase"},
	{Path: "/contacts", LabelKey: "menu.contacts", Icon: "phone"},
}

// Quick is the quick navigation row under the header.
var Quick = []Item{
	{Path: "/stores?view=map", LabelKey: "header.map", Icon: "map"},
	{Path: "/parking", LabelKey: "header.parking", Icon: "car"},
	{Path: "/stores#search", LabelKey: "header.search", Icon: "search"},
}

// Build renders the header items with active state given the current path.
func Build(currentPath string) []RenderedItem {
	return render(Main, currentPath)
}

// BuildSidebar renders the drawer menu.
func BuildSidebar(currentPath string) []RenderedItem {
	return render(Sidebar, currentPath)
}

// BuildQuick renders the quick navigation row.
func BuildQuick(currentPath string) []RenderedItem {
	return render(Quick, currentPath)
}

func render(defs []Item, currentPath string) []RenderedItem {
	if currentPath == "" {
		currentPath = "/"
	}
	items := make([]RenderedItem, 0, len(defs))
	for _, it := range defs {
		items = append(items, RenderedItem{
			Href:     it.Path,
			LabelKey: it.LabelKey,
			Icon:     it.Icon,
			Active:   it.Path != "" && isActive(it.Path, currentPath),
			Disabled: it.Path == "",
		})
	}
	return items
}

func isActive(itemPath, currentPath string) bool {
	if i := strings.IndexAny(itemPath, "?#"); i >= 0 {
		// deep links never mark a section active
		return false
	}
	if itemPath == "/" {
		return currentPath == "/"
	}
	return currentPath == itemPath || strings.HasPrefix(currentPath, itemPath+"/")
}

var sectionLabels = map[string]string{
	"stores":   "nav.stores",
	"store":    "nav.stores",
	"parking":  "header.parking",
	"contacts": "menu.contacts",
}

var sectionHrefs = map[string]string{
	"store": "/stores",
}

// Breadcrumbs builds breadcrumb entries from the current path, starting at
// Home. Known sections use label keys; deeper segments are prettified, and
// a trailing label overrides the last crumb when non-empty.
func Breadcrumbs(currentPath, lastLabel string) []Crumb {
	if currentPath == "" {
		currentPath = "/"
	}
	crumbs := []Crumb{{Href: "/", LabelKey: "nav.home", Active: currentPath == "/"}}
	if currentPath == "/" {
		return crumbs
	}
	clean := path.Clean("/" + strings.TrimPrefix(currentPath, "/"))
	parts := strings.Split(strings.TrimPrefix(clean, "/"), "/")

	href := ""
	for i, part := range parts {
		href += "/" + part
		c := Crumb{Href: href, Label: titleFromSegment(part), Active: i == len(parts)-1}
		if i == 0 {
			c.LabelKey = sectionLabels[part]
			if h, ok := sectionHrefs[part]; ok {
				c.Href = h
			}
		}
		crumbs = append(crumbs, c)
	}
	if lastLabel != "" {
		last := &crumbs[len(crumbs)-1]
		last.Label = lastLabel
		last.LabelKey = ""
	}
	return crumbs
}

func titleFromSegment(seg string) string {
	if seg == "" {
		return seg
	}
	s := strings.ReplaceAll(seg, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")
	r := []rune(s)
	if r[0] >= 'a' && r[0] <= 'z' {
		r[0] -= 'a' - 'A'
	}
	return string(r)
}
