package handlers

import "finitefield.org/mall-web/internal/content"

// HomeData is the view model for the landing page.
type HomeData struct {
	PageData
	Hero       *content.Page
	Highlights []content.Page
}

// BuildHomeData constructs the landing view model. Missing content leaves
// the hero empty so the template falls back to translated copy.
func BuildHomeData(layout Layout, hero *content.Page, highlights []content.Page) HomeData {
	d := HomeData{
		PageData: PageData{
			Layout:   layout,
			Template: "home",
		},
		Hero:       hero,
		Highlights: highlights,
	}
	if hero != nil {
		d.Title = hero.Title
		d.SEO.Description = firstNonEmpty(hero.SEO.Description, hero.Summary)
	}
	return d
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
