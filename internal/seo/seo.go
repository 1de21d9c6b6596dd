package seo

type OpenGraph struct {
	Title       string
	Description string
	Image       string
	Type        string
	URL         string
	Locale      string
}

type Meta struct {
	Title       string
	Description string
	Canonical   string
	OG          OpenGraph
	// Alternates maps hreflang to absolute URL.
	Alternates map[string]string
}
