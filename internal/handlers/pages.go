package handlers

import (
	"net/url"

	"finitefield.org/mall-web/internal/content"
	"finitefield.org/mall-web/internal/nav"
)

// LangOption is one entry of the language switcher.
type LangOption struct {
	Code     string
	LabelKey string
	Href     string
	Active   bool
}

// Layout carries the fields every page renders in the shared chrome.
type Layout struct {
	Lang      string
	Languages []LangOption
	Theme     string
	CSRFToken string
	Analytics Analytics
	SEO       SEOData

	Path        string
	Nav         []nav.RenderedItem
	Sidebar     []nav.RenderedItem
	Quick       []nav.RenderedItem
	Breadcrumbs []nav.Crumb
}

// PageData is a generic view model for simple pages using the shared layout.
type PageData struct {
	Layout
	// Template names the content block rendered inside the base layout.
	Template string
	Title    string
	Content  *content.Page
	Status   int
}

// SEOData is a flattened copy of the page metadata the layout renders.
type SEOData struct {
	Title       string
	Description string
	Canonical   string
	Robots      string
	OG          OpenGraph
	Alternates  []Alternate
	JSONLD      []string
}

// OpenGraph fields for social previews.
type OpenGraph struct {
	Title       string
	Description string
	Image       string
	Type        string
	URL         string
	SiteName    string
	Locale      string
}

// Alternate is a hreflang link.
type Alternate struct {
	Href     string
	Hreflang string
}

// LayoutInput collects the per-request values needed to build a Layout.
type LayoutInput struct {
	Lang       string
	Supported  []string
	Theme      string
	CSRFToken  string
	Path       string
	RawQuery   string
	BaseURL    string
	Analytics  Analytics
	CrumbLabel string
}

// BuildLayout assembles the shared chrome for a request.
func BuildLayout(in LayoutInput) Layout {
	l := Layout{
		Lang:        in.Lang,
		Theme:       in.Theme,
		CSRFToken:   in.CSRFToken,
		Analytics:   in.Analytics,
		Path:        in.Path,
		Nav:         nav.Build(in.Path),
		Sidebar:     nav.BuildSidebar(in.Path),
		Quick:       nav.BuildQuick(in.Path),
		Breadcrumbs: nav.Breadcrumbs(in.Path, in.CrumbLabel),
	}
	for _, code := range in.Supported {
		href := langHref(in.Path, in.RawQuery, code)
		l.Languages = append(l.Languages, LangOption{
			Code:     code,
			LabelKey: "lang." + code,
			Href:     href,
			Active:   code == in.Lang,
		})
		if in.BaseURL != "" {
			l.SEO.Alternates = append(l.SEO.Alternates, Alternate{Href: in.BaseURL + href, Hreflang: code})
		}
	}
	if in.BaseURL != "" {
		l.SEO.Canonical = in.BaseURL + in.Path
		l.SEO.OG.URL = l.SEO.Canonical
	}
	l.SEO.OG.Type = "website"
	l.SEO.OG.Locale = in.Lang
	return l
}

func langHref(path, rawQuery, code string) string {
	q, err := url.ParseQuery(rawQuery)
	if err != nil {
		q = url.Values{}
	}
	q.Set("hl", code)
	if path == "" {
		path = "/"
	}
	return path + "?" + q.Encode()
}
