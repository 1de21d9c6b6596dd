package seo

import (
	"encoding/json"
	"html/template"
)

// JSON marshals v to a compact JSON string. It returns an empty string on error.
func JSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// Script marshals v for embedding inside a ld+json script element.
func Script(v any) template.JS {
	return template.JS(JSON(v))
}

// Place describes the mall for the ShoppingCenter schema.
type Place struct {
	Name         string
	URL          string
	Logo         string
	Street       string
	Locality     string
	Country      string
	Telephone    string
	OpeningHours string
}

// ShoppingCenter returns a schema.org ShoppingCenter payload.
func ShoppingCenter(p Place) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "ShoppingCenter",
		"name":     p.Name,
	}
	if p.URL != "" {
		m["url"] = p.URL
	}
	if p.Logo != "" {
		m["logo"] = p.Logo
	}
	if p.Telephone != "" {
		m["telephone"] = p.Telephone
	}
	if p.OpeningHours != "" {
		m["openingHours"] = p.OpeningHours
	}
	if p.Street != "" || p.Locality != "" {
		m["address"] = map[string]any{
			"@type":           "PostalAddress",
			"streetAddress":   p.Street,
			"addressLocality": p.Locality,
			"addressCountry":  p.Country,
		}
	}
	return m
}

// WebSite returns a minimal WebSite schema with optional SearchAction.
func WebSite(name, url, searchActionURL string) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     name,
	}
	if url != "" {
		m["url"] = url
	}
	if searchActionURL != "" {
		m["potentialAction"] = map[string]any{
			"@type":       "SearchAction",
			"target":      searchActionURL + "{search_term_string}",
			"query-input": "required name=search_term_string",
		}
	}
	return m
}

// BreadcrumbItem maps name and absolute item URL.
type BreadcrumbItem struct {
	Name string
	Item string
}

// BreadcrumbList builds schema.org BreadcrumbList.
func BreadcrumbList(items []BreadcrumbItem) map[string]any {
	el := make([]map[string]any, 0, len(items))
	for i, it := range items {
		el = append(el, map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     it.Name,
			"item":     it.Item,
		})
	}
	return map[string]any{
		"@context":        "https://schema.org",
		"@type":           "BreadcrumbList",
		"itemListElement": el,
	}
}

// ListEntry is one store in an ItemList.
type ListEntry struct {
	Name string
	URL  string
}

// ItemList lists directory results in display order.
func ItemList(name string, entries []ListEntry) map[string]any {
	el := make([]map[string]any, 0, len(entries))
	for i, e := range entries {
		item := map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     e.Name,
		}
		if e.URL != "" {
			item["url"] = e.URL
		}
		el = append(el, item)
	}
	return map[string]any{
		"@context":        "https://schema.org",
		"@type":           "ItemList",
		"name":            name,
		"numberOfItems":   len(entries),
		"itemListElement": el,
	}
}

// Store returns a schema.org Store payload located inside the mall.
func Store(name, description, url, logo, mall string) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "Store",
		"name":     name,
	}
	if description != "" {
		m["description"] = description
	}
	if url != "" {
		m["url"] = url
	}
	if logo != "" {
		m["logo"] = logo
	}
	if mall != "" {
		m["containedInPlace"] = map[string]any{"@type": "ShoppingCenter", "name": mall}
	}
	return m
}
