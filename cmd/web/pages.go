package main

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"finitefield.org/mall-web/internal/content"
	"finitefield.org/mall-web/internal/directory"
	"finitefield.org/mall-web/internal/handlers"
	mw "finitefield.org/mall-web/internal/middleware"
	"finitefield.org/mall-web/internal/observability"
	"finitefield.org/mall-web/internal/seo"
)

func (a *app) layout(r *http.Request, crumbLabel string) handlers.Layout {
	lang := mw.Lang(r)
	l := handlers.BuildLayout(handlers.LayoutInput{
		Lang:       lang,
		Supported:  a.bundle.Supported(),
		Theme:      mw.ThemeFrom(r.Context()),
		CSRFToken:  mw.CSRFToken(r),
		Path:       r.URL.Path,
		RawQuery:   r.URL.RawQuery,
		BaseURL:    a.cfg.Server.BaseURL,
		Analytics:  a.analytics,
		CrumbLabel: crumbLabel,
	})
	brand := a.bundle.T(lang, "brand.name")
	l.SEO.OG.SiteName = brand
	l.SEO.JSONLD = append(l.SEO.JSONLD, seo.JSON(seo.ShoppingCenter(seo.Place{
		Name:         brand,
		URL:          a.cfg.Server.BaseURL,
		Street:       a.bundle.T(lang, "footer.address"),
		Telephone:    a.bundle.T(lang, "footer.phone"),
		OpeningHours: "Mo-Su 10:00-22:00",
	})))
	return l
}

func (a *app) title(lang, key string) string {
	return a.bundle.T(lang, key) + " | " + a.bundle.T(lang, "brand.name")
}

// homeHandler renders the landing page.
func (a *app) homeHandler(w http.ResponseWriter, r *http.Request) {
	l := a.layout(r, "")
	lang := l.Lang
	var hero *content.Page
	if p, err := a.pages().Page(r.Context(), "pages", "home", lang); err == nil {
		hero = &p
	} else if !errors.Is(err, content.ErrNotFound) {
		observability.FromContext(r.Context()).Warn("home content", zap.Error(err))
	}
	highlights, err := a.pages().List(r.Context(), "highlights", lang)
	if err != nil && !errors.Is(err, content.ErrNotFound) {
		observability.FromContext(r.Context()).Warn("home highlights", zap.Error(err))
	}
	vm := handlers.BuildHomeData(l, hero, highlights)
	vm.SEO.Title = a.bundle.T(lang, "brand.name") + " | " + a.bundle.T(lang, "brand.tagline")
	if vm.SEO.Description == "" {
		vm.SEO.Description = a.bundle.T(lang, "home.description")
	}
	if a.cfg.Server.BaseURL != "" {
		vm.SEO.JSONLD = append(vm.SEO.JSONLD, seo.JSON(seo.WebSite(a.bundle.T(lang, "brand.name"), a.cfg.Server.BaseURL, a.cfg.Server.BaseURL+"/stores?q=")))
	}
	a.views.page(w, r, http.StatusOK, vm)
}

// pages returns the content source. Dev mode drops the cache first so edited
// markdown shows up on the next request.
func (a *app) pages() *content.Source {
	if a.cfg.Server.DevMode {
		a.content.Purge()
	}
	return a.content
}

// contentPageHandler serves a markdown page from the content tree.
func (a *app) contentPageHandler(slug string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := a.layout(r, "")
		page, err := a.pages().Page(r.Context(), "pages", slug, l.Lang)
		if errors.Is(err, content.ErrNotFound) {
			a.notFoundHandler(w, r)
			return
		}
		if err != nil {
			observability.FromContext(r.Context()).Error("content page", zap.String("slug", slug), zap.Error(err))
			mw.WriteError(w, r, http.StatusInternalServerError, a.bundle.T(l.Lang, "errors.generic"))
			return
		}
		vm := handlers.PageData{Layout: l, Template: "content", Title: page.Title, Content: &page}
		vm.SEO.Title = page.Title + " | " + a.bundle.T(l.Lang, "brand.name")
		vm.SEO.Description = page.Summary
		if page.SEO.Title != "" {
			vm.SEO.Title = page.SEO.Title
		}
		if page.SEO.Description != "" {
			vm.SEO.Description = page.SEO.Description
		}
		a.views.page(w, r, http.StatusOK, vm)
	}
}

// storeDetailHandler renders the store placeholder page.
func (a *app) storeDetailHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		a.notFoundHandler(w, r)
		return
	}
	st, ok := directory.FindByID(a.catalog, id)
	if !ok {
		a.notFoundHandler(w, r)
		return
	}
	l := a.layout(r, st.Name)
	vm := handlers.StoreData{
		PageData: handlers.PageData{Layout: l, Template: "store", Title: st.Name},
		Store:    handlers.Card(st),
	}
	vm.SEO.Title = st.Name + " | " + a.bundle.T(l.Lang, "brand.name")
	vm.SEO.Description = st.Description
	vm.SEO.JSONLD = append(vm.SEO.JSONLD, seo.JSON(seo.Store(st.Name, st.Description, vm.SEO.Canonical, st.LogoURL, a.bundle.T(l.Lang, "brand.name"))))
	a.views.page(w, r, http.StatusOK, vm)
}

// themeHandler flips dark mode. htmx clients refresh, browsers go back.
func (a *app) themeHandler(w http.ResponseWriter, r *http.Request) {
	mw.ToggleTheme(w, r)
	if mw.IsHTMX(r.Context()) {
		w.Header().Set("HX-Refresh", "true")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, sameOriginReferer(r, "/"), http.StatusSeeOther)
}

func (a *app) notFoundHandler(w http.ResponseWriter, r *http.Request) {
	l := a.layout(r, "")
	vm := handlers.PageData{Layout: l, Template: "notfound", Status: http.StatusNotFound}
	vm.Title = a.bundle.T(l.Lang, "notfound.title")
	vm.SEO.Title = a.title(l.Lang, "notfound.title")
	vm.SEO.Robots = "noindex"
	a.views.page(w, r, http.StatusNotFound, vm)
}

// sameOriginReferer returns the referer path when it points back at this host.
func sameOriginReferer(r *http.Request, fallback string) string {
	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Path == "" || (ref.Host != "" && ref.Host != r.Host) {
		return fallback
	}
	if ref.RawQuery != "" {
		return ref.Path + "?" + ref.RawQuery
	}
	return ref.Path
}
