package main

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"finitefield.org/mall-web/internal/directory"
	"finitefield.org/mall-web/internal/handlers"
	mw "finitefield.org/mall-web/internal/middleware"
	"finitefield.org/mall-web/internal/observability"
	"finitefield.org/mall-web/internal/seo"
)

const maxSearchLen = 100

// visitorState returns the directory state owned by the request session.
func (a *app) visitorState(w http.ResponseWriter, r *http.Request) (*directory.State, bool) {
	st, err := a.registry.Get(r.Context(), mw.GetSession(r).ID)
	if err != nil {
		observability.FromContext(r.Context()).Error("directory state", zap.Error(err))
		mw.WriteError(w, r, http.StatusServiceUnavailable, a.bundle.T(mw.Lang(r), "errors.generic"))
		return nil, false
	}
	return st, true
}

func (a *app) storesData(r *http.Request, st *directory.State) handlers.StoresData {
	l := a.layout(r, "")
	snap := st.Snapshot()
	mapFloor, _ := strconv.Atoi(r.URL.Query().Get("floor"))
	vm := handlers.BuildStoresData(handlers.PageData{Layout: l, Title: a.bundle.T(l.Lang, "stores.title")}, snap, mapFloor)
	vm.SEO.Title = a.title(l.Lang, "stores.title")
	vm.SEO.Description = a.bundle.T(l.Lang, "stores.description")
	if !snap.Loading {
		entries := make([]seo.ListEntry, 0, len(vm.Results))
		for _, c := range vm.Results {
			entries = append(entries, seo.ListEntry{Name: c.Name, URL: a.cfg.Server.BaseURL + c.Href})
		}
		vm.SEO.JSONLD = append(vm.SEO.JSONLD, seo.JSON(seo.ItemList(vm.Title, entries)))
	}
	return vm
}

// storesHandler renders the directory page. ?view= and ?q= deep links are
// applied before rendering.
func (a *app) storesHandler(w http.ResponseWriter, r *http.Request) {
	st, ok := a.visitorState(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	if v := q.Get("view"); v != "" {
		st.SetViewMode(directory.ParseViewMode(v))
	}
	if q.Has("q") {
		st.SetSearchTerm(clampSearch(q.Get("q")))
	}
	a.views.page(w, r, http.StatusOK, a.storesData(r, st))
}

// storesResultsHandler returns the directory panel; htmx polls it while
// loading so the filters pick up the fetched categories too.
func (a *app) storesResultsHandler(w http.ResponseWriter, r *http.Request) {
	st, ok := a.visitorState(w, r)
	if !ok {
		return
	}
	a.views.render(w, r, http.StatusOK, "stores_panel", a.storesData(r, st))
}

// storesMapHandler returns the map fragment for a floor tab.
func (a *app) storesMapHandler(w http.ResponseWriter, r *http.Request) {
	st, ok := a.visitorState(w, r)
	if !ok {
		return
	}
	a.views.render(w, r, http.StatusOK, "stores_map", a.storesData(r, st))
}

func (a *app) storesSearchHandler(w http.ResponseWriter, r *http.Request) {
	a.mutate(w, r, func(st *directory.State) bool {
		st.SetSearchTerm(clampSearch(r.PostFormValue("q")))
		return true
	})
}

func (a *app) storesCategoryHandler(w http.ResponseWriter, r *http.Request) {
	a.mutate(w, r, func(st *directory.State) bool {
		st.SetActiveCategory(directory.Category(strings.TrimSpace(r.PostFormValue("category"))))
		return true
	})
}

func (a *app) storesFloorHandler(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.PostFormValue("floor"))
	floor := 0
	if raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			mw.WriteError(w, r, http.StatusBadRequest, "invalid floor")
			return
		}
		floor = n
	}
	a.mutate(w, r, func(st *directory.State) bool {
		st.SetActiveFloor(floor)
		return true
	})
}

func (a *app) storesViewHandler(w http.ResponseWriter, r *http.Request) {
	a.mutate(w, r, func(st *directory.State) bool {
		st.SetViewMode(directory.ParseViewMode(r.PostFormValue("view")))
		return true
	})
}

func (a *app) storesToggleHandler(w http.ResponseWriter, r *http.Request) {
	flag := chi.URLParam(r, "flag")
	a.mutate(w, r, func(st *directory.State) bool {
		switch flag {
		case handlers.FlagNew:
			st.ToggleShowOnlyNew()
		case handlers.FlagPromotions:
			st.ToggleShowOnlyWithPromotions()
		case handlers.FlagLoyalty:
			st.ToggleShowOnlyWithLoyalty()
		default:
			return false
		}
		return true
	})
}

// mutate applies fn to the visitor state. htmx requests get the refreshed
// directory panel; plain form posts are redirected back to /stores.
func (a *app) mutate(w http.ResponseWriter, r *http.Request, fn func(*directory.State) bool) {
	st, ok := a.visitorState(w, r)
	if !ok {
		return
	}
	if !fn(st) {
		a.notFoundHandler(w, r)
		return
	}
	if !mw.IsHTMX(r.Context()) {
		http.Redirect(w, r, "/stores", http.StatusSeeOther)
		return
	}
	a.views.render(w, r, http.StatusOK, "stores_panel", a.storesData(r, st))
}

func clampSearch(s string) string {
	s = strings.TrimSpace(s)
	if r := []rune(s); len(r) > maxSearchLen {
		s = string(r[:maxSearchLen])
	}
	return s
}
