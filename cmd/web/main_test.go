package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"finitefield.org/mall-web/internal/config"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		Env:      "test",
		LogLevel: "error",
		Server: config.ServerConfig{
			Addr:         ":0",
			TemplatesDir: "../../templates",
			PublicDir:    "../../public",
			ContentDir:   "../../content",
			BaseURL:      "https://mall.example",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
			IdleTimeout:  time.Second,
		},
		Session: config.SessionConfig{
			HashKey:  strings.Repeat("h", 32),
			BlockKey: strings.Repeat("b", 32),
		},
		I18n:      config.I18nConfig{Fallback: "ru", Supported: []string{"ru", "en", "kk"}},
		Directory: config.DirectoryConfig{IdleTTL: time.Minute, SweepInterval: time.Minute},
		Prefs:     config.PrefsConfig{Backend: "memory"},
	}
}

func newTestApp(t *testing.T, cfg config.Config) *app {
	t.Helper()
	a, err := newApp(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

// testClient keeps cookies between requests like a browser would.
type testClient struct {
	t       *testing.T
	h       http.Handler
	lang    string
	cookies map[string]*http.Cookie
}

func newClient(t *testing.T, h http.Handler) *testClient {
	return &testClient{t: t, h: h, lang: "en", cookies: map[string]*http.Cookie{}}
}

func (c *testClient) csrf() string {
	if ck, ok := c.cookies["csrf_token"]; ok {
		return ck.Value
	}
	return ""
}

func (c *testClient) do(method, target string, form url.Values, htmx bool) *httptest.ResponseRecorder {
	c.t.Helper()
	var req *http.Request
	if form != nil {
		if _, ok := form["_csrf"]; !ok && !htmx {
			form.Set("_csrf", c.csrf())
		}
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if c.lang != "" {
		req.Header.Set("Accept-Language", c.lang)
	}
	if htmx {
		req.Header.Set("HX-Request", "true")
		req.Header.Set("X-CSRF-Token", c.csrf())
	}
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)
	for _, ck := range (&http.Response{Header: rec.Header()}).Cookies() {
		if ck.MaxAge < 0 {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck
	}
	return rec
}

func (c *testClient) get(target string) *httptest.ResponseRecorder {
	return c.do(http.MethodGet, target, nil, false)
}

func (c *testClient) hx(method, target string, form url.Values) *httptest.ResponseRecorder {
	if form == nil && method == http.MethodPost {
		form = url.Values{}
	}
	return c.do(method, target, form, true)
}

func parseHTML(t testing.TB, body []byte) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	require.NoError(t, err)
	return doc
}

func cardNames(doc *goquery.Document) []string {
	var names []string
	doc.Find(".store-card .store-name").Each(func(_ int, s *goquery.Selection) {
		names = append(names, strings.TrimSpace(s.Text()))
	})
	return names
}

func TestHealthzOK(t *testing.T) {
	a := newTestApp(t, testConfig(t))
	rec := newClient(t, a.routes()).get("/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", strings.TrimSpace(rec.Body.String()))
}

func TestHomeLocalized(t *testing.T) {
	a := newTestApp(t, testConfig(t))
	c := newClient(t, a.routes())

	rec := c.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	doc := parseHTML(t, rec.Body.Bytes())
	require.Equal(t, "en", doc.Find("html").AttrOr("lang", ""))
	require.Equal(t, "Mega Park", strings.TrimSpace(doc.Find(".hero h1").Text()))
	require.Equal(t, "Stores", strings.TrimSpace(doc.Find(".main-nav a[href='/stores']").Text()))
	require.Equal(t, 3, doc.Find(".highlight").Length())
	require.Equal(t, 7, doc.Find(".drawer-menu li").Length())
	require.Equal(t, 3, doc.Find(".lang-switch a").Length())
	require.Contains(t, doc.Find("script[type='application/ld+json']").Text(), "ShoppingCenter")
	require.Contains(t, rec.Header().Values("Vary"), "Accept-Language")

	c.lang = "ru"
	c.cookies = map[string]*http.Cookie{}
	doc = parseHTML(t, c.get("/").Body.Bytes())
	require.Equal(t, "Магазины", strings.TrimSpace(doc.Find(".main-nav a[href='/stores']").Text()))

	doc = parseHTML(t, c.get("/?hl=kk").Body.Bytes())
	require.Equal(t, "kk", doc.Find("html").AttrOr("lang", ""))
	doc = parseHTML(t, c.get("/").Body.Bytes())
	require.Equal(t, "kk", doc.Find("html").AttrOr("lang", ""))
}

func TestStoresPageRendersCatalog(t *testing.T) {
	a := newTestApp(t, testConfig(t))
	c := newClient(t, a.routes())

	rec := c.get("/stores")
	require.Equal(t, http.StatusOK, rec.Code)
	doc := parseHTML(t, rec.Body.Bytes())
	require.Len(t, cardNames(doc), 12)
	require.Equal(t, "Zara", cardNames(doc)[0])
	// "all" plus six distinct categories of the catalog
	require.Equal(t, 7, doc.Find(".categories .chip").Length())
	require.Equal(t, 4, doc.Find(".floors .chip").Length())
	require.Equal(t, 3, doc.Find(".toggles form").Length())
	require.Equal(t, "New", strings.TrimSpace(doc.Find(".store-card[data-store-id='5'] .badge-new").Text()))
	require.Equal(t, 1, doc.Find(".store-card.is-closed").Length())
	_, polling := doc.Find("#stores-results").Attr("hx-get")
	require.False(t, polling)
	require.Contains(t, doc.Find("script[type='application/ld+json']").Text(), "ItemList")
}

func TestStoresFilterFlowHTMX(t *testing.T) {
	a := newTestApp(t, testConfig(t))
	c := newClient(t, a.routes())
	c.get("/stores")

	rec := c.hx(http.MethodPost, "/stores/search", url.Values{"q": {"a"}})
	require.Equal(t, http.StatusOK, rec.Code)
	doc := parseHTML(t, rec.Body.Bytes())
	require.Equal(t, 1, doc.Find("#stores-panel").Length())
	require.Equal(t, "a", doc.Find("input[name='q']").AttrOr("value", ""))

	c.hx(http.MethodPost, "/stores/category", url.Values{"category": {"sportswear"}})
	rec = c.hx(http.MethodPost, "/stores/floor", url.Values{"floor": {"2"}})
	doc = parseHTML(t, rec.Body.Bytes())
	require.Equal(t, []string{"Adidas"}, cardNames(doc))
	require.Equal(t, "sportswear", doc.Find(".categories .chip.is-active").AttrOr("value", ""))
	require.Equal(t, "2", doc.Find(".floors .chip.is-active").AttrOr("value", ""))

	rec = c.hx(http.MethodPost, "/stores/toggle/loyalty", nil)
	doc = parseHTML(t, rec.Body.Bytes())
	require.Equal(t, []string{"Adidas"}, cardNames(doc))
	require.Equal(t, "true", doc.Find(".toggle[data-flag='loyalty']").AttrOr("aria-checked", ""))

	rec = c.hx(http.MethodPost, "/stores/toggle/new", nil)
	doc = parseHTML(t, rec.Body.Bytes())
	require.Empty(t, cardNames(doc))
	require.Equal(t, 1, doc.Find(".results .empty").Length())

	c.hx(http.MethodPost, "/stores/toggle/new", nil)
	c.hx(http.MethodPost, "/stores/toggle/loyalty", nil)
	c.hx(http.MethodPost, "/stores/category", url.Values{"category": {""}})
	rec = c.hx(http.MethodPost, "/stores/floor", url.Values{"floor": {""}})
	doc = parseHTML(t, rec.Body.Bytes())
	require.Equal(t, []string{"Zara", "Adidas", "Samsung", "Apple Store", "Bershka", "Calvin Klein", "Xiaomi", "Mango"}, cardNames(doc))
}

func TestStoresFormPostRedirects(t *testing.T) {
	a := newTestApp(t, testConfig(t))
	c := newClient(t, a.routes())
	c.get("/stores")

	rec := c.do(http.MethodPost, "/stores/toggle/promotions", url.Values{}, false)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/stores", rec.Header().Get("Location"))

	doc := parseHTML(t, c.get("/stores").Body.Bytes())
	require.Equal(t, []string{"Zara", "Lego"}, cardNames(doc))

	rec = c.do(http.MethodPost, "/stores/search", url.Values{"q": {"x"}, "_csrf": {"forged"}}, false)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = c.do(http.MethodPost, "/stores/floor", url.Values{"floor": {"two"}}, false)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.hx(http.MethodPost, "/stores/toggle/open-now", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOutOfRangeFloorYieldsEmptyResults(t *testing.T) {
	a := newTestApp(t, testConfig(t))
	c := newClient(t, a.routes())
	c.get("/stores")

	rec := c.hx(http.MethodPost, "/stores/floor", url.Values{"floor": {"99"}})
	require.Equal(t, http.StatusOK, rec.Code)
	doc := parseHTML(t, rec.Body.Bytes())
	require.Empty(t, cardNames(doc))
	require.Equal(t, 0, doc.Find(".floors .chip.is-active").Length())
}

func TestMapView(t *testing.T) {
	a := newTestApp(t, testConfig(t))
	c := newClient(t, a.routes())
	c.get("/stores")

	rec := c.hx(http.MethodPost, "/stores/view", url.Values{"view": {"map"}})
	doc := parseHTML(t, rec.Body.Bytes())
	require.Equal(t, "map", doc.Find("#stores-results").AttrOr("data-view", ""))
	require.Equal(t, "1", doc.Find(".map-canvas").AttrOr("data-floor", ""))
	require.Equal(t, 4, doc.Find(".pin").Length())
	style := doc.Find(".pin").First().AttrOr("style", "")
	require.Contains(t, style, "left:")
	require.Contains(t, style, "%")

	rec = c.hx(http.MethodGet, "/stores/map?floor=3", nil)
	doc = parseHTML(t, rec.Body.Bytes())
	require.Equal(t, "3", doc.Find(".map-canvas").AttrOr("data-floor", ""))
	require.Equal(t, 3, doc.Find(".pin").Length())
	require.Equal(t, 1, doc.Find(".pin.is-closed").Length())
	require.Equal(t, "/stores/map?floor=3", doc.Find(".tab.is-active").AttrOr("hx-get", ""))

	c.hx(http.MethodPost, "/stores/floor", url.Values{"floor": {"2"}})
	rec = c.hx(http.MethodGet, "/stores/map", nil)
	doc = parseHTML(t, rec.Body.Bytes())
	require.Equal(t, "2", doc.Find(".map-canvas").AttrOr("data-floor", ""))

	c.hx(http.MethodPost, "/stores/view", url.Values{"view": {"grid"}})
	doc = parseHTML(t, c.get("/stores").Body.Bytes())
	require.Equal(t, "list", doc.Find("#stores-results").AttrOr("data-view", ""))

	doc = parseHTML(t, c.get("/stores?view=map").Body.Bytes())
	require.Equal(t, "map", doc.Find("#stores-results").AttrOr("data-view", ""))
}

func TestPreferencesSurviveRestart(t *testing.T) {
	cfg := testConfig(t)
	cfg.Prefs = config.PrefsConfig{Backend: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "prefs.db")}

	first := newTestApp(t, cfg)
	c := newClient(t, first.routes())
	c.get("/stores")
	c.hx(http.MethodPost, "/stores/category", url.Values{"category": {"sportswear"}})
	c.hx(http.MethodPost, "/stores/view", url.Values{"view": {"map"}})
	c.hx(http.MethodPost, "/stores/view", url.Values{"view": {"list"}})
	c.hx(http.MethodPost, "/stores/search", url.Values{"q": {"nike"}})
	c.hx(http.MethodPost, "/stores/toggle/new", nil)
	first.Close()

	second := newTestApp(t, cfg)
	c.h = second.routes()
	doc := parseHTML(t, c.get("/stores").Body.Bytes())
	require.Equal(t, "sportswear", doc.Find(".categories .chip.is-active").AttrOr("value", ""))
	require.Equal(t, "", doc.Find("input[name='q']").AttrOr("value", ""))
	require.Equal(t, "false", doc.Find(".toggle[data-flag='new']").AttrOr("aria-checked", ""))
	require.Equal(t, []string{"Adidas", "Nike"}, cardNames(doc))

	// another visitor starts from defaults
	other := newClient(t, second.routes())
	doc = parseHTML(t, other.get("/stores").Body.Bytes())
	require.Len(t, cardNames(doc), 12)
}

func TestStoresPollWhileLoading(t *testing.T) {
	cfg := testConfig(t)
	cfg.Directory.FetchDelay = 30 * time.Millisecond
	a := newTestApp(t, cfg)
	c := newClient(t, a.routes())

	doc := parseHTML(t, c.get("/stores").Body.Bytes())
	require.Equal(t, 1, doc.Find(".results .loading").Length())
	require.Equal(t, "/stores/results", doc.Find("#stores-results").AttrOr("hx-get", ""))
	require.Empty(t, cardNames(doc))

	require.Eventually(t, func() bool {
		doc := parseHTML(t, c.hx(http.MethodGet, "/stores/results", nil).Body.Bytes())
		return len(cardNames(doc)) == 12 && doc.Find(".categories .chip").Length() == 7
	}, 2*time.Second, 10*time.Millisecond)
}

func TestStoreDetail(t *testing.T) {
	a := newTestApp(t, testConfig(t))
	c := newClient(t, a.routes())

	rec := c.get("/store/5")
	require.Equal(t, http.StatusOK, rec.Code)
	doc := parseHTML(t, rec.Body.Bytes())
	require.Equal(t, "Apple Store", strings.TrimSpace(doc.Find(".store-detail h1").Text()))
	require.Equal(t, 1, doc.Find(".store-detail .badge-new").Length())
	require.Equal(t, "Apple Store", strings.TrimSpace(doc.Find(".breadcrumbs [aria-current='page']").Text()))

	for _, path := range []string{"/store/99", "/store/abc", "/nowhere"} {
		rec := c.get(path)
		require.Equal(t, http.StatusNotFound, rec.Code, path)
		doc := parseHTML(t, rec.Body.Bytes())
		require.Equal(t, "Page not found", strings.TrimSpace(doc.Find(".notfound h1").Text()), path)
	}
}

func TestContentPages(t *testing.T) {
	a := newTestApp(t, testConfig(t))
	c := newClient(t, a.routes())

	rec := c.get("/parking")
	require.Equal(t, http.StatusOK, rec.Code)
	doc := parseHTML(t, rec.Body.Bytes())
	require.Equal(t, "Parking", strings.TrimSpace(doc.Find(".content-page h1").Text()))
	require.Equal(t, "two hours", doc.Find(".content-prose strong").Text())
	require.Equal(t, "March 1, 2025", doc.Find(".updated time").Text())
	require.Equal(t, "2025-03-01", doc.Find(".updated time").AttrOr("datetime", ""))

	c.lang = "kk"
	c.cookies = map[string]*http.Cookie{}
	doc = parseHTML(t, c.get("/contacts").Body.Bytes())
	require.Equal(t, "Контакты", strings.TrimSpace(doc.Find(".content-page h1").Text()))
}

func TestDevModeReloadsContent(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "pages", "en", "parking.md")
	require.NoError(t, os.MkdirAll(filepath.Dir(page), 0o755))
	require.NoError(t, os.WriteFile(page, []byte("---\ntitle: Parking\n---\nOld"), 0o600))

	cfg := testConfig(t)
	cfg.Server.DevMode = true
	cfg.Server.ContentDir = dir
	a := newTestApp(t, cfg)
	c := newClient(t, a.routes())

	doc := parseHTML(t, c.get("/parking").Body.Bytes())
	require.Equal(t, "Parking", strings.TrimSpace(doc.Find(".content-page h1").Text()))

	require.NoError(t, os.WriteFile(page, []byte("---\ntitle: Car park\n---\nNew"), 0o600))
	doc = parseHTML(t, c.get("/parking").Body.Bytes())
	require.Equal(t, "Car park", strings.TrimSpace(doc.Find(".content-page h1").Text()))
	require.Contains(t, doc.Find(".content-prose").Text(), "New")
}

func TestThemeToggle(t *testing.T) {
	a := newTestApp(t, testConfig(t))
	c := newClient(t, a.routes())
	c.get("/")

	rec := c.do(http.MethodPost, "/theme", url.Values{}, false)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "dark", c.cookies["theme"].Value)
	doc := parseHTML(t, c.get("/").Body.Bytes())
	require.Equal(t, "dark", doc.Find("html").AttrOr("data-theme", ""))

	rec = c.hx(http.MethodPost, "/theme", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "true", rec.Header().Get("HX-Refresh"))
	require.Equal(t, "light", c.cookies["theme"].Value)
}

func TestAssetsServed(t *testing.T) {
	a := newTestApp(t, testConfig(t))
	rec := newClient(t, a.routes()).get("/assets/css/app.css")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("ETag"))
	require.Contains(t, rec.Body.String(), "--accent")
}

func TestStoresCommandPersistsPreferences(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("PORT", "")
	t.Setenv("MALLWEB_LOG_LEVEL", "error")
	t.Setenv("MALLWEB_PREFS__BACKEND", "sqlite")
	t.Setenv("MALLWEB_PREFS__SQLITE_PATH", filepath.Join(dir, "cli.db"))

	run := func(args ...string) string {
		var out bytes.Buffer
		root := newRootCmd()
		root.SetOut(&out)
		root.SetArgs(append([]string{"stores"}, args...))
		require.NoError(t, root.Execute())
		return out.String()
	}

	out := run("--category", "sportswear", "--search", "a", "--lang", "en")
	require.Contains(t, out, "category: Sportswear")
	require.Contains(t, out, "Adidas")
	require.NotContains(t, out, "Nike")
	require.Contains(t, out, "1 of 12 stores")

	out = run("--lang", "en")
	require.Contains(t, out, "category: Sportswear")
	require.Contains(t, out, "Nike")
	require.Contains(t, out, "2 of 12 stores")

	out = run("--clear-category", "--floor", "3", "--promotions")
	require.Contains(t, out, "floor: 3")
	require.Contains(t, out, "Lego")
	require.Contains(t, out, "1 of 12 stores")
}
