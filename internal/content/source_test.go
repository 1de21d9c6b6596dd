package content

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/require"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"pages/ru/home.md": {Data: []byte("---\ntitle: Добро пожаловать\nsummary: Кратко\n---\n# Привет\n\nТекст")},
		"pages/en/home.md": {Data: []byte("---\ntitle: Welcome\nupdated_at: 2025-03-01\nseo:\n  description: Mall\n---\n## Hello\n\n<script>alert(1)</script>\n\n[link](https://example.com)")},
		"pages/ru/parking.md": {Data: []byte("Только русский")},
		"highlights/ru/b.md":  {Data: []byte("---\norder: 2\n---\nB")},
		"highlights/ru/a.md":  {Data: []byte("---\norder: 2\n---\nA")},
		"highlights/ru/c.md":  {Data: []byte("---\norder: 1\ntitle: First\nicon: star\n---\nC")},
		"broken/ru/x.md":      {Data: []byte("---\ntitle: [\n---\nbody")},
	}
}

func TestPageRendersAndSanitizes(t *testing.T) {
	src := New(testFS(), Options{Fallback: "ru"})
	page, err := src.Page(context.Background(), "pages", "home", "en")
	require.NoError(t, err)
	require.Equal(t, "Welcome", page.Title)
	require.Equal(t, "en", page.Lang)
	require.Equal(t, "Mall", page.SEO.Description)
	require.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), page.UpdatedAt)
	body := string(page.Body)
	require.Contains(t, body, `<h2 id="hello">Hello</h2>`)
	require.NotContains(t, body, "<script>")
	require.Contains(t, body, `rel="nofollow"`)
}

func TestPageFallsBackToDefaultLanguage(t *testing.T) {
	src := New(testFS(), Options{Fallback: "ru"})
	page, err := src.Page(context.Background(), "pages", "parking", "kk")
	require.NoError(t, err)
	require.Equal(t, "ru", page.Lang)
	require.Equal(t, "Parking", page.Title)
	require.True(t, strings.Contains(string(page.Body), "Только русский"))
}

func TestPageNotFound(t *testing.T) {
	src := New(testFS(), Options{Fallback: "ru"})
	for _, slug := range []string{"missing", "", "../pages/ru/home", "a/b"} {
		_, err := src.Page(context.Background(), "pages", slug, "en")
		require.ErrorIs(t, err, ErrNotFound, slug)
	}
}

func TestPageFrontMatterError(t *testing.T) {
	src := New(testFS(), Options{Fallback: "ru"})
	_, err := src.Page(context.Background(), "broken", "x", "ru")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotFound)
}

func TestListOrdersByOrderThenSlug(t *testing.T) {
	src := New(testFS(), Options{Fallback: "ru"})
	pages, err := src.List(context.Background(), "highlights", "en")
	require.NoError(t, err)
	require.Len(t, pages, 3)
	require.Equal(t, []string{"c", "a", "b"}, []string{pages[0].Slug, pages[1].Slug, pages[2].Slug})
	require.Equal(t, "First", pages[0].Title)
	require.Equal(t, "star", pages[0].Icon)

	_, err = src.List(context.Background(), "nothing", "ru")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCacheExpires(t *testing.T) {
	fsys := testFS()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	src := New(fsys, Options{Fallback: "ru", TTL: time.Minute, Now: func() time.Time { return now }})

	page, err := src.Page(context.Background(), "pages", "home", "ru")
	require.NoError(t, err)
	require.Equal(t, "Добро пожаловать", page.Title)

	fsys["pages/ru/home.md"] = &fstest.MapFile{Data: []byte("---\ntitle: Новое\n---\n")}
	page, err = src.Page(context.Background(), "pages", "home", "ru")
	require.NoError(t, err)
	require.Equal(t, "Добро пожаловать", page.Title)

	now = now.Add(2 * time.Minute)
	page, err = src.Page(context.Background(), "pages", "home", "ru")
	require.NoError(t, err)
	require.Equal(t, "Новое", page.Title)
}

func TestPurgeDropsCachedPages(t *testing.T) {
	fsys := testFS()
	src := New(fsys, Options{Fallback: "ru", TTL: time.Hour})

	list, err := src.List(context.Background(), "highlights", "ru")
	require.NoError(t, err)
	require.Len(t, list, 3)

	fsys["highlights/ru/d.md"] = &fstest.MapFile{Data: []byte("D")}
	list, err = src.List(context.Background(), "highlights", "ru")
	require.NoError(t, err)
	require.Len(t, list, 3)

	src.Purge()
	list, err = src.List(context.Background(), "highlights", "ru")
	require.NoError(t, err)
	require.Len(t, list, 4)
}

func TestCancelledContext(t *testing.T) {
	src := New(testFS(), Options{Fallback: "ru"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := src.Page(ctx, "pages", "home", "ru")
	require.ErrorIs(t, err, context.Canceled)
}
