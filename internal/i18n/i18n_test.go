package i18n

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func TestDefaultLoadsEmbeddedLocales(t *testing.T) {
	b, err := Default("ru", []string{"ru", "en", "kk"})
	require.NoError(t, err)
	require.Equal(t, []string{"ru", "en", "kk"}, b.Supported())
	require.Equal(t, "Stores", b.T("en", "stores.title"))
	require.Equal(t, "Магазины", b.T("ru", "stores.title"))
}

func TestResolveHonorsQValues(t *testing.T) {
	b, err := Default("ru", []string{"ru", "en", "kk"})
	require.NoError(t, err)

	cases := map[string]string{
		"":                   "ru",
		"ru;q=0.8, en;q=0.9": "en",
		"kk-KZ":              "kk",
		"en-US,en;q=0.9":     "en",
		"de":                 "ru",
		"not a header;;":     "ru",
	}
	for header, want := range cases {
		require.Equal(t, want, b.Resolve(header), header)
	}
}

func TestTranslateFallsBack(t *testing.T) {
	fsys := fstest.MapFS{
		"ru.json": {Data: []byte(`{"a":"А","b":"Б"}`)},
		"en.json": {Data: []byte(`{"a":"A"}`)},
	}
	b, err := Load(fsys, "ru", []string{"ru", "en", "kk"})
	require.NoError(t, err)

	require.Equal(t, []string{"ru", "en"}, b.Supported())
	require.Equal(t, "A", b.T("en", "a"))
	require.Equal(t, "Б", b.T("en", "b"))
	require.Equal(t, "missing", b.T("en", "missing"))
	require.Equal(t, "А", b.T("kk", "a"))
	require.True(t, b.Has("en", "b"))
	require.False(t, b.Has("en", "missing"))
	require.Equal(t, "ru", b.Normalize("kk"))
	require.Equal(t, "en", b.Normalize(" EN "))
}

func TestTf(t *testing.T) {
	b, err := Default("ru", nil)
	require.NoError(t, err)
	require.Equal(t, "Floor 2", b.Tf("en", "stores.floorLabel", 2))
}

func TestLoadRequiresFallback(t *testing.T) {
	_, err := Load(fstest.MapFS{"en.json": {Data: []byte(`{}`)}}, "ru", []string{"en"})
	require.Error(t, err)

	_, err = Load(fstest.MapFS{"ru.json": {Data: []byte(`{`)}}, "ru", nil)
	require.Error(t, err)
}
