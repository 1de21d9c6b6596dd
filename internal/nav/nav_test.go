package nav

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildMarksActive(t *testing.T) {
	items := Build("/stores")
	require.Len(t, items, 2)
	require.False(t, items[0].Active)
	require.True(t, items[1].Active)

	items = Build("")
	require.True(t, items[0].Active)

	items = Build("/stores/results")
	require.True(t, items[1].Active)

	items = Build("/storesx")
	require.False(t, items[1].Active)
}

func TestSidebarPlaceholders(t *testing.T) {
	items := BuildSidebar("/stores")
	require.Len(t, items, len(Sidebar))
	require.Equal(t, "menu.shops", items[0].LabelKey)
	require.True(t, items[0].Active)
	require.True(t, items[1].Disabled)
	require.False(t, items[1].Active)
}

func TestQuickLinksNeverActive(t *testing.T) {
	for _, it := range BuildQuick("/stores") {
		if it.Href != "/parking" {
			require.False(t, it.Active, it.Href)
		}
	}
	require.True(t, BuildQuick("/parking")[1].Active)
}

func TestBreadcrumbs(t *testing.T) {
	crumbs := Breadcrumbs("/", "")
	require.Len(t, crumbs, 1)
	require.True(t, crumbs[0].Active)

	crumbs = Breadcrumbs("/stores", "")
	require.Len(t, crumbs, 2)
	require.Equal(t, "nav.stores", crumbs[1].LabelKey)
	require.True(t, crumbs[1].Active)

	crumbs = Breadcrumbs("/store/5", "Apple Store")
	require.Len(t, crumbs, 3)
	require.Equal(t, "/stores", crumbs[1].Href)
	require.Equal(t, "Apple Store", crumbs[2].Label)
	require.Empty(t, crumbs[2].LabelKey)
	require.Equal(t, "/store/5", crumbs[2].Href)

	crumbs = Breadcrumbs("/gift-cards/terms_of-use", "")
	require.Equal(t, "Gift cards", crumbs[1].Label)
	require.Equal(t, "Terms of use", crumbs[2].Label)
}
