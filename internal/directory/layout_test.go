package directory

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPositionGrid(t *testing.T) {
	t.Parallel()
	c := DefaultCanvas

	for index := 0; index < 7; index++ {
		p := Position(1, index, c)
		row, col := index/3, index%3
		baseX := float64(col+1) * 150
		baseY := float64(row+1) * 100
		require.InDelta(t, baseX+math.Sin(10)*30, p.X, 1e-9)
		require.InDelta(t, baseY+math.Cos(10)*20, p.Y, 1e-9)
	}
}

func TestPositionIsDeterministic(t *testing.T) {
	t.Parallel()
	for id := 1; id <= 12; id++ {
		a := Position(id, id%5, DefaultCanvas)
		b := Position(id, id%5, DefaultCanvas)
		require.Equal(t, a, b)
		// offsets stay within the documented amplitude
		base := Position(0, id%5, DefaultCanvas)
		require.LessOrEqual(t, math.Abs(a.X-base.X), 30.0)
		require.LessOrEqual(t, math.Abs(a.Y-(base.Y-20)), 20.0)
	}
}

func TestFloorPlanSelectsFloorInOrder(t *testing.T) {
	t.Parallel()
	pins := FloorPlan(DemoCatalog(), 2, DefaultCanvas)

	var ids []int
	for i, pin := range pins {
		require.Equal(t, 2, pin.Store.Floor)
		require.Equal(t, Position(pin.Store.ID, i, DefaultCanvas), pin.Point)
		require.InDelta(t, pin.Point.X/6, pin.Left, 0.01)
		require.InDelta(t, pin.Point.Y/4, pin.Top, 0.01)
		ids = append(ids, pin.Store.ID)
	}
	require.Equal(t, []int{2, 5, 6, 9, 12}, ids)
	require.Empty(t, FloorPlan(DemoCatalog(), 4, DefaultCanvas))
}

func TestMapFloor(t *testing.T) {
	t.Parallel()
	require.Equal(t, 1, MapFloor(0, DefaultPreferences()))
	require.Equal(t, 3, MapFloor(3, DefaultPreferences()))
	require.Equal(t, 2, MapFloor(0, Preferences{ActiveFloor: 2}))
	require.Equal(t, 3, MapFloor(3, Preferences{ActiveFloor: 2}))
	require.Equal(t, 1, MapFloor(9, Preferences{ActiveFloor: 7}))
}
