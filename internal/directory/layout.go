package directory

import "math"

// Canvas is the drawing area of the floor map, in CSS pixels.
type Canvas struct {
	Width  float64
	Height float64
}

// DefaultCanvas matches the fixed map container size.
var DefaultCanvas = Canvas{Width: 600, Height: 400}

// Point is a position on the canvas.
type Point struct {
	X float64
	Y float64
}

// Pin is a store placed on a floor map.
type Pin struct {
	Store Store
	Point Point
	// Left and Top are Point expressed as percentages of the canvas.
	Left float64
	Top  float64
}

const layoutColumns = 3

// Position places the store at index i of a floor on a 3 column grid, then
// nudges it by an offset derived from the store id so pins look scattered but
// land on the same spot on every render.
func Position(id, index int, c Canvas) Point {
	row := index / layoutColumns
	col := index % layoutColumns
	baseX := float64(col+1) * (c.Width / float64(layoutColumns+1))
	baseY := float64(row+1) * (c.Height / 4)
	return Point{
		X: baseX + math.Sin(float64(id)*10)*30,
		Y: baseY + math.Cos(float64(id)*10)*20,
	}
}

// FloorPlan places the stores located on floor, preserving their order.
func FloorPlan(stores []Store, floor int, c Canvas) []Pin {
	pins := make([]Pin, 0, len(stores))
	index := 0
	for _, st := range stores {
		if st.Floor != floor {
			continue
		}
		p := Position(st.ID, index, c)
		pin := Pin{Store: st, Point: p}
		if c.Width > 0 {
			pin.Left = round2(p.X / c.Width * 100)
		}
		if c.Height > 0 {
			pin.Top = round2(p.Y / c.Height * 100)
		}
		pins = append(pins, pin)
		index++
	}
	return pins
}

// MapFloor picks the floor tab shown by the map view: the requested tab when
// valid, else the active floor filter, else the ground floor.
func MapFloor(requested int, p Preferences) int {
	for _, f := range Floors {
		if requested == f {
			return f
		}
	}
	for _, f := range Floors {
		if p.ActiveFloor == f {
			return f
		}
	}
	return Floors[0]
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
