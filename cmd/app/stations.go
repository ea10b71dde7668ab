package main

import (
	"math"
	"math/rand"

	"github.com/golang/geo/r2"
)

// Генерируем случайные станции с целыми координатами, без повторов
func generateRandStations(n int, width, height int, seed int64) []r2.Point {
	r := rand.New(rand.NewSource(seed))
	n = min(n, width*height)
	seen := make(map[r2.Point]bool, n)
	stations := make([]r2.Point, 0, n)
	for len(stations) < n {
		p := r2.Point{X: float64(r.Intn(width)), Y: float64(r.Intn(height))}
		if seen[p] {
			continue
		}
		seen[p] = true
		stations = append(stations, p)
	}
	return stations
}

func generateFixStations(n int, width, height int) []r2.Point {
	stations := make([]r2.Point, 0, n)

	rows := int(math.Sqrt(float64(n)))
	cols := (n + rows - 1) / rows

	xStep := float64(width) / float64(cols)
	yStep := float64(height) / float64(rows)

	for i := 0; i < rows && len(stations) < n; i++ {
		// строк и столбцов может хватать, например, на 20 станций, а нужно 17
		for j := 0; j < cols && len(stations) < n; j++ {
			x := xStep/2 + float64(j)*xStep
			y := yStep/2 + float64(i)*yStep
			stations = append(stations, r2.Point{X: x, Y: y})
		}
	}

	return stations
}
