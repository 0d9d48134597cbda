// Package geo считает расстояния между точками доставки.
package geo

import (
	"math"
	"order_lifecycle/internal/model"
)

// EarthRadiusKm - радиус Земли для формулы гаверсинусов.
const EarthRadiusKm = 6371.0

// Distance возвращает расстояние по дуге большого круга в километрах.
func Distance(a, b model.Address) float64 {
	lat1 := radians(a.Latitude)
	lat2 := radians(b.Latitude)
	dLat := lat2 - lat1
	dLon := radians(b.Longitude - a.Longitude)

	h := math.Pow(math.Sin(dLat/2), 2) + math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dLon/2), 2)
	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
