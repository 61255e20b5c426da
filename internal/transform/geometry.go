// Package transform relates a ground observer to the ISS sub-satellite point
// on a spherical Earth: great-circle distance, initial bearing and the map
// center between the two.
package transform

import "math"

// meanEarthRadiusKm is the IUGG mean radius. Spherical error against WGS-84
// stays under 0.5% which is fine for display.
const meanEarthRadiusKm = 6371.0088

// Point is a geodetic position in degrees.
type Point struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

// Relation describes where the ISS is as seen on the map from the user.
type Relation struct {
	DistanceKm float64 `json:"distance_km" yaml:"distance_km"`
	BearingDeg float64 `json:"bearing_deg" yaml:"bearing_deg"` // 0 = North, clockwise
	Compass    string  `json:"compass" yaml:"compass"`
}

var compassPoints = [16]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

func rad(deg float64) float64 { return deg * math.Pi / 180.0 }
func deg(rad float64) float64 { return rad * 180.0 / math.Pi }

// Haversine returns the great-circle distance between a and b in km.
func Haversine(a, b Point) float64 {
	lat1, lat2 := rad(a.Lat), rad(b.Lat)
	dLat := lat2 - lat1
	dLon := rad(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * meanEarthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

// InitialBearing returns the forward azimuth from a to b in [0, 360).
func InitialBearing(a, b Point) float64 {
	lat1, lat2 := rad(a.Lat), rad(b.Lat)
	dLon := rad(b.Lon - a.Lon)

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)

	brg := math.Mod(deg(math.Atan2(y, x))+360, 360)
	if brg >= 360 {
		brg = 0
	}
	return brg
}

// Compass maps a bearing in degrees to one of 16 compass points.
func Compass(bearingDeg float64) string {
	b := math.Mod(bearingDeg, 360)
	if b < 0 {
		b += 360
	}
	return compassPoints[int(math.Floor(b/22.5+0.5))%16]
}

// MapCenter returns the arithmetic midpoint of user and iss, or user when
// the ISS position is unknown. This is a map framing aid, not a geodesic
// midpoint.
func MapCenter(user Point, iss *Point) Point {
	if iss == nil {
		return user
	}
	return Point{
		Lat: (user.Lat + iss.Lat) / 2,
		Lon: (user.Lon + iss.Lon) / 2,
	}
}

// Relate computes distance and direction from user to iss.
func Relate(user, iss Point) Relation {
	brg := InitialBearing(user, iss)
	return Relation{
		DistanceKm: math.Round(Haversine(user, iss)*10) / 10,
		BearingDeg: math.Round(brg*10) / 10,
		Compass:    Compass(brg),
	}
}
