// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package geo resolves Dallas place names to coordinates and estimates travel between them.
package geo

import (
	"math"
	"strings"
)

const (
	earthRadiusMiles = 3959
	urbanDrivingMph  = 25
)

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// Neighborhood is a named area with a representative point.
type Neighborhood struct {
	Name  string
	Point Point
}

// Neighborhoods lists the known Dallas areas in match order.
var Neighborhoods = []Neighborhood{
	{Name: "downtown", Point: Point{Lat: 32.7801, Lng: -96.7997}},
	{Name: "uptown", Point: Point{Lat: 32.8012, Lng: -96.7985}},
	{Name: "deep ellum", Point: Point{Lat: 32.7832, Lng: -96.7843}},
	{Name: "bishop arts", Point: Point{Lat: 32.7479, Lng: -96.8265}},
	{Name: "lower greenville", Point: Point{Lat: 32.8183, Lng: -96.7700}},
	{Name: "oak lawn", Point: Point{Lat: 32.8115, Lng: -96.8115}},
	{Name: "design district", Point: Point{Lat: 32.7903, Lng: -96.8236}},
	{Name: "victory park", Point: Point{Lat: 32.7879, Lng: -96.8087}},
	{Name: "knox-henderson", Point: Point{Lat: 32.8205, Lng: -96.7852}},
	{Name: "lakewood", Point: Point{Lat: 32.8231, Lng: -96.7474}},
}

// Downtown is the fallback for places that match no known neighborhood.
var Downtown = Neighborhoods[0].Point

// Lookup returns the first neighborhood whose name occurs in location, case-insensitively.
func Lookup(location string) (Point, bool) {
	normalized := strings.ToLower(strings.TrimSpace(location))
	for _, n := range Neighborhoods {
		if strings.Contains(normalized, n.Name) {
			return n.Point, true
		}
	}

	return Point{}, false
}

// Resolve is Lookup falling back to Downtown.
func Resolve(location string) Point {
	if point, ok := Lookup(location); ok {
		return point
	}

	return Downtown
}

// Distance is the great-circle distance between a and b in miles.
func Distance(a, b Point) float64 {
	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(a.Lat))*math.Cos(toRadians(b.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)

	return earthRadiusMiles * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// DrivingMinutes estimates urban driving time for a distance in miles, rounded to whole minutes.
func DrivingMinutes(miles float64) int {
	return int(math.Round(miles / urbanDrivingMph * 60))
}

// RoundTo rounds v to the given number of decimal places.
func RoundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
