package utils

import (
	"math"
	"testing"

	"github.com/attendly/attendance-backend-go/internal/domain/policy"
)

func TestHaversineIdenticalPoints(t *testing.T) {
	d := CalculateHaversineDistance(-6.2, 106.8, -6.2, 106.8)
	if d != 0 {
		t.Errorf("distance between identical points = %v, want 0", d)
	}
}

func TestHaversineSymmetric(t *testing.T) {
	d1 := CalculateHaversineDistance(-6.2, 106.8, 51.5, -0.12)
	d2 := CalculateHaversineDistance(51.5, -0.12, -6.2, 106.8)
	if math.Abs(d1-d2) > 1e-6 {
		t.Errorf("distance not symmetric: %v vs %v", d1, d2)
	}
}

func TestHaversineKnownDistance(t *testing.T) {
	// One degree of latitude is about 111.19 km on a 6371 km sphere.
	d := CalculateHaversineDistance(0, 0, 1, 0)
	if d < 111100 || d > 111300 {
		t.Errorf("one degree latitude = %v m, want ~111195 m", d)
	}
}

func TestWithinAnyOfficeBoundary(t *testing.T) {
	office := policy.OfficeLocation{Name: "HQ", Latitude: 0, Longitude: 0, RadiusMeters: 0}
	// Find a point just inside and just outside the default 500m radius.
	// 0.0045 degrees of latitude is ~500.4m; 0.00449 is ~499.2m.
	cases := []struct {
		name string
		lat  float64
		want bool
	}{
		{"well inside", 0.001, true},
		{"just inside", 0.00449, true},
		{"just outside", 0.00451, false},
		{"far outside", 0.01, false},
	}
	for _, c := range cases {
		got := WithinAnyOffice(c.lat, 0, []policy.OfficeLocation{office})
		if got != c.want {
			d := CalculateHaversineDistance(c.lat, 0, 0, 0)
			t.Errorf("%s (distance %.1fm): WithinAnyOffice = %v, want %v", c.name, d, got, c.want)
		}
	}
}

func TestWithinAnyOfficeExactRadius(t *testing.T) {
	// At exactly the radius the comparison is <=, so the point is inside.
	lat := 0.004
	d := CalculateHaversineDistance(lat, 0, 0, 0)
	office := policy.OfficeLocation{Latitude: 0, Longitude: 0, RadiusMeters: d}
	if !WithinAnyOffice(lat, 0, []policy.OfficeLocation{office}) {
		t.Error("point at exactly radius distance should be within the office")
	}
}

func TestWithinAnyOfficeMultiple(t *testing.T) {
	offices := []policy.OfficeLocation{
		{Name: "far", Latitude: 10, Longitude: 10, RadiusMeters: 100},
		{Name: "near", Latitude: 0, Longitude: 0, RadiusMeters: 1000},
	}
	if !WithinAnyOffice(0.001, 0.001, offices) {
		t.Error("point inside the second office should satisfy the OR across offices")
	}
	if WithinAnyOffice(5, 5, offices) {
		t.Error("point outside every office should not match")
	}
}

func TestWithinAnyOfficeEmptyList(t *testing.T) {
	if WithinAnyOffice(0, 0, nil) {
		t.Error("empty office list must return false; the caller handles fail-open")
	}
}
