/*
Copyright 2024 Leadgrid Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineMeters_KnownCityPairs(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64
		tolerance              float64
	}{
		{
			name: "Paris to London",
			lat1: 48.8566, lon1: 2.3522,
			lat2: 51.5074, lon2: -0.1278,
			want:      343556,
			tolerance: 1000,
		},
		{
			name: "New York to Los Angeles",
			lat1: 40.7128, lon1: -74.0060,
			lat2: 34.0522, lon2: -118.2437,
			want:      3935746,
			tolerance: 5000,
		},
		{
			name: "Dehradun to Rishikesh",
			lat1: 30.3165, lon1: 78.0322,
			lat2: 30.0869, lon2: 78.2676,
			want:      34300,
			tolerance: 1000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HaversineMeters(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			assert.InDelta(t, tt.want, got, tt.tolerance)
		})
	}
}

func TestHaversineMeters_ZeroDistance(t *testing.T) {
	assert.Zero(t, HaversineMeters(30.3165, 78.0322, 30.3165, 78.0322))
}

func TestHaversineMeters_Symmetric(t *testing.T) {
	a := HaversineMeters(48.8566, 2.3522, 51.5074, -0.1278)
	b := HaversineMeters(51.5074, -0.1278, 48.8566, 2.3522)
	assert.InDelta(t, a, b, 0.000001)
}

func TestHaversineMeters_OneDegreeLatitude(t *testing.T) {
	// one degree of latitude is ~111.2km on a 6371km sphere
	got := HaversineMeters(0, 0, 1, 0)
	assert.InDelta(t, 111195, got, 10)
}

func TestHaversineMeters_DefaultRadiusBoundary(t *testing.T) {
	// A point one meter inside the default 15km radius stays inside, one
	// meter outside stays outside. Along a meridian the great-circle
	// distance is exactly the arc length, so the boundary is sharp.
	const radius = 15000.0
	degPerMeter := 180 / (math.Pi * EarthRadiusMeters)

	inside := HaversineMeters(0, 0, (radius-1)*degPerMeter, 0)
	onEdge := HaversineMeters(0, 0, radius*degPerMeter, 0)
	outside := HaversineMeters(0, 0, (radius+1)*degPerMeter, 0)

	assert.Less(t, inside, radius)
	assert.InDelta(t, radius, onEdge, 0.01)
	assert.Greater(t, outside, radius)
}
