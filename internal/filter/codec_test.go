package filter

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeNilAndEmpty(t *testing.T) {
	assert.Nil(t, Encode(nil, 1))
	assert.Nil(t, Encode(&Spec{}, 2))
}

func TestEncodeOmitsBestSort(t *testing.T) {
	best := SortBest
	asc := OrderAsc
	p := Encode(&Spec{SortBy: &best, SortOrder: &asc, MaxStops: intp(1)}, 1)
	require.NotNil(t, p)

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.NotContains(t, fields, "sort_by")
	assert.NotContains(t, fields, "sort_order")
	assert.Contains(t, fields, "max_stops")
}

func TestEncodeBestSortOnlyIsZeroPayload(t *testing.T) {
	best := SortBest
	p := Encode(&Spec{SortBy: &best}, 1)
	require.NotNil(t, p)

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}

func TestEncodeExplicitSort(t *testing.T) {
	price := SortPrice
	desc := OrderDesc
	p := Encode(&Spec{SortBy: &price, SortOrder: &desc}, 1)
	require.NotNil(t, p)
	require.NotNil(t, p.SortBy)
	assert.Equal(t, "price", *p.SortBy)
	require.NotNil(t, p.SortOrder)
	assert.Equal(t, "desc", *p.SortOrder)
}

func TestEncodeUnsetFieldsStayOffTheWire(t *testing.T) {
	p := Encode(&Spec{PriceMax: floatp(9000)}, 1)
	require.NotNil(t, p)

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"price_max":9000}`, string(data))
}

func TestEncodeDuplicatesSingleWindowForRoundTrip(t *testing.T) {
	w := TimeWindow{Min: "06:00", Max: "12:00"}
	p := Encode(&Spec{DepartureWindows: []TimeWindow{w}}, 2)
	require.NotNil(t, p)
	require.Len(t, p.DepartureTimes, 2)
	assert.Equal(t, w, p.DepartureTimes[0])
	assert.Equal(t, w, p.DepartureTimes[1])
}

func TestEncodeKeepsPerLegWindows(t *testing.T) {
	out := TimeWindow{Min: "06:00", Max: "12:00"}
	ret := TimeWindow{Min: "18:00", Max: "23:00"}
	p := Encode(&Spec{ArrivalWindows: []TimeWindow{out, ret}}, 2)
	require.NotNil(t, p)
	require.Len(t, p.ArrivalTimes, 2)
	assert.Equal(t, ret, p.ArrivalTimes[1])
}

func TestEncodeSingleWindowOneWay(t *testing.T) {
	w := TimeWindow{Min: "06:00", Max: "12:00"}
	p := Encode(&Spec{DepartureWindows: []TimeWindow{w}}, 1)
	require.NotNil(t, p)
	assert.Len(t, p.DepartureTimes, 1)
}

func TestEncodeAirlineSets(t *testing.T) {
	p := Encode(&Spec{
		Airlines:        []string{"AI", "6E"},
		ExcludeAgencies: []string{"EMT"},
	}, 1)
	require.NotNil(t, p)
	assert.Equal(t, []string{"AI", "6E"}, p.Airlines)
	assert.Equal(t, []string{"EMT"}, p.ExcludeAgencies)
	assert.Empty(t, p.ExcludeAirlines)
}

func intp(v int) *int { return &v }

func floatp(v float64) *float64 { return &v }
