package weather

import (
	"encoding/json"
	"fmt"
)

// The providers drift: fields appear, disappear, or change type between
// payloads. Decoding therefore happens field-by-field from raw JSON objects,
// so a malformed or missing optional field never aborts its siblings. Only
// the top-level envelope shape and the identity key of each record are
// decoded strictly.

type rawObject map[string]json.RawMessage

// optional decodes one field of obj. Absent fields, JSON null, and values of
// the wrong type all yield nil, never a zero default.
func optional[T any](obj rawObject, key string) *T {
	raw, ok := obj[key]
	if !ok || string(raw) == "null" {
		return nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return &v
}

// identity decodes a required string key of obj.
func identity(obj rawObject, key string) (string, error) {
	s := optional[string](obj, key)
	if s == nil {
		return "", fmt.Errorf("missing %q key", key)
	}
	return *s, nil
}

// envelope extracts the named top-level array. A missing or non-array value
// is a hard shape mismatch.
func envelope(payload []byte, key, shape string) ([]rawObject, error) {
	var top rawObject
	if err := json.Unmarshal(payload, &top); err != nil {
		return nil, &DecodeError{Shape: shape, Cause: err}
	}
	raw, ok := top[key]
	if !ok || string(raw) == "null" {
		return nil, &DecodeError{Shape: shape, Cause: fmt.Errorf("missing %q array", key)}
	}
	var items []rawObject
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &DecodeError{Shape: shape, Cause: fmt.Errorf("%q is not an array of objects: %w", key, err)}
	}
	return items, nil
}

// DecodeDailyHistory maps a daily-history payload onto DailyRecords.
func DecodeDailyHistory(payload []byte) ([]DailyRecord, error) {
	const shape = "daily history"

	items, err := envelope(payload, "data", shape)
	if err != nil {
		return nil, err
	}

	records := make([]DailyRecord, 0, len(items))
	for i, obj := range items {
		date, err := identity(obj, "date")
		if err != nil {
			return nil, &DecodeError{Shape: shape, Cause: fmt.Errorf("record %d: %w", i, err)}
		}
		records = append(records, DailyRecord{
			Date:      date,
			TempAvg:   optional[float64](obj, "tavg"),
			TempMin:   optional[float64](obj, "tmin"),
			TempMax:   optional[float64](obj, "tmax"),
			Precip:    optional[float64](obj, "prcp"),
			Snow:      optional[float64](obj, "snow"),
			WindSpeed: optional[float64](obj, "wspd"),
			Pressure:  optional[float64](obj, "pres"),
			Sunshine:  optional[float64](obj, "tsun"),
		})
	}
	return records, nil
}

// DecodeCurrentObservations maps a current-conditions payload onto
// Observations. An empty observations array decodes successfully; the caller
// decides whether that is an empty result.
func DecodeCurrentObservations(payload []byte) ([]Observation, error) {
	const shape = "current observations"

	items, err := envelope(payload, "observations", shape)
	if err != nil {
		return nil, err
	}

	observations := make([]Observation, 0, len(items))
	for i, obj := range items {
		ts, err := identity(obj, "obsTimeUtc")
		if err != nil {
			return nil, &DecodeError{Shape: shape, Cause: fmt.Errorf("observation %d: %w", i, err)}
		}
		observations = append(observations, Observation{
			StationID:         optional[string](obj, "stationID"),
			ObsTimeUTC:        ts,
			ObsTimeLocal:      optional[string](obj, "obsTimeLocal"),
			Neighborhood:      optional[string](obj, "neighborhood"),
			SoftwareType:      optional[string](obj, "softwareType"),
			Country:           optional[string](obj, "country"),
			Epoch:             optional[int64](obj, "epoch"),
			Lat:               optional[float64](obj, "lat"),
			Lon:               optional[float64](obj, "lon"),
			SolarRadiation:    optional[float64](obj, "solarRadiation"),
			UV:                optional[float64](obj, "uv"),
			WindDir:           optional[int](obj, "winddir"),
			Humidity:          optional[int](obj, "humidity"),
			QCStatus:          optional[int](obj, "qcStatus"),
			RealtimeFrequency: optional[int](obj, "realtimeFrequency"),
			Metric:            decodeUnitGroup(obj, "metric"),
			Imperial:          decodeUnitGroup(obj, "imperial"),
		})
	}
	return observations, nil
}

// DecodeHistoricalObservations maps a 24-hour recent-history payload onto
// HistoricalObservations.
func DecodeHistoricalObservations(payload []byte) ([]HistoricalObservation, error) {
	const shape = "historical observations"

	items, err := envelope(payload, "observations", shape)
	if err != nil {
		return nil, err
	}

	observations := make([]HistoricalObservation, 0, len(items))
	for i, obj := range items {
		ts, err := identity(obj, "obsTimeUtc")
		if err != nil {
			return nil, &DecodeError{Shape: shape, Cause: fmt.Errorf("observation %d: %w", i, err)}
		}
		observations = append(observations, HistoricalObservation{
			StationID:          optional[string](obj, "stationID"),
			Timezone:           optional[string](obj, "tz"),
			ObsTimeUTC:         ts,
			ObsTimeLocal:       optional[string](obj, "obsTimeLocal"),
			Epoch:              optional[int64](obj, "epoch"),
			Lat:                optional[float64](obj, "lat"),
			Lon:                optional[float64](obj, "lon"),
			QCStatus:           optional[int](obj, "qcStatus"),
			HumidityAvg:        optional[int](obj, "humidityAvg"),
			HumidityHigh:       optional[int](obj, "humidityHigh"),
			HumidityLow:        optional[int](obj, "humidityLow"),
			SolarRadiationHigh: optional[float64](obj, "solarRadiationHigh"),
			UVHigh:             optional[float64](obj, "uvHigh"),
			WindDirAvg:         optional[int](obj, "winddirAvg"),
			Metric:             decodeAggregateGroup(obj, "metric"),
			Imperial:           decodeAggregateGroup(obj, "imperial"),
		})
	}
	return observations, nil
}

func decodeUnitGroup(parent rawObject, key string) *UnitGroup {
	obj := nestedObject(parent, key)
	if obj == nil {
		return nil
	}
	return &UnitGroup{
		Temp:        optional[float64](obj, "temp"),
		HeatIndex:   optional[float64](obj, "heatIndex"),
		DewPoint:    optional[float64](obj, "dewpt"),
		WindChill:   optional[float64](obj, "windChill"),
		WindSpeed:   optional[float64](obj, "windSpeed"),
		WindGust:    optional[float64](obj, "windGust"),
		Pressure:    optional[float64](obj, "pressure"),
		PrecipRate:  optional[float64](obj, "precipRate"),
		PrecipTotal: optional[float64](obj, "precipTotal"),
		Elevation:   optional[float64](obj, "elev"),
	}
}

func decodeAggregateGroup(parent rawObject, key string) *AggregateUnitGroup {
	obj := nestedObject(parent, key)
	if obj == nil {
		return nil
	}
	return &AggregateUnitGroup{
		TempHigh:      optional[float64](obj, "tempHigh"),
		TempLow:       optional[float64](obj, "tempLow"),
		TempAvg:       optional[float64](obj, "tempAvg"),
		WindSpeedHigh: optional[float64](obj, "windspeedHigh"),
		WindSpeedLow:  optional[float64](obj, "windspeedLow"),
		WindSpeedAvg:  optional[float64](obj, "windspeedAvg"),
		WindGustHigh:  optional[float64](obj, "windgustHigh"),
		WindGustLow:   optional[float64](obj, "windgustLow"),
		WindGustAvg:   optional[float64](obj, "windgustAvg"),
		DewPointHigh:  optional[float64](obj, "dewptHigh"),
		DewPointLow:   optional[float64](obj, "dewptLow"),
		DewPointAvg:   optional[float64](obj, "dewptAvg"),
		WindChillHigh: optional[float64](obj, "windchillHigh"),
		WindChillLow:  optional[float64](obj, "windchillLow"),
		WindChillAvg:  optional[float64](obj, "windchillAvg"),
		HeatIndexHigh: optional[float64](obj, "heatindexHigh"),
		HeatIndexLow:  optional[float64](obj, "heatindexLow"),
		HeatIndexAvg:  optional[float64](obj, "heatindexAvg"),
		PressureMax:   optional[float64](obj, "pressureMax"),
		PressureMin:   optional[float64](obj, "pressureMin"),
		PressureTrend: optional[float64](obj, "pressureTrend"),
		PrecipRate:    optional[float64](obj, "precipRate"),
		PrecipTotal:   optional[float64](obj, "precipTotal"),
	}
}

// nestedObject returns the raw fields of an embedded object, or nil when the
// field is absent, null, or not an object.
func nestedObject(parent rawObject, key string) rawObject {
	raw, ok := parent[key]
	if !ok || string(raw) == "null" {
		return nil
	}
	var obj rawObject
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil
	}
	return obj
}
