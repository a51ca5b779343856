package weather

import (
	"time"
)

// Units selects which measurement group is requested from the PWS provider.
type Units string

const (
	UnitsMetric   Units = "metric"
	UnitsImperial Units = "imperial"
)

// QueryCode returns the provider's one-letter units flag.
func (u Units) QueryCode() string {
	if u == UnitsImperial {
		return "e"
	}
	return "m"
}

// DailyRecord is one calendar day of aggregated weather history.
// Date is the identity key (YYYY-MM-DD); every other field is optional and
// stays nil when the provider omits it.
type DailyRecord struct {
	Date      string   `json:"date"`
	TempAvg   *float64 `json:"tavg,omitempty"`
	TempMin   *float64 `json:"tmin,omitempty"`
	TempMax   *float64 `json:"tmax,omitempty"`
	Precip    *float64 `json:"prcp,omitempty"`
	Snow      *float64 `json:"snow,omitempty"`
	WindSpeed *float64 `json:"wspd,omitempty"`
	Pressure  *float64 `json:"pres,omitempty"`
	Sunshine  *float64 `json:"tsun,omitempty"`
}

// UnitGroup holds the measurements of a current observation expressed in one
// unit system.
type UnitGroup struct {
	Temp        *float64 `json:"temp,omitempty"`
	HeatIndex   *float64 `json:"heatIndex,omitempty"`
	DewPoint    *float64 `json:"dewpt,omitempty"`
	WindChill   *float64 `json:"windChill,omitempty"`
	WindSpeed   *float64 `json:"windSpeed,omitempty"`
	WindGust    *float64 `json:"windGust,omitempty"`
	Pressure    *float64 `json:"pressure,omitempty"`
	PrecipRate  *float64 `json:"precipRate,omitempty"`
	PrecipTotal *float64 `json:"precipTotal,omitempty"`
	Elevation   *float64 `json:"elev,omitempty"`
}

// Observation is the most recent reading reported by one station.
// ObsTimeUTC is the identity key. At least one of Metric/Imperial is expected
// to be present, but neither is required for decoding.
type Observation struct {
	StationID         *string  `json:"stationID,omitempty"`
	ObsTimeUTC        string   `json:"obsTimeUtc"`
	ObsTimeLocal      *string  `json:"obsTimeLocal,omitempty"`
	Neighborhood      *string  `json:"neighborhood,omitempty"`
	SoftwareType      *string  `json:"softwareType,omitempty"`
	Country           *string  `json:"country,omitempty"`
	Epoch             *int64   `json:"epoch,omitempty"`
	Lat               *float64 `json:"lat,omitempty"`
	Lon               *float64 `json:"lon,omitempty"`
	SolarRadiation    *float64 `json:"solarRadiation,omitempty"`
	UV                *float64 `json:"uv,omitempty"`
	WindDir           *int     `json:"winddir,omitempty"`
	Humidity          *int     `json:"humidity,omitempty"`
	QCStatus          *int     `json:"qcStatus,omitempty"`
	RealtimeFrequency *int     `json:"realtimeFrequency,omitempty"`

	Metric   *UnitGroup `json:"metric,omitempty"`
	Imperial *UnitGroup `json:"imperial,omitempty"`
}

// AggregateUnitGroup holds the period aggregates of a historical observation
// expressed in one unit system.
type AggregateUnitGroup struct {
	TempHigh      *float64 `json:"tempHigh,omitempty"`
	TempLow       *float64 `json:"tempLow,omitempty"`
	TempAvg       *float64 `json:"tempAvg,omitempty"`
	WindSpeedHigh *float64 `json:"windspeedHigh,omitempty"`
	WindSpeedLow  *float64 `json:"windspeedLow,omitempty"`
	WindSpeedAvg  *float64 `json:"windspeedAvg,omitempty"`
	WindGustHigh  *float64 `json:"windgustHigh,omitempty"`
	WindGustLow   *float64 `json:"windgustLow,omitempty"`
	WindGustAvg   *float64 `json:"windgustAvg,omitempty"`
	DewPointHigh  *float64 `json:"dewptHigh,omitempty"`
	DewPointLow   *float64 `json:"dewptLow,omitempty"`
	DewPointAvg   *float64 `json:"dewptAvg,omitempty"`
	WindChillHigh *float64 `json:"windchillHigh,omitempty"`
	WindChillLow  *float64 `json:"windchillLow,omitempty"`
	WindChillAvg  *float64 `json:"windchillAvg,omitempty"`
	HeatIndexHigh *float64 `json:"heatindexHigh,omitempty"`
	HeatIndexLow  *float64 `json:"heatindexLow,omitempty"`
	HeatIndexAvg  *float64 `json:"heatindexAvg,omitempty"`
	PressureMax   *float64 `json:"pressureMax,omitempty"`
	PressureMin   *float64 `json:"pressureMin,omitempty"`
	PressureTrend *float64 `json:"pressureTrend,omitempty"`
	PrecipRate    *float64 `json:"precipRate,omitempty"`
	PrecipTotal   *float64 `json:"precipTotal,omitempty"`
}

// HistoricalObservation is one aggregated-period reading within the 24-hour
// recent-history window. ObsTimeUTC is the identity key.
type HistoricalObservation struct {
	StationID          *string  `json:"stationID,omitempty"`
	Timezone           *string  `json:"tz,omitempty"`
	ObsTimeUTC         string   `json:"obsTimeUtc"`
	ObsTimeLocal       *string  `json:"obsTimeLocal,omitempty"`
	Epoch              *int64   `json:"epoch,omitempty"`
	Lat                *float64 `json:"lat,omitempty"`
	Lon                *float64 `json:"lon,omitempty"`
	QCStatus           *int     `json:"qcStatus,omitempty"`
	HumidityAvg        *int     `json:"humidityAvg,omitempty"`
	HumidityHigh       *int     `json:"humidityHigh,omitempty"`
	HumidityLow        *int     `json:"humidityLow,omitempty"`
	SolarRadiationHigh *float64 `json:"solarRadiationHigh,omitempty"`
	UVHigh             *float64 `json:"uvHigh,omitempty"`
	WindDirAvg         *int     `json:"winddirAvg,omitempty"`

	Metric   *AggregateUnitGroup `json:"metric,omitempty"`
	Imperial *AggregateUnitGroup `json:"imperial,omitempty"`
}

// CanonicalTime derives the instant used for sorting and charting. The epoch
// field wins when present; otherwise the UTC timestamp string is parsed. The
// second return value is false when neither yields a usable instant, in which
// case the point cannot be ordered.
func (o HistoricalObservation) CanonicalTime() (time.Time, bool) {
	if o.Epoch != nil {
		return time.Unix(*o.Epoch, 0).UTC(), true
	}
	if ts, err := time.Parse(time.RFC3339, o.ObsTimeUTC); err == nil {
		return ts.UTC(), true
	}
	return time.Time{}, false
}

// Group returns the measurement group matching the requested unit system, or
// nil if the provider did not include it.
func (o HistoricalObservation) Group(units Units) *AggregateUnitGroup {
	if units == UnitsImperial {
		return o.Imperial
	}
	return o.Metric
}

// HourlyTemperature is one hour-bucket of the recent-history series, derived
// for charting.
type HourlyTemperature struct {
	Hour    time.Time `json:"hour"`
	TempMin float64   `json:"tempMin"`
	TempAvg float64   `json:"tempAvg"`
	TempMax float64   `json:"tempMax"`
	Samples int       `json:"samples"`
}
