package weather

import (
	"encoding/json"
	"errors"
	"math"

	"github.com/coolescape/coolescape/internal/district"
)

// HourlySeries is the upstream hourly forecast: two index-aligned sequences
// of ISO-8601 timestamps and temperatures. It only lives for the duration of
// one fetch.
type HourlySeries struct {
	Time         []string
	TemperatureC []float64
}

// ReportKind tags the variant of a DistrictReport.
type ReportKind int

const (
	ReportOK ReportKind = iota
	ReportNoData
	ReportError
)

// DistrictReport is the per-district outcome of one aggregation pass: either
// an average 14:00 temperature, a "no data for that hour" result, or the
// upstream error that prevented a reading.
type DistrictReport struct {
	ID         string
	DivisionID string
	Name       string
	BnName     string
	Latitude   string
	Longitude  string

	AvgTempC float64
	Kind     ReportKind
	Err      string
}

// sortTemp is the ranking key: reports without a usable temperature sort
// after every numeric entry.
func (r DistrictReport) sortTemp() float64 {
	if r.Kind != ReportOK {
		return math.Inf(1)
	}
	return r.AvgTempC
}

func okReport(d district.District, avg float64) DistrictReport {
	return DistrictReport{
		ID:         d.ID,
		DivisionID: d.DivisionID,
		Name:       d.Name,
		BnName:     d.BnName,
		Latitude:   d.Latitude,
		Longitude:  d.Longitude,
		AvgTempC:   avg,
		Kind:       ReportOK,
	}
}

func noDataReport(d district.District, msg string) DistrictReport {
	return DistrictReport{Name: d.Name, Kind: ReportNoData, Err: msg}
}

func errorReport(d district.District, err error) DistrictReport {
	return DistrictReport{Name: d.Name, Kind: ReportError, Err: err.Error()}
}

type districtReportWire struct {
	ID                 string  `json:"id"`
	DivisionID         string  `json:"division_id"`
	Name               string  `json:"name"`
	BnName             string  `json:"bn_name"`
	AverageTemperature float64 `json:"average_temperature"`
	TemperatureUnit    string  `json:"temperature_unit"`
	Latitude           string  `json:"latitude"`
	Longitude          string  `json:"longitude"`
}

func (r DistrictReport) MarshalJSON() ([]byte, error) {
	switch r.Kind {
	case ReportOK:
		return json.Marshal(districtReportWire{
			ID:                 r.ID,
			DivisionID:         r.DivisionID,
			Name:               r.Name,
			BnName:             r.BnName,
			AverageTemperature: r.AvgTempC,
			TemperatureUnit:    "Celsius",
			Latitude:           r.Latitude,
			Longitude:          r.Longitude,
		})
	case ReportNoData:
		return json.Marshal(struct {
			District string `json:"district"`
			Message  string `json:"message"`
		}{r.Name, r.Err})
	default:
		return json.Marshal(struct {
			District string `json:"district"`
			Error    string `json:"error"`
		}{r.Name, r.Err})
	}
}

// UnmarshalJSON restores a cached report. Only successful reports are ever
// written to the cache, so only the OK wire shape is accepted.
func (r *DistrictReport) UnmarshalJSON(data []byte) error {
	var w districtReportWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Name == "" {
		return errors.New("cached district report is missing a name")
	}
	*r = DistrictReport{
		ID:         w.ID,
		DivisionID: w.DivisionID,
		Name:       w.Name,
		BnName:     w.BnName,
		Latitude:   w.Latitude,
		Longitude:  w.Longitude,
		AvgTempC:   w.AverageTemperature,
		Kind:       ReportOK,
	}
	return nil
}

// CoordinateReading is the reduced 14:00 result for one (lat, lon, date)
// lookup: a temperature on success, the upstream error string otherwise.
type CoordinateReading struct {
	OK           bool
	TemperatureC float64
	Err          string
}

func (c CoordinateReading) MarshalJSON() ([]byte, error) {
	if c.OK {
		return json.Marshal(struct {
			Temperature float64 `json:"temperature"`
		}{c.TemperatureC})
	}
	return json.Marshal(struct {
		Error string `json:"error"`
	}{c.Err})
}

func (c *CoordinateReading) UnmarshalJSON(data []byte) error {
	var w struct {
		Temperature *float64 `json:"temperature"`
		Error       string   `json:"error"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Temperature == nil {
		*c = CoordinateReading{Err: w.Error}
		return nil
	}
	*c = CoordinateReading{OK: true, TemperatureC: *w.Temperature}
	return nil
}

// TravelAdvice pairs the two coordinate readings of a travel comparison with
// a decision. When either reading failed the advice degrades: both raw
// sub-results are preserved for diagnosis instead of the temperature pair.
type TravelAdvice struct {
	Friend      CoordinateReading
	Destination CoordinateReading
	Decision    string
}

func (t TravelAdvice) MarshalJSON() ([]byte, error) {
	if t.Friend.OK && t.Destination.OK {
		return json.Marshal(struct {
			FriendTemperature      float64 `json:"friend_temperature"`
			DestinationTemperature float64 `json:"destination_temperature"`
			Decision               string  `json:"decision"`
		}{t.Friend.TemperatureC, t.Destination.TemperatureC, t.Decision})
	}
	return json.Marshal(struct {
		Friend      CoordinateReading `json:"friend"`
		Destination CoordinateReading `json:"destination"`
		Decision    string            `json:"decision"`
	}{t.Friend, t.Destination, t.Decision})
}
