package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/coolescape/coolescape/internal/cache"
	"github.com/coolescape/coolescape/internal/district"
)

const (
	// DecisionFavorable is returned when the two 14:00 temperatures are
	// within 2°C of each other (inclusive).
	DecisionFavorable = "Yes, it's a good day to travel!"

	// DecisionUnavailable is returned when either reading failed.
	DecisionUnavailable = "Weather data unavailable for one or both locations"

	favorableMaxDiff = 2.0
)

// Forecaster abstracts the upstream forecast call so the service can be
// exercised against a fake in tests.
type Forecaster interface {
	Forecast(ctx context.Context, lat, lon float64, dates DateRange) (HourlySeries, error)
}

// Service orchestrates concurrent forecast fetches, the shared result cache,
// and the static district list.
type Service struct {
	forecaster Forecaster
	cache      cache.Cache
	registry   *district.Registry
	ttl        time.Duration
}

// NewService creates a Service. ttl bounds how long successful results are
// served from cache.
func NewService(forecaster Forecaster, c cache.Cache, registry *district.Registry, ttl time.Duration) *Service {
	return &Service{
		forecaster: forecaster,
		cache:      c,
		registry:   registry,
		ttl:        ttl,
	}
}

// RankDistricts produces one report per district, sorted ascending by
// average 14:00 temperature with error and no-data entries last. Cached
// districts are served without touching the provider; the rest are fetched
// concurrently. A single district's upstream failure never aborts the batch;
// only an unreachable cache backend does.
func (s *Service) RankDistricts(ctx context.Context) ([]DistrictReport, error) {
	reports := make([]DistrictReport, 0, s.registry.Len())

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	for _, d := range s.registry.All() {
		key := cache.Key(d.Name)
		data, err := s.cache.Get(ctx, key)
		if err != nil && !errors.Is(err, cache.ErrMiss) {
			wg.Wait()
			return nil, fmt.Errorf("cache lookup failed for %s: %w", d.Name, err)
		}
		if err == nil {
			var cached DistrictReport
			if json.Unmarshal(data, &cached) == nil {
				// Earlier fetch goroutines may already be appending.
				mu.Lock()
				reports = append(reports, cached)
				mu.Unlock()
				continue
			}
			// Undecodable entry: fall through and refetch.
		}

		wg.Add(1)
		go func(d district.District) {
			defer wg.Done()

			report := s.fetchDistrict(ctx, d)

			mu.Lock()
			reports = append(reports, report)
			mu.Unlock()
		}(d)
	}

	wg.Wait()

	sort.SliceStable(reports, func(i, j int) bool {
		ti, tj := reports[i].sortTemp(), reports[j].sortTemp()
		if ti != tj {
			return ti < tj
		}
		return reports[i].Name < reports[j].Name
	})

	return reports, nil
}

// fetchDistrict fetches and reduces one district's forecast. Successful
// reports are cached; errors and empty results are not, so a transient
// upstream failure is retried on the very next request.
func (s *Service) fetchDistrict(ctx context.Context, d district.District) DistrictReport {
	series, err := s.forecaster.Forecast(ctx, d.Lat(), d.Lon(), DateRange{})
	if err != nil {
		log.Printf("forecast fetch failed for %s: %v", d.Name, err)
		return errorReport(d, err)
	}

	avg, err := averageAt14(series)
	if err != nil {
		if errors.Is(err, ErrNoSample) {
			log.Printf("no 14:00 samples for %s", d.Name)
			return noDataReport(d, "No temperature data available for the requested time")
		}
		return errorReport(d, err)
	}

	report := okReport(d, avg)
	s.cacheReport(ctx, cache.Key(d.Name), report)
	return report
}

// CompareTravel fetches the 14:00 temperature at two coordinates for the
// given date concurrently and recommends travel when they are within 2°C of
// each other. Either lookup failing upstream degrades the advice instead of
// aborting; only a cache backend failure is returned as an error.
func (s *Service) CompareTravel(ctx context.Context, friendLat, friendLon, destLat, destLon float64, date string) (TravelAdvice, error) {
	var (
		friend, dest       CoordinateReading
		friendErr, destErr error
		wg                 sync.WaitGroup
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		friend, friendErr = s.coordinateReading(ctx, friendLat, friendLon, date)
	}()
	go func() {
		defer wg.Done()
		dest, destErr = s.coordinateReading(ctx, destLat, destLon, date)
	}()
	wg.Wait()

	if friendErr != nil {
		return TravelAdvice{}, friendErr
	}
	if destErr != nil {
		return TravelAdvice{}, destErr
	}

	advice := TravelAdvice{Friend: friend, Destination: dest}

	if !friend.OK || !dest.OK {
		advice.Decision = DecisionUnavailable
		return advice, nil
	}

	diff := round2(math.Abs(friend.TemperatureC - dest.TemperatureC))
	if diff <= favorableMaxDiff {
		advice.Decision = DecisionFavorable
	} else {
		advice.Decision = fmt.Sprintf("No, not an ideal day to travel. The temperature difference is %.2f°C.", diff)
	}
	return advice, nil
}

// coordinateReading resolves one (lat, lon, date) triple through the cache
// or a fresh single-day fetch. Only clean readings are cached. Upstream
// failures come back as the reading's error variant; the returned error is
// reserved for cache backend failures.
func (s *Service) coordinateReading(ctx context.Context, lat, lon float64, date string) (CoordinateReading, error) {
	key := cache.Key(formatCoord(lat), formatCoord(lon), date)

	data, err := s.cache.Get(ctx, key)
	if err != nil && !errors.Is(err, cache.ErrMiss) {
		return CoordinateReading{}, fmt.Errorf("cache lookup failed: %w", err)
	}
	if err == nil {
		var cached CoordinateReading
		if json.Unmarshal(data, &cached) == nil && cached.OK {
			return cached, nil
		}
	}

	series, err := s.forecaster.Forecast(ctx, lat, lon, DateRange{Start: date, End: date})
	if err != nil {
		log.Printf("forecast fetch failed for (%s, %s) on %s: %v", formatCoord(lat), formatCoord(lon), date, err)
		return CoordinateReading{Err: err.Error()}, nil
	}

	temp, err := firstAt14(series)
	if err != nil {
		return CoordinateReading{Err: err.Error()}, nil
	}

	reading := CoordinateReading{OK: true, TemperatureC: temp}
	if data, err := json.Marshal(reading); err == nil {
		if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
			log.Printf("cache write failed for key %s: %v", key, err)
		}
	}
	return reading, nil
}

func (s *Service) cacheReport(ctx context.Context, key string, report DistrictReport) {
	data, err := json.Marshal(report)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		log.Printf("cache write failed for %s: %v", report.Name, err)
	}
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
