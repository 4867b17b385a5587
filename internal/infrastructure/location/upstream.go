package location

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/smartfertilizer/backend/internal/domain/soil"
)

const maxResponseSize = 1 << 20

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (s *Service) getJSON(ctx context.Context, endpoint string, query url.Values, dst any) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if s.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", s.cfg.UserAgent)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return err
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%s returned status %d", req.URL.Host, resp.StatusCode)
	}
	return json.Unmarshal(body, dst)
}

type weatherResult struct {
	Temperature float64
	Humidity    float64
	Locality    string
	Source      soil.Source
}

type owmResponse struct {
	Name string `json:"name"`
	Main *struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Sys struct {
		Country string `json:"country"`
	} `json:"sys"`
}

func (s *Service) fetchWeather(ctx context.Context, lat, lon float64) (weatherResult, error) {
	if s.cfg.WeatherAPIKey == "" {
		return weatherResult{
			Temperature: Estimate(lat, lon, SeedTemperature),
			Humidity:    Estimate(lat, lon, SeedHumidity),
			Source:      soil.SourceEstimated,
		}, nil
	}

	query := url.Values{}
	query.Set("lat", formatCoord(lat))
	query.Set("lon", formatCoord(lon))
	query.Set("appid", s.cfg.WeatherAPIKey)
	query.Set("units", "metric")

	var resp owmResponse
	err := s.getJSON(ctx, s.cfg.WeatherURL+"/data/2.5/weather", query, &resp)
	if err == nil && resp.Main == nil {
		err = fmt.Errorf("weather response has no main block")
	}
	if err != nil {
		return weatherResult{
			Temperature: FallbackTemperature,
			Humidity:    FallbackHumidity,
			Locality:    FallbackLocality,
			Source:      soil.SourceFallback,
		}, err
	}

	locality := resp.Name
	if resp.Sys.Country != "" {
		locality = strings.TrimPrefix(locality+", "+resp.Sys.Country, ", ")
	}
	return weatherResult{
		Temperature: resp.Main.Temp,
		Humidity:    resp.Main.Humidity,
		Locality:    locality,
		Source:      soil.SourceLive,
	}, nil
}

type soilResult struct {
	Nitrogen   float64
	PH         float64
	Phosphorus float64
	Potassium  float64
	Source     soil.Source
}

type soilGridsResponse struct {
	Properties struct {
		Layers []struct {
			Name   string `json:"name"`
			Depths []struct {
				Values struct {
					Mean *float64 `json:"mean"`
				} `json:"values"`
			} `json:"depths"`
		} `json:"layers"`
	} `json:"properties"`
}

func (r soilGridsResponse) mean(name string) (float64, bool) {
	for _, layer := range r.Properties.Layers {
		if layer.Name != name || len(layer.Depths) == 0 {
			continue
		}
		if m := layer.Depths[0].Values.Mean; m != nil && *m != 0 {
			return *m, true
		}
	}
	return 0, false
}

// estimatedSoil is the result when SoilGrids cannot be used at all
func estimatedSoil(lat, lon float64, source soil.Source) soilResult {
	return soilResult{
		Nitrogen:   Estimate(lat, lon, SeedNitrogen),
		PH:         Estimate(lat, lon, SeedPH),
		Phosphorus: Estimate(lat, lon, SeedPhosphorus),
		Potassium:  Estimate(lat, lon, SeedPotassium),
		Source:     source,
	}
}

func (s *Service) fetchSoil(ctx context.Context, lat, lon float64) (soilResult, error) {
	query := url.Values{}
	query.Set("lat", formatCoord(lat))
	query.Set("lon", formatCoord(lon))
	query.Add("property", "nitrogen")
	query.Add("property", "phh2o")
	query.Set("layer", "0-5cm")
	query.Set("vo", "mean")

	var resp soilGridsResponse
	if err := s.getJSON(ctx, s.cfg.SoilURL+"/soilgrids/v2.0/properties/query", query, &resp); err != nil {
		return estimatedSoil(lat, lon, soil.SourceFallback), err
	}

	result := estimatedSoil(lat, lon, soil.SourceEstimated)
	if rawN, ok := resp.mean("nitrogen"); ok {
		result.Nitrogen = round1(math.Min(100, rawN/4))
		result.Source = soil.SourceLive
	}
	if rawPH, ok := resp.mean("phh2o"); ok {
		result.PH = round1(rawPH / 10)
		result.Source = soil.SourceLive
	}
	return result, nil
}

type nominatimResponse struct {
	DisplayName string            `json:"display_name"`
	Address     map[string]string `json:"address"`
}

func firstNonEmpty(addr map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(addr[k]); v != "" {
			return v
		}
	}
	return ""
}

func (s *Service) fetchPlace(ctx context.Context, lat, lon float64) (string, error) {
	query := url.Values{}
	query.Set("format", "json")
	query.Set("lat", formatCoord(lat))
	query.Set("lon", formatCoord(lon))
	query.Set("addressdetails", "1")

	var resp nominatimResponse
	if err := s.getJSON(ctx, s.cfg.GeocodeURL+"/reverse", query, &resp); err != nil {
		return "", err
	}
	if resp.Address == nil {
		return "", nil
	}

	var parts []string
	for _, part := range []string{
		firstNonEmpty(resp.Address, "village", "suburb", "town", "city", "hamlet", "neighbourhood"),
		firstNonEmpty(resp.Address, "county", "district", "state_district"),
		firstNonEmpty(resp.Address, "state"),
	} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, ", "), nil
	}
	return resp.DisplayName, nil
}
