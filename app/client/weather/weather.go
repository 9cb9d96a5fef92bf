package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/samber/do"
)

const endpoint = "https://api.open-meteo.com/v1/forecast"

type coords struct {
	lat float64
	lon float64
}

// cityCoordinates covers the cities and regions of Uzbekistan the bot
// serves; region names resolve to their administrative centers.
var cityCoordinates = map[string]coords{
	"ташкент":             {41.2995, 69.2401},
	"самарканд":           {39.6542, 66.9597},
	"бухара":              {39.7748, 64.4286},
	"андижан":             {40.7833, 72.3333},
	"фергана":             {40.3734, 71.7978},
	"наманган":            {40.9983, 71.6726},
	"карши":               {38.8352, 65.7842},
	"термез":              {37.2242, 67.2783},
	"нукус":               {42.4531, 59.6103},
	"ургенч":              {41.5534, 60.6317},
	"навои":               {40.0844, 65.3792},
	"гулистан":            {40.4897, 68.7844},
	"чирчик":              {41.4697, 69.5822},
	"джизак":              {40.1158, 67.8422},
	"коканд":              {40.5286, 70.9428},
	"ангрен":              {41.0167, 70.1436},
	"алмалык":             {40.8667, 69.6},
	"бекабад":             {40.2167, 69.2833},
	"янгиюль":             {41.1121, 69.0708},
	"кибрай":              {41.3833, 69.45},
	"паркент":             {41.3, 69.6833},
	"ташкентская область": {41.2995, 69.2401},
	"каракалпакстан":      {42.4531, 59.6103},
	"хорезм":              {41.5534, 60.6317},
	"кашкадарья":          {38.8352, 65.7842},
	"сурхандарья":         {37.2242, 67.2783},
	"сырдарья":            {40.4897, 68.7844},
}

var windDirections = []string{
	"северный", "северо-восточный", "восточный", "юго-восточный",
	"южный", "юго-западный", "западный", "северо-западный",
}

// Report is a current-conditions snapshot for a known city.
type Report struct {
	City          string
	Temperature   float64
	Condition     string
	Humidity      int
	WindSpeed     float64
	WindDirection string
}

type Client struct {
	httpClient *http.Client
}

func NewClient(_ *do.Injector) (*Client, error) {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// ErrUnknownCity is reported when the city is not in the gazetteer.
type ErrUnknownCity struct {
	City string
}

func (e *ErrUnknownCity) Error() string {
	return fmt.Sprintf("unknown city %q", e.City)
}

// KnownCities lists gazetteer entries for "city not found" replies.
func KnownCities() []string {
	return []string{
		"Ташкент", "Самарканд", "Бухара", "Андижан", "Фергана", "Наманган",
		"Карши", "Термез", "Нукус", "Ургенч", "Навои", "Гулистан", "Чирчик",
	}
}

func lookupCity(city string) (coords, bool) {
	key := strings.ToLower(strings.TrimSpace(city))
	if c, ok := cityCoordinates[key]; ok {
		return c, true
	}

	// Partial match catches inflected forms ("Ташкенте", "в Самарканд").
	for name, c := range cityCoordinates {
		if strings.Contains(name, key) || strings.Contains(key, name) {
			return c, true
		}
	}

	return coords{}, false
}

type forecastResponse struct {
	CurrentWeather struct {
		Temperature   float64 `json:"temperature"`
		WindSpeed     float64 `json:"windspeed"`
		WindDirection float64 `json:"winddirection"`
	} `json:"current_weather"`
	Hourly struct {
		RelativeHumidity []int `json:"relativehumidity_2m"`
	} `json:"hourly"`
}

// Current fetches the present conditions for a city.
func (c *Client) Current(ctx context.Context, city string) (*Report, error) {
	pos, ok := lookupCity(city)
	if !ok {
		return nil, &ErrUnknownCity{City: city}
	}

	query := url.Values{}
	query.Set("latitude", strconv.FormatFloat(pos.lat, 'f', 4, 64))
	query.Set("longitude", strconv.FormatFloat(pos.lon, 'f', 4, 64))
	query.Set("current_weather", "true")
	query.Set("hourly", "temperature_2m,relativehumidity_2m,windspeed_10m")
	query.Set("timezone", "Asia/Tashkent")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build weather request: %w", err)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather request failed: status %d", res.StatusCode)
	}

	var body forecastResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode weather response: %w", err)
	}

	humidity := 0
	if len(body.Hourly.RelativeHumidity) > 0 {
		humidity = body.Hourly.RelativeHumidity[0]
	}

	return &Report{
		City:          titleCase(city),
		Temperature:   body.CurrentWeather.Temperature,
		Condition:     conditionText(body.CurrentWeather.Temperature),
		Humidity:      humidity,
		WindSpeed:     body.CurrentWeather.WindSpeed,
		WindDirection: windDirectionText(body.CurrentWeather.WindDirection),
	}, nil
}

func conditionText(temperature float64) string {
	switch {
	case temperature >= 25:
		return "жарко, солнечно"
	case temperature >= 15:
		return "тепло, комфортно"
	case temperature >= 5:
		return "прохладно"
	case temperature >= -5:
		return "холодно"
	default:
		return "очень холодно, мороз"
	}
}

func windDirectionText(degrees float64) string {
	index := int(math.Round(degrees/45)) % 8
	return windDirections[index]
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		runes := []rune(w)
		runes[0] = []rune(strings.ToUpper(string(runes[0])))[0]
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
