package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/samber/do"
)

const endpoint = "https://translate.googleapis.com/translate_a/single"

// langAliases resolves the language names users actually type (Russian
// names, English names, bare codes) to translation target codes.
var langAliases = map[string]string{
	"русский":       "ru",
	"russian":       "ru",
	"ru":            "ru",
	"английский":    "en",
	"english":       "en",
	"en":            "en",
	"испанский":     "es",
	"spanish":       "es",
	"es":            "es",
	"французский":   "fr",
	"french":        "fr",
	"fr":            "fr",
	"немецкий":      "de",
	"german":        "de",
	"de":            "de",
	"итальянский":   "it",
	"italian":       "it",
	"it":            "it",
	"португальский": "pt",
	"portuguese":    "pt",
	"pt":            "pt",
	"китайский":     "zh",
	"chinese":       "zh",
	"zh":            "zh",
	"японский":      "ja",
	"japanese":      "ja",
	"ja":            "ja",
	"корейский":     "ko",
	"korean":        "ko",
	"ko":            "ko",
}

// ResolveLang maps a user-typed language name to a target code.
func ResolveLang(name string) (string, bool) {
	code, ok := langAliases[strings.ToLower(strings.TrimSpace(name))]
	return code, ok
}

// SupportedList returns the codes users can ask for, for help texts.
func SupportedList() []string {
	return []string{"ru", "en", "es", "fr", "de", "it", "pt", "zh", "ja", "ko"}
}

type Client struct {
	httpClient *http.Client
}

func NewClient(_ *do.Injector) (*Client, error) {
	return &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}, nil
}

// Translate sends text to the unofficial gtx endpoint with automatic
// source language detection.
func (c *Client) Translate(ctx context.Context, targetLang, text string) (string, error) {
	query := url.Values{}
	query.Set("client", "gtx")
	query.Set("sl", "auto")
	query.Set("tl", targetLang)
	query.Set("dt", "t")
	query.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build translate request: %w", err)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("translate request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translate request failed: status %d", res.StatusCode)
	}

	// The endpoint answers with nested arrays; segment texts sit at
	// body[0][i][0].
	var body []any
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode translate response: %w", err)
	}

	translated, err := extractSegments(body)
	if err != nil {
		return "", err
	}

	return translated, nil
}

func extractSegments(body []any) (string, error) {
	if len(body) == 0 {
		return "", fmt.Errorf("empty translate response")
	}

	segments, ok := body[0].([]any)
	if !ok {
		return "", fmt.Errorf("unexpected translate response shape")
	}

	var sb strings.Builder
	for _, seg := range segments {
		parts, ok := seg.([]any)
		if !ok || len(parts) == 0 {
			continue
		}

		text, ok := parts[0].(string)
		if !ok {
			continue
		}

		sb.WriteString(text)
	}

	if sb.Len() == 0 {
		return "", fmt.Errorf("empty translate response")
	}

	return sb.String(), nil
}
