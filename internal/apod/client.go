// Package apod implements the client for NASA's Astronomy Picture of the Day API.
package apod

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/jmurphy/apod-desktop/internal/conf"
	"github.com/jmurphy/apod-desktop/internal/errors"
	"github.com/jmurphy/apod-desktop/internal/logging"
)

const (
	// UserAgent identifies this client in API requests
	UserAgent = "apod-desktop"

	// RetryDelay is the wait between failed fetch attempts
	RetryDelay = 2 * time.Second

	// DateLayout is the wire format of APOD dates
	DateLayout = "2006-01-02"
)

// firstAPODDate is the date of the first published APOD.
var firstAPODDate = time.Date(1995, time.June, 16, 0, 0, 0, 0, time.UTC)

// Package-level logger for the fetcher service
var (
	fetchLogger   *slog.Logger
	fetchLevelVar = new(slog.LevelVar) // Dynamic level control
)

func init() {
	var err error
	fetchLevelVar.Set(slog.LevelInfo)

	fetchLogger, _, err = logging.NewFileLogger("logs/fetcher.log", "apod", fetchLevelVar)
	if err != nil {
		logging.Error("Failed to initialize apod file logger", "error", err)
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: fetchLevelVar})
		fetchLogger = slog.New(fbHandler).With("service", "apod")
	}
}

// Info represents the APOD API response for a single date.
type Info struct {
	Copyright      string `json:"copyright"`
	Date           string `json:"date"`
	Explanation    string `json:"explanation"`
	HDURL          string `json:"hdurl"`
	MediaType      string `json:"media_type"`
	ServiceVersion string `json:"service_version"`
	ThumbnailURL   string `json:"thumbnail_url"`
	Title          string `json:"title"`
	URL            string `json:"url"`
}

// ImageURL returns the URL of the image bytes to download for this entry.
// Video entries resolve to their thumbnail, image entries prefer the HD URL.
func (i *Info) ImageURL() string {
	if i.MediaType == "video" {
		return i.ThumbnailURL
	}
	if i.HDURL != "" {
		return i.HDURL
	}
	return i.URL
}

// Client fetches APOD metadata and image bytes.
type Client struct {
	endpoint   string
	apiKey     string
	maxRetries int
	httpClient *http.Client
}

// SetLogLevel adjusts the level of the fetcher's file logger.
func SetLogLevel(level slog.Level) {
	fetchLevelVar.Set(level)
}

// NewClient creates an APOD API client from the application settings.
func NewClient(settings *conf.Settings) *Client {
	retries := settings.NASA.MaxRetries
	if retries < 1 {
		// get makes no request at all with zero retries
		retries = 1
	}
	return &Client{
		endpoint:   settings.NASA.Endpoint,
		apiKey:     settings.NASA.APIKey,
		maxRetries: retries,
		httpClient: &http.Client{
			Timeout: time.Duration(settings.NASA.Timeout) * time.Second,
		},
	}
}

// ValidateDate checks that date is a well formed YYYY-MM-DD string within the
// range the APOD archive covers.
func ValidateDate(date string) error {
	parsed, err := time.Parse(DateLayout, date)
	if err != nil {
		return errors.Newf("invalid date format %q, expected YYYY-MM-DD", date).
			Component("apod").
			Category(errors.CategoryValidation).
			Build()
	}
	if parsed.Before(firstAPODDate) {
		return errors.Newf("date %s predates the first APOD (%s)", date, firstAPODDate.Format(DateLayout)).
			Component("apod").
			Category(errors.CategoryValidation).
			Build()
	}
	if parsed.After(time.Now()) {
		return errors.Newf("date %s is in the future", date).
			Component("apod").
			Category(errors.CategoryValidation).
			Build()
	}
	return nil
}

// Today returns the current date in APOD wire format.
func Today() string {
	return time.Now().Format(DateLayout)
}

// FetchInfo retrieves the APOD metadata for the given date.
func (c *Client) FetchInfo(date string) (*Info, error) {
	if err := ValidateDate(date); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("date", date)
	params.Set("thumbs", "true")
	requestURL := c.endpoint + "?" + params.Encode()

	fetchLogger.Info("Fetching APOD metadata",
		"url", maskAPIKey(requestURL, "api_key"),
		"date", date)

	body, err := c.get(requestURL)
	if err != nil {
		return nil, err
	}

	var info Info
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, errors.New(err).
			Component("apod").
			Category(errors.CategoryImageFetch).
			Context("operation", "decode_metadata").
			Context("date", date).
			Build()
	}

	if info.ImageURL() == "" {
		return nil, errors.Newf("APOD entry for %s has no downloadable image (media type %q)", date, info.MediaType).
			Component("apod").
			Category(errors.CategoryImageFetch).
			Context("media_type", info.MediaType).
			Build()
	}

	return &info, nil
}

// Download retrieves the raw image bytes from the given URL.
func (c *Client) Download(imageURL string) ([]byte, error) {
	fetchLogger.Info("Downloading image", "url", imageURL)
	return c.get(imageURL)
}

// get performs a GET request with bounded retries and returns the body of the
// first 2xx response.
func (c *Client) get(requestURL string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, requestURL, http.NoBody)
	if err != nil {
		return nil, errors.New(err).
			Component("apod").
			Category(errors.CategoryNetwork).
			Context("operation", "create_request").
			Build()
	}
	req.Header.Set("User-Agent", UserAgent)

	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		if i > 0 {
			time.Sleep(RetryDelay)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = errors.New(err).
				Component("apod").
				Category(errors.CategoryNetwork).
				Context("operation", "http_get").
				Build()
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			resp.Body.Close()
			lastErr = errors.Newf("received non-2xx response: %d", resp.StatusCode).
				Component("apod").
				Category(errors.CategoryImageFetch).
				Context("status_code", resp.StatusCode).
				Build()
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = errors.New(err).
				Component("apod").
				Category(errors.CategoryNetwork).
				Context("operation", "read_body").
				Build()
			continue
		}

		return body, nil
	}

	fetchLogger.Error("All fetch attempts failed",
		"url", maskAPIKey(requestURL, "api_key"),
		"attempts", c.maxRetries,
		"error", lastErr)
	return nil, lastErr
}

// maskAPIKey replaces the value of the given query parameter so request URLs
// can be logged without leaking credentials.
func maskAPIKey(requestURL, keyParam string) string {
	parsed, err := url.Parse(requestURL)
	if err != nil {
		return requestURL
	}
	query := parsed.Query()
	if query.Get(keyParam) == "" {
		return requestURL
	}
	query.Set(keyParam, "***MASKED***")
	parsed.RawQuery = query.Encode()
	return parsed.String()
}
