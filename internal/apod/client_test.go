package apod

import (
	"fmt"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/jmurphy/apod-desktop/internal/conf"
	"github.com/jmurphy/apod-desktop/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testEndpoint = "https://api.nasa.gov/planetary/apod"

// setupHTTPMock activates httpmock for the duration of the test.
func setupHTTPMock(t *testing.T) {
	t.Helper()
	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)
}

// createTestSettings returns settings pointing at the test endpoint with a
// single fetch attempt so error tests don't sleep through retries.
func createTestSettings(t *testing.T, mutate ...func(*conf.Settings)) *conf.Settings {
	t.Helper()

	settings := &conf.Settings{}
	settings.NASA.Endpoint = testEndpoint
	settings.NASA.APIKey = "TEST_KEY"
	settings.NASA.Timeout = 5
	settings.NASA.MaxRetries = 1

	for _, m := range mutate {
		m(settings)
	}
	return settings
}

func apodSuccessResponse() string {
	return `{
  "copyright": "Test Astronomer",
  "date": "2022-04-27",
  "explanation": "A test picture.",
  "hdurl": "https://apod.nasa.gov/apod/image/2204/test_big.jpg",
  "media_type": "image",
  "service_version": "v1",
  "title": "Test Nebula",
  "url": "https://apod.nasa.gov/apod/image/2204/test.jpg"
}`
}

func registerAPODResponder(t *testing.T, statusCode int, body string) {
	t.Helper()
	httpmock.RegisterResponder("GET", `=~^https://api\.nasa\.gov/planetary/apod`,
		httpmock.NewStringResponder(statusCode, body))
}

func TestClient_FetchInfo_Success(t *testing.T) {
	setupHTTPMock(t)
	registerAPODResponder(t, http.StatusOK, apodSuccessResponse())

	client := NewClient(createTestSettings(t))
	info, err := client.FetchInfo("2022-04-27")

	require.NoError(t, err)
	assert.Equal(t, "2022-04-27", info.Date)
	assert.Equal(t, "Test Nebula", info.Title)
	assert.Equal(t, "image", info.MediaType)
	assert.Equal(t, "https://apod.nasa.gov/apod/image/2204/test_big.jpg", info.ImageURL())
}

func TestClient_FetchInfo_SendsExpectedQuery(t *testing.T) {
	setupHTTPMock(t)

	var gotQuery string
	httpmock.RegisterResponder("GET", `=~^https://api\.nasa\.gov/planetary/apod`,
		func(req *http.Request) (*http.Response, error) {
			gotQuery = req.URL.RawQuery
			return httpmock.NewStringResponse(http.StatusOK, apodSuccessResponse()), nil
		})

	client := NewClient(createTestSettings(t))
	_, err := client.FetchInfo("2022-04-27")

	require.NoError(t, err)
	assert.Contains(t, gotQuery, "api_key=TEST_KEY")
	assert.Contains(t, gotQuery, "date=2022-04-27")
	assert.Contains(t, gotQuery, "thumbs=true")
}

func TestClient_FetchInfo_HTTPError(t *testing.T) {
	setupHTTPMock(t)

	tests := []struct {
		name       string
		statusCode int
	}{
		{"bad_request", http.StatusBadRequest},
		{"forbidden", http.StatusForbidden},
		{"too_many_requests", http.StatusTooManyRequests},
		{"internal_server_error", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpmock.Reset()
			registerAPODResponder(t, tt.statusCode, `{"msg": "nope"}`)

			client := NewClient(createTestSettings(t))
			info, err := client.FetchInfo("2022-04-27")

			require.Error(t, err)
			assert.Nil(t, info)
			assert.True(t, errors.HasCategory(err, errors.CategoryImageFetch))
			assert.Contains(t, err.Error(), fmt.Sprintf("%d", tt.statusCode))
		})
	}
}

func TestClient_FetchInfo_InvalidJSON(t *testing.T) {
	setupHTTPMock(t)
	registerAPODResponder(t, http.StatusOK, `{invalid json`)

	client := NewClient(createTestSettings(t))
	info, err := client.FetchInfo("2022-04-27")

	require.Error(t, err)
	assert.Nil(t, info)
}

func TestClient_FetchInfo_VideoWithoutThumbnail(t *testing.T) {
	setupHTTPMock(t)
	registerAPODResponder(t, http.StatusOK, `{
  "date": "2022-04-27",
  "media_type": "video",
  "title": "Test Video",
  "url": "https://www.youtube.com/embed/abc123"
}`)

	client := NewClient(createTestSettings(t))
	info, err := client.FetchInfo("2022-04-27")

	require.Error(t, err)
	assert.Nil(t, info)
	assert.Contains(t, err.Error(), "no downloadable image")
}

func TestClient_Download(t *testing.T) {
	setupHTTPMock(t)

	imageBytes := "\xff\xd8\xff\xe0 fake jpeg bytes"
	httpmock.RegisterResponder("GET", "https://apod.nasa.gov/apod/image/2204/test.jpg",
		httpmock.NewStringResponder(http.StatusOK, imageBytes))

	client := NewClient(createTestSettings(t))
	data, err := client.Download("https://apod.nasa.gov/apod/image/2204/test.jpg")

	require.NoError(t, err)
	assert.Equal(t, []byte(imageBytes), data)
}

func TestClient_Download_NotFound(t *testing.T) {
	setupHTTPMock(t)

	httpmock.RegisterResponder("GET", "https://apod.nasa.gov/apod/image/2204/missing.jpg",
		httpmock.NewStringResponder(http.StatusNotFound, "not found"))

	client := NewClient(createTestSettings(t))
	data, err := client.Download("https://apod.nasa.gov/apod/image/2204/missing.jpg")

	require.Error(t, err)
	assert.Nil(t, data)
}

func TestValidateDate(t *testing.T) {
	tomorrow := time.Now().Add(24 * time.Hour).Format(DateLayout)

	tests := []struct {
		name    string
		date    string
		wantErr bool
	}{
		{"valid", "2022-04-27", false},
		{"first_apod", "1995-06-16", false},
		{"wrong_format", "27-04-2022", true},
		{"not_a_date", "yesterday", true},
		{"month_out_of_range", "2022-13-01", true},
		{"before_first_apod", "1995-06-15", true},
		{"future", tomorrow, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDate(tt.date)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestInfo_ImageURL(t *testing.T) {
	tests := []struct {
		name     string
		info     Info
		expected string
	}{
		{
			name:     "prefers_hdurl",
			info:     Info{MediaType: "image", HDURL: "https://x/hd.jpg", URL: "https://x/sd.jpg"},
			expected: "https://x/hd.jpg",
		},
		{
			name:     "falls_back_to_url",
			info:     Info{MediaType: "image", URL: "https://x/sd.jpg"},
			expected: "https://x/sd.jpg",
		},
		{
			name:     "video_uses_thumbnail",
			info:     Info{MediaType: "video", URL: "https://youtube/v", ThumbnailURL: "https://x/thumb.jpg"},
			expected: "https://x/thumb.jpg",
		},
		{
			name:     "video_without_thumbnail",
			info:     Info{MediaType: "video", URL: "https://youtube/v"},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.info.ImageURL())
		})
	}
}

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		keyParam string
		expected string
	}{
		{
			name:     "masks_api_key",
			url:      "https://api.nasa.gov/planetary/apod?api_key=secret123&date=2022-04-27",
			keyParam: "api_key",
			expected: "https://api.nasa.gov/planetary/apod?api_key=%2A%2A%2AMASKED%2A%2A%2A&date=2022-04-27",
		},
		{
			name:     "no_key_present",
			url:      "https://api.nasa.gov/planetary/apod?date=2022-04-27",
			keyParam: "api_key",
			expected: "https://api.nasa.gov/planetary/apod?date=2022-04-27",
		},
		{
			name:     "url_without_query",
			url:      "https://apod.nasa.gov/apod/image/2204/test.jpg",
			keyParam: "api_key",
			expected: "https://apod.nasa.gov/apod/image/2204/test.jpg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := maskAPIKey(tt.url, tt.keyParam)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNewClient_ClampsRetries(t *testing.T) {
	setupHTTPMock(t)
	registerAPODResponder(t, http.StatusOK, apodSuccessResponse())

	// A misconfigured retry count must still produce a client that makes
	// at least one request instead of silently returning nothing.
	client := NewClient(createTestSettings(t, func(s *conf.Settings) {
		s.NASA.MaxRetries = 0
	}))

	info, err := client.FetchInfo("2022-04-27")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestNewClient_ClampsRetries_ErrorsStillSurface(t *testing.T) {
	setupHTTPMock(t)
	registerAPODResponder(t, http.StatusNotFound, `{"msg":"not found"}`)

	client := NewClient(createTestSettings(t, func(s *conf.Settings) {
		s.NASA.MaxRetries = -3
	}))

	data, err := client.Download("https://api.nasa.gov/planetary/apod")
	require.Error(t, err)
	assert.Nil(t, data)
	assert.True(t, errors.HasCategory(err, errors.CategoryImageFetch))
}

func TestSetLogLevel(t *testing.T) {
	SetLogLevel(slog.LevelDebug)
	assert.Equal(t, slog.LevelDebug, fetchLevelVar.Level())

	SetLogLevel(slog.LevelInfo)
	assert.Equal(t, slog.LevelInfo, fetchLevelVar.Level())
}
