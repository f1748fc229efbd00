package journal

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallagher/wxjournal/internal/config"
	"github.com/dgallagher/wxjournal/internal/logger"
	"github.com/dgallagher/wxjournal/internal/weather"
	"github.com/dgallagher/wxjournal/internal/wxerrors"
)

type fakeFetcher struct {
	obs   *weather.Observation
	err   error
	calls int
}

func (f *fakeFetcher) DayObservation(_ context.Context, _ string, _ time.Time) (*weather.Observation, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.obs, nil
}

func testObservation() *weather.Observation {
	return &weather.Observation{
		Temp:        41.5,
		TempMax:     48.2,
		TempMin:     35.1,
		Conditions:  weather.StringList{"Partially cloudy"},
		Description: "Partly cloudy throughout the day.",
		Sunrise:     "06:21:04",
		Sunset:      "17:32:11",
	}
}

func testSettings() *config.Settings {
	s := config.DefaultSettings()
	s.APIKey = "test-key"
	s.Location = "Boston, MA"
	return s
}

func newTestService(settings *config.Settings, fetcher ObservationFetcher, fs afero.Fs) *Service {
	writer := NewWriter(fs, logger.NewNop())
	return NewService(settings, fetcher, writer, logger.NewNop())
}

func TestService_MissingCredentials(t *testing.T) {
	tests := []struct {
		name  string
		tweak func(*config.Settings)
		field string
	}{
		{
			name:  "missing api key",
			tweak: func(s *config.Settings) { s.APIKey = "" },
			field: "api_key",
		},
		{
			name:  "missing location",
			tweak: func(s *config.Settings) { s.Location = "" },
			field: "location",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := testSettings()
			tt.tweak(settings)
			fetcher := &fakeFetcher{obs: testObservation()}
			svc := newTestService(settings, fetcher, afero.NewMemMapFs())

			err := svc.FetchAndApply(context.Background(), testDate)

			var cfgErr *wxerrors.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
			// Failing fast means no request went out.
			assert.Zero(t, fetcher.calls)
		})
	}
}

func TestService_FetchAndApply(t *testing.T) {
	fs := afero.NewMemMapFs()
	fetcher := &fakeFetcher{obs: testObservation()}
	svc := newTestService(testSettings(), fetcher, fs)

	require.NoError(t, svc.FetchAndApply(context.Background(), testDate))
	assert.Equal(t, 1, fetcher.calls)

	doc := readNote(t, fs, notePath)
	assert.Equal(t, 41.5, doc.Frontmatter["wtrtemp"])
	assert.Equal(t, "Partly cloudy throughout the day.", doc.Frontmatter["wtrdescription"])
	assert.Equal(t, "06:21:04", doc.Frontmatter["sunrise"])
	// location is the only general property enabled by default.
	assert.Equal(t, "Boston, MA", doc.Frontmatter["location"])
	assert.NotContains(t, doc.Frontmatter, "fileClass")
	assert.NotContains(t, doc.Frontmatter, "filename")
	assert.NotContains(t, doc.Frontmatter, "created")
}

func TestService_SecondRunIsIdempotent(t *testing.T) {
	fs := afero.NewMemMapFs()
	fetcher := &fakeFetcher{obs: testObservation()}
	svc := newTestService(testSettings(), fetcher, fs)

	require.NoError(t, svc.FetchAndApply(context.Background(), testDate))
	first, err := afero.ReadFile(fs, notePath)
	require.NoError(t, err)

	// Different data on the second fetch must not land in the note.
	fetcher.obs = testObservation()
	fetcher.obs.Temp = 99.9
	require.NoError(t, svc.FetchAndApply(context.Background(), testDate))

	second, err := afero.ReadFile(fs, notePath)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestService_PropertySelection(t *testing.T) {
	fs := afero.NewMemMapFs()
	settings := testSettings()
	settings.Properties["wtrtemp"] = config.PropertySetting{Enabled: true, Name: "temperature"}
	settings.Properties["wtrtempmax"] = config.PropertySetting{Enabled: false, Name: "wtrtempmax"}
	settings.GeneralProperties["fileClass"] = config.PropertySetting{Enabled: true, Name: "fileClass"}
	settings.GeneralProperties["filename"] = config.PropertySetting{Enabled: true, Name: "filename"}

	fetcher := &fakeFetcher{obs: testObservation()}
	svc := newTestService(settings, fetcher, fs)
	require.NoError(t, svc.FetchAndApply(context.Background(), testDate))

	doc := readNote(t, fs, notePath)
	assert.Equal(t, 41.5, doc.Frontmatter["temperature"])
	assert.NotContains(t, doc.Frontmatter, "wtrtemp")
	assert.NotContains(t, doc.Frontmatter, "wtrtempmax")
	assert.Equal(t, "Journal", doc.Frontmatter["fileClass"])
	assert.Equal(t, "2024-03-01_Fri", doc.Frontmatter["filename"])
}

func TestSelectProperties_CollisionIsDeterministic(t *testing.T) {
	all := map[string]interface{}{
		"wtrtemp":    41.5,
		"wtrtempmax": 48.2,
		"wtrtempmin": 35.1,
	}
	selection := map[string]config.PropertySetting{
		"wtrtemp":    {Enabled: true, Name: "temperature"},
		"wtrtempmax": {Enabled: true, Name: "temperature"},
		"wtrtempmin": {Enabled: true, Name: "low"},
	}

	// Two entries rename to the same output key; the winner must be the
	// same on every run, not whichever the map happened to yield last.
	for i := 0; i < 20; i++ {
		out := selectProperties(all, selection)
		assert.Equal(t, map[string]interface{}{
			"temperature": 48.2,
			"low":         35.1,
		}, out)
	}
}

func TestService_RenamedMarkerKey(t *testing.T) {
	fs := afero.NewMemMapFs()
	settings := testSettings()
	settings.Properties["wtrdescription"] = config.PropertySetting{Enabled: true, Name: "weather"}

	fetcher := &fakeFetcher{obs: testObservation()}
	svc := newTestService(settings, fetcher, fs)

	require.NoError(t, svc.FetchAndApply(context.Background(), testDate))
	first, err := afero.ReadFile(fs, notePath)
	require.NoError(t, err)
	assert.Contains(t, string(first), "weather: Partly cloudy throughout the day.")

	// Idempotence keys off the renamed field.
	require.NoError(t, svc.FetchAndApply(context.Background(), testDate))
	second, err := afero.ReadFile(fs, notePath)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestService_FetchYesterday(t *testing.T) {
	fs := afero.NewMemMapFs()
	fetcher := &fakeFetcher{obs: testObservation()}
	svc := newTestService(testSettings(), fetcher, fs)
	svc.now = func() time.Time {
		return time.Date(2024, 3, 2, 9, 0, 0, 0, time.Local)
	}

	require.NoError(t, svc.FetchYesterday(context.Background()))

	exists, err := afero.Exists(fs, notePath)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestService_FetchErrorPropagates(t *testing.T) {
	fs := afero.NewMemMapFs()
	fetcher := &fakeFetcher{err: &wxerrors.NetworkError{StatusCode: 401, Err: nil}}
	svc := newTestService(testSettings(), fetcher, fs)

	err := svc.FetchAndApply(context.Background(), testDate)

	var netErr *wxerrors.NetworkError
	require.ErrorAs(t, err, &netErr)

	exists, existsErr := afero.Exists(fs, notePath)
	require.NoError(t, existsErr)
	assert.False(t, exists)
}
