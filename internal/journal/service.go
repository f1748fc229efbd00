package journal

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dgallagher/wxjournal/internal/config"
	"github.com/dgallagher/wxjournal/internal/logger"
	"github.com/dgallagher/wxjournal/internal/note"
	"github.com/dgallagher/wxjournal/internal/weather"
	"github.com/dgallagher/wxjournal/internal/wxerrors"
)

// ObservationFetcher is the weather client surface the service needs.
type ObservationFetcher interface {
	DayObservation(ctx context.Context, location string, day time.Time) (*weather.Observation, error)
}

// Service runs one fetch-and-apply pass: observation in, journal note out.
type Service struct {
	settings *config.Settings
	client   ObservationFetcher
	writer   *Writer
	log      *logger.Logger
	now      func() time.Time
}

// NewService wires a fetch pipeline from settings.
func NewService(settings *config.Settings, client ObservationFetcher, writer *Writer, log *logger.Logger) *Service {
	return &Service{
		settings: settings,
		client:   client,
		writer:   writer,
		log:      log.Named("journal"),
		now:      time.Now,
	}
}

// FetchYesterday runs FetchAndApply for yesterday relative to the current
// local date.
func (s *Service) FetchYesterday(ctx context.Context) error {
	return s.FetchAndApply(ctx, s.now().AddDate(0, 0, -1))
}

// FetchAndApply retrieves the observation for date and merges the selected
// properties into the date's journal note. Missing API key or location is a
// ConfigurationError and no network call is made.
func (s *Service) FetchAndApply(ctx context.Context, date time.Time) error {
	if s.settings.APIKey == "" {
		return &wxerrors.ConfigurationError{Field: "api_key"}
	}
	if s.settings.Location == "" {
		return &wxerrors.ConfigurationError{Field: "location"}
	}

	obs, err := s.client.DayObservation(ctx, s.settings.Location, date)
	if err != nil {
		s.log.Error("weather fetch failed",
			zap.String("date", date.Format("2006-01-02")), zap.Error(err))
		return err
	}

	naming := note.Naming{
		RootFolder:   s.settings.JournalRoot,
		SubFolder:    s.settings.JournalSubdir,
		NameFormat:   s.settings.JournalNameFormat,
		TemplatePath: s.settings.TemplatePath,
	}
	_, noteName := note.ResolvePath(date, naming)

	props := selectProperties(obs.Properties(), s.settings.Properties)
	for key, value := range s.generalProperties(noteName) {
		props[key] = value
	}

	return s.writer.CreateOrUpdate(date, naming, s.settings.MarkerKey(), props)
}

// selectProperties filters and renames values through the enable/rename
// table. Entries are visited in sorted internal-key order so an output-name
// collision always resolves to the same winner.
func selectProperties(all map[string]interface{}, selection map[string]config.PropertySetting) map[string]interface{} {
	keys := make([]string, 0, len(all))
	for key := range all {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make(map[string]interface{}, len(all))
	for _, key := range keys {
		entry, ok := selection[key]
		if !ok || !entry.Enabled {
			continue
		}
		out[entry.Name] = all[key]
	}
	return out
}

// generalProperties computes the enabled non-weather properties.
func (s *Service) generalProperties(noteName string) map[string]interface{} {
	values := map[string]interface{}{
		"fileClass": "Journal",
		"filename":  strings.TrimSuffix(noteName, note.Extension),
		"created":   s.now().Format(time.RFC3339),
		"location":  s.settings.Location,
	}
	out := make(map[string]interface{}, len(values))
	for key, value := range values {
		entry, ok := s.settings.GeneralProperties[key]
		if !ok || !entry.Enabled {
			continue
		}
		out[entry.Name] = value
	}
	return out
}
