// Package config loads and validates wxjournal settings from a YAML file,
// environment variables, and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// PropertySetting controls whether a computed field is written and under
// what front-matter key.
type PropertySetting struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Name    string `mapstructure:"name" yaml:"name"`
}

// Settings is the complete wxjournal configuration.
type Settings struct {
	APIKey            string `mapstructure:"api_key" yaml:"api_key"`
	Location          string `mapstructure:"location" yaml:"location"`
	JournalRoot       string `mapstructure:"journal_root" yaml:"journal_root"`
	JournalSubdir     string `mapstructure:"journal_subdir" yaml:"journal_subdir"`
	JournalNameFormat string `mapstructure:"journal_name_format" yaml:"journal_name_format"`
	RunTime           string `mapstructure:"run_time" yaml:"run_time" validate:"omitempty,datetime=15:04"`
	SpecificDate      string `mapstructure:"specific_date" yaml:"specific_date" validate:"omitempty,datetime=2006-01-02"`
	TemplatePath      string `mapstructure:"template_path" yaml:"template_path"`
	LogLevel          string `mapstructure:"log_level" yaml:"log_level"`

	Properties        map[string]PropertySetting `mapstructure:"properties" yaml:"properties"`
	GeneralProperties map[string]PropertySetting `mapstructure:"general_properties" yaml:"general_properties"`

	// SourceFile is the config file the settings were read from, empty
	// when only defaults and environment variables applied.
	SourceFile string `mapstructure:"-" yaml:"-"`
}

// weatherPropertyKeys are the internal keys of the observation fields, each
// enabled by default under its own name.
var weatherPropertyKeys = []string{
	"wtrtempmax", "wtrtempmin", "wtrtemp",
	"wtrfeelslikemax", "wtrfeelslikemin", "wtrfeelslike",
	"wtrdew", "wtrhumidity",
	"wtrprecip", "wtrpreciptype", "wtrsnow", "wtrsnowdepth",
	"wtrwindgust", "wtrwindspeed", "wtrwinddir",
	"wtrpressure", "wtrcloudcover", "wtrvisibility",
	"wtrsolarradiation", "wtrsolarenergy", "wtruvindex", "wtrsevererisk",
	"sunrise", "sunset", "wtrmoonphase",
	"wtrconditions", "wtrdescription", "wtricon",
}

// generalPropertyDefaults are the non-weather properties that can be
// written alongside the observation. Only location is on by default.
var generalPropertyDefaults = map[string]PropertySetting{
	"fileClass": {Enabled: false, Name: "fileClass"},
	"filename":  {Enabled: false, Name: "filename"},
	"created":   {Enabled: false, Name: "created"},
	"location":  {Enabled: true, Name: "location"},
}

// DefaultSettings returns the settings used when no file is present.
func DefaultSettings() *Settings {
	s := &Settings{
		JournalRoot:       "Journals",
		JournalSubdir:     "YYYY/YYYY-MM",
		JournalNameFormat: "YYYY-MM-DD_DDD",
		LogLevel:          "info",
		Properties:        make(map[string]PropertySetting, len(weatherPropertyKeys)),
		GeneralProperties: make(map[string]PropertySetting, len(generalPropertyDefaults)),
	}
	for _, key := range weatherPropertyKeys {
		s.Properties[key] = PropertySetting{Enabled: true, Name: key}
	}
	for key, def := range generalPropertyDefaults {
		s.GeneralProperties[key] = def
	}
	return s
}

// Load reads settings with the following precedence: explicit file path,
// discovered config file, WXJOURNAL_* environment variables, defaults. A
// .env file in the working directory is loaded first so env overrides work
// in development the same way they do deployed.
func Load(configPath string) (*Settings, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(".wxjournal")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "wxjournal"))
			v.AddConfigPath(home)
		}
	}
	v.SetEnvPrefix("WXJOURNAL")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// No config file found; defaults plus env apply.
	}

	settings := DefaultSettings()
	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		legacyPropertyHook(),
	))
	if err := v.Unmarshal(settings, decodeHook); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	settings.applyPropertyDefaults()
	settings.SourceFile = v.ConfigFileUsed()

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// legacyPropertyHook upgrades the old settings shape where a property was a
// bare boolean instead of an {enabled, name} record. The key is not known
// at hook time, so the name is filled in by applyPropertyDefaults.
func legacyPropertyHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(PropertySetting{}) || from.Kind() != reflect.Bool {
			return data, nil
		}
		return PropertySetting{Enabled: data.(bool)}, nil
	}
}

// applyPropertyDefaults fills in missing property entries and names left
// empty by the legacy-boolean upgrade.
func (s *Settings) applyPropertyDefaults() {
	if s.Properties == nil {
		s.Properties = make(map[string]PropertySetting)
	}
	for _, key := range weatherPropertyKeys {
		entry, ok := s.Properties[key]
		if !ok {
			s.Properties[key] = PropertySetting{Enabled: true, Name: key}
			continue
		}
		if entry.Name == "" {
			entry.Name = key
			s.Properties[key] = entry
		}
	}

	if s.GeneralProperties == nil {
		s.GeneralProperties = make(map[string]PropertySetting)
	}
	for key, def := range generalPropertyDefaults {
		entry, ok := s.GeneralProperties[key]
		if !ok {
			s.GeneralProperties[key] = def
			continue
		}
		if entry.Name == "" {
			entry.Name = key
			s.GeneralProperties[key] = entry
		}
	}
}

// Validate checks field formats. It does not require the API key or
// location: those are checked at fetch time so read-only commands work on
// an unconfigured install.
func (s *Settings) Validate() error {
	if err := validator.New().Struct(s); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}

// MarkerKey returns the front-matter key that flags a note as already
// holding weather data: the configured output name of the description
// field, falling back to its internal key when the entry is absent.
func (s *Settings) MarkerKey() string {
	if entry, ok := s.Properties["wtrdescription"]; ok && entry.Name != "" {
		return entry.Name
	}
	return "wtrdescription"
}
