// Package weather talks to the Visual Crossing timeline API and maps a
// single day's observation onto front-matter property values.
package weather

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StringList decodes a field that the API serves either as a JSON array or
// as a comma-separated string, depending on endpoint version.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *StringList) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*l = arr
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("string list: want array or string: %w", err)
	}
	if s == "" {
		*l = nil
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	*l = parts
	return nil
}

// Observation is one calendar day's historical weather record as returned
// in the timeline response's days array.
type Observation struct {
	TempMax        float64    `json:"tempmax"`
	TempMin        float64    `json:"tempmin"`
	Temp           float64    `json:"temp"`
	FeelsLikeMax   float64    `json:"feelslikemax"`
	FeelsLikeMin   float64    `json:"feelslikemin"`
	FeelsLike      float64    `json:"feelslike"`
	Dew            float64    `json:"dew"`
	Humidity       float64    `json:"humidity"`
	Precip         float64    `json:"precip"`
	PrecipType     StringList `json:"preciptype"`
	Snow           float64    `json:"snow"`
	SnowDepth      float64    `json:"snowdepth"`
	WindGust       float64    `json:"windgust"`
	WindSpeed      float64    `json:"windspeed"`
	WindDir        float64    `json:"winddir"`
	Pressure       float64    `json:"pressure"`
	CloudCover     float64    `json:"cloudcover"`
	Visibility     float64    `json:"visibility"`
	SolarRadiation float64    `json:"solarradiation"`
	SolarEnergy    float64    `json:"solarenergy"`
	UVIndex        float64    `json:"uvindex"`
	SevereRisk     float64    `json:"severerisk"`
	Sunrise        string     `json:"sunrise"`
	Sunset         string     `json:"sunset"`
	MoonPhase      float64    `json:"moonphase"`
	Conditions     StringList `json:"conditions"`
	Description    string     `json:"description"`
	Icon           string     `json:"icon"`
}

// DescriptionKey is the internal key of the free-text description field,
// used as the "already written" marker during merges.
const DescriptionKey = "wtrdescription"

// Properties returns the observation's fields under their internal keys,
// ready for selection and renaming. List fields are rendered in the
// bracketed form the journal front matter uses.
func (o *Observation) Properties() map[string]interface{} {
	return map[string]interface{}{
		"wtrtempmax":        o.TempMax,
		"wtrtempmin":        o.TempMin,
		"wtrtemp":           o.Temp,
		"wtrfeelslikemax":   o.FeelsLikeMax,
		"wtrfeelslikemin":   o.FeelsLikeMin,
		"wtrfeelslike":      o.FeelsLike,
		"wtrdew":            o.Dew,
		"wtrhumidity":       o.Humidity,
		"wtrprecip":         o.Precip,
		"wtrpreciptype":     formatList(o.PrecipType),
		"wtrsnow":           o.Snow,
		"wtrsnowdepth":      o.SnowDepth,
		"wtrwindgust":       o.WindGust,
		"wtrwindspeed":      o.WindSpeed,
		"wtrwinddir":        o.WindDir,
		"wtrpressure":       o.Pressure,
		"wtrcloudcover":     o.CloudCover,
		"wtrvisibility":     o.Visibility,
		"wtrsolarradiation": o.SolarRadiation,
		"wtrsolarenergy":    o.SolarEnergy,
		"wtruvindex":        o.UVIndex,
		"wtrsevererisk":     o.SevereRisk,
		"sunrise":           o.Sunrise,
		"sunset":            o.Sunset,
		"wtrmoonphase":      o.MoonPhase,
		"wtrconditions":     formatList(o.Conditions),
		DescriptionKey:      o.Description,
		"wtricon":           o.Icon,
	}
}

// formatList renders a list as ['a','b'], or an empty string for no values.
func formatList(values StringList) string {
	if len(values) == 0 {
		return ""
	}
	return "['" + strings.Join(values, "','") + "']"
}
