// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package presenter

import "github.com/vorlif/spreak/localize"

const unknownConditionIcon = "🌡️"

// MoonPhaseIcon is a map where moon phase names are keys and their corresponding emoji representations are values.
var MoonPhaseIcon = map[string]string{
	"New Moon":        "🌑",
	"Waxing Crescent": "🌒",
	"First Quarter":   "🌓",
	"Waxing Gibbous":  "🌔",
	"Full Moon":       "🌕",
	"Waning Gibbous":  "🌖",
	"Third Quarter":   "🌗",
	"Waning Crescent": "🌘",
}

// conditionCategories maps keywords of the observation description to a weather category.
// The first matching rule wins, so more severe conditions come first.
var conditionCategories = []struct {
	category string
	keywords []string
}{
	{"thunderstorm", []string{"雷", "thunder"}},
	{"snow", []string{"雪", "冰", "snow", "sleet", "hail"}},
	{"rain", []string{"雨", "rain", "drizzle", "shower"}},
	{"fog", []string{"霧", "霾", "fog", "mist", "haze"}},
	{"overcast", []string{"陰", "overcast"}},
	{"cloudy", []string{"雲", "cloud"}},
	{"clear", []string{"晴", "clear", "sunny", "fair"}},
}

// conditionIcons maps weather categories to a glyph for day (true) and night (false)
var conditionIcons = map[string]map[bool]string{
	"clear": {
		true:  "☀️",
		false: "🌙",
	},
	"cloudy": {
		true:  "⛅",
		false: "☁️",
	},
	"overcast": {
		true:  "☁️",
		false: "☁️",
	},
	"fog": {
		true:  "🌫️",
		false: "🌫️",
	},
	"rain": {
		true:  "🌦️",
		false: "🌧️",
	},
	"snow": {
		true:  "🌨️",
		false: "🌨️",
	},
	"thunderstorm": {
		true:  "⛈️",
		false: "⛈️",
	},
}

var i18nVars = map[string]localize.MsgID{
	"temp":            "Temperature",
	"windspeed":       "Wind speed",
	"rain":            "Rain possibility",
	"observed":        "Observed",
	"updatefailed":    "Last update failed",
	"loading":         "Loading",
	"location":        "Location",
	"condition":       "Condition",
	"sunrise":         "Sunrise",
	"sunset":          "Sunset",
	"moonphase":       "Moonphase",
	"new moon":        "New moon",
	"waxing crescent": "Waxing crescent",
	"first quarter":   "First quarter",
	"waxing gibbous":  "Waxing gibbous",
	"full moon":       "Full moon",
	"waning gibbous":  "Waning gibbous",
	"third quarter":   "Third quarter",
	"waning crescent": "Waning crescent",
}
