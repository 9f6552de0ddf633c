// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package i18n

import (
	"testing"

	"golang.org/x/text/language"
)

func TestNew(t *testing.T) {
	t.Run("new i18n provider with empty locale string succeeds", func(t *testing.T) {
		provider, err := New("")
		if err != nil {
			t.Fatalf("failed to create i18n provider: %s", err)
		}
		if provider == nil {
			t.Fatal("expected i18n provider to be non-nil")
		}
	})
	t.Run("labels are translated", func(t *testing.T) {
		tests := []struct {
			locale string
			want   string
		}{
			{"de", "Temperatur"},
			{"de-DE", "Temperatur"},
			{"en", "Temperature"},
		}
		for _, tc := range tests {
			t.Run(tc.locale, func(t *testing.T) {
				provider, err := New(tc.locale)
				if err != nil {
					t.Fatalf("failed to create i18n provider: %s", err)
				}
				if got := provider.Get("Temperature"); got != tc.want {
					t.Errorf("expected translation to be %q, got %q", tc.want, got)
				}
			})
		}
	})
	t.Run("unknown labels are returned unchanged", func(t *testing.T) {
		provider, err := New("de")
		if err != nil {
			t.Fatalf("failed to create i18n provider: %s", err)
		}
		if got := provider.Get("Barometer"); got != "Barometer" {
			t.Errorf("expected untranslated label, got %q", got)
		}
	})
}

func TestTag(t *testing.T) {
	tests := []struct {
		name string
		loc  string
		want language.Tag
	}{
		{"german", "de", language.German},
		{"traditional chinese", "zh-TW", language.MustParse("zh-TW")},
		{"invalid falls back to english", "!!", language.English},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Tag(tc.loc); got != tc.want {
				t.Errorf("expected tag to be %s, got %s", tc.want, got)
			}
		})
	}
	t.Run("empty locale is detected", func(t *testing.T) {
		if got := Tag(""); got == language.Und {
			t.Error("expected a detected or fallback tag")
		}
	})
}
