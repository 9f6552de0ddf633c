// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package presenter

import (
	"strings"
	"text/template"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/vorlif/humanize"

	"github.com/wneessen/weathercard/internal/vartype"
)

func (p *Presenter) templateFuncMap() template.FuncMap {
	return template.FuncMap{
		"num":           p.num,
		"round":         p.round,
		"percent":       p.percent,
		"timeFormat":    p.timeFormat,
		"localizedTime": p.localizedTime,
		"naturalTime":   p.naturalTime,
		"loc":           p.loc,
		"lc":            strings.ToLower,
		"uc":            strings.ToUpper,
		"pad":           p.pad,
	}
}

func (p *Presenter) loc(val string) string {
	val = strings.ToLower(val)
	if raw, ok := i18nVars[val]; ok {
		return p.localizer.Get(raw)
	}
	return val
}

// num formats a measured value with one decimal using the number format of the locale.
func (p *Presenter) num(val vartype.VarFloat64) string {
	if !val.IsSet() {
		return vartype.Unset
	}
	return p.printer.Sprintf("%.1f", val.Value())
}

func (p *Presenter) round(val vartype.VarFloat64) string {
	if !val.IsSet() {
		return vartype.Unset
	}
	return p.printer.Sprintf("%.0f", val.Value())
}

func (p *Presenter) percent(val vartype.VarFloat64) string {
	if !val.IsSet() {
		return vartype.Unset
	}
	return p.round(val) + "%"
}

func (p *Presenter) localizedTime(val time.Time) string {
	if val.IsZero() {
		return vartype.Unset
	}
	return p.humanizer.FormatTime(val, humanize.TimeFormat)
}

func (p *Presenter) naturalTime(val time.Time) string {
	if val.IsZero() {
		return vartype.Unset
	}
	return p.humanizer.NaturalTime(val)
}

func (p *Presenter) timeFormat(val time.Time, fmt string) string {
	if val.IsZero() {
		return vartype.Unset
	}
	return val.Format(fmt)
}

// pad fills the string up to the given terminal cell width. Glyphs and CJK characters take
// two cells.
func (p *Presenter) pad(val any, width int) string {
	var str string
	switch v := val.(type) {
	case string:
		str = v
	case interface{ String() string }:
		str = v.String()
	}
	return runewidth.FillRight(str, width)
}
