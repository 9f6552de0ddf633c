// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package presenter

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/nathan-osman/go-sunrise"
	"github.com/vorlif/humanize"
	"github.com/vorlif/spreak"
	"github.com/wneessen/go-moonphase"
	"golang.org/x/text/message"

	"github.com/wneessen/weathercard/internal/config"
	"github.com/wneessen/weathercard/internal/state"
	"github.com/wneessen/weathercard/internal/vartype"
	"github.com/wneessen/weathercard/internal/weather"
)

const (
	OutputClass  = "weathercard"
	LoadingClass = "loading"
	ErrorClass   = "error"

	LoadingIcon = "⟳"
)

// TemplateContext is the data that the text and tooltip templates are executed with.
type TemplateContext struct {
	LocationName    string
	StationID       string
	Description     vartype.VarString
	Temperature     vartype.VarFloat64
	WindSpeed       vartype.VarFloat64
	RainPossibility vartype.VarFloat64
	ObservationTime string
	ObservedAt      time.Time
	UpdateTime      time.Time

	Category      string
	ConditionIcon string
	IsDaytime     bool
	SunriseTime   time.Time
	SunsetTime    time.Time
	MoonPhase     string
	MoonPhaseIcon string

	IsLoading   bool
	LoadingIcon string
	HasError    bool
	Error       string

	Theme string
}

type Presenter struct {
	TextTemplate    *template.Template
	TooltipTemplate *template.Template

	localizer *spreak.Localizer
	humanizer *humanize.Humanizer
	printer   *message.Printer
}

// New parses the configured templates and renders them once with an empty reading, so that
// template errors surface at startup.
func New(conf *config.Config, lang *spreak.Localizer) (*Presenter, error) {
	if conf == nil {
		return nil, fmt.Errorf("config is required")
	}
	if lang == nil {
		return nil, fmt.Errorf("localizer is required")
	}

	presenter := &Presenter{
		localizer: lang,
		humanizer: humanize.MustNew().CreateHumanizer(lang.Language()),
		printer:   message.NewPrinter(lang.Language()),
	}

	var err error
	presenter.TextTemplate, err = template.New("text").Funcs(presenter.templateFuncMap()).Parse(conf.Templates.Text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse text template: %w", err)
	}
	presenter.TooltipTemplate, err = template.New("tooltip").Funcs(presenter.templateFuncMap()).
		Parse(conf.Templates.Tooltip)
	if err != nil {
		return nil, fmt.Errorf("failed to parse tooltip template: %w", err)
	}

	probe := state.Snapshot{Reading: *weather.NewReading(conf.Weather.LocationName)}
	if _, err = presenter.Render(presenter.BuildContext(probe, conf.Theme, time.Now())); err != nil {
		return nil, err
	}

	return presenter, nil
}

// BuildContext turns a state snapshot and the active theme into a TemplateContext. The sun and
// moon data refer to the observation time, or to now if the reading has none.
func (p *Presenter) BuildContext(snap state.Snapshot, theme string, now time.Time) TemplateContext {
	reading := snap.Reading
	ref := now
	if !reading.ObservedAt.IsZero() {
		ref = reading.ObservedAt
	}

	tplCtx := TemplateContext{
		LocationName:    reading.LocationName,
		StationID:       reading.StationID,
		Description:     reading.Description,
		Temperature:     reading.Temperature,
		WindSpeed:       reading.WindSpeed,
		RainPossibility: reading.RainPossibility,
		ObservationTime: reading.ObservationTime,
		ObservedAt:      reading.ObservedAt,
		UpdateTime:      snap.UpdatedAt,
		IsLoading:       snap.IsLoading,
		LoadingIcon:     LoadingIcon,
		HasError:        snap.HasError(),
		Error:           errorSummary(snap.LastError),
		Theme:           theme,
	}
	if tplCtx.ObservationTime == "" {
		tplCtx.ObservationTime = vartype.Unset
	}

	tplCtx.IsDaytime = ref.Hour() >= 6 && ref.Hour() < 18
	if reading.HasCoordinates() {
		rise, set := sunrise.SunriseSunset(reading.Latitude, reading.Longitude, ref.Year(), ref.Month(), ref.Day())
		if !rise.IsZero() && !set.IsZero() {
			tplCtx.SunriseTime = rise.In(ref.Location())
			tplCtx.SunsetTime = set.In(ref.Location())
			tplCtx.IsDaytime = ref.After(rise) && ref.Before(set)
		}
	}

	tplCtx.Category = weatherCategory(reading.Description.ValueOr(""))
	tplCtx.ConditionIcon = conditionIcon(tplCtx.Category, tplCtx.IsDaytime)

	phase := moonphase.New(ref).PhaseName()
	tplCtx.MoonPhase = p.loc(phase)
	tplCtx.MoonPhaseIcon = MoonPhaseIcon[phase]

	return tplCtx
}

// Render executes the text and tooltip templates.
func (p *Presenter) Render(tplCtx TemplateContext) (map[string]string, error) {
	output := make(map[string]string, 2)
	templates := []struct {
		name string
		tpl  *template.Template
	}{
		{"text", p.TextTemplate},
		{"tooltip", p.TooltipTemplate},
	}
	for _, t := range templates {
		buf := bytes.NewBuffer(nil)
		if err := t.tpl.Execute(buf, tplCtx); err != nil {
			return nil, fmt.Errorf("failed to render %s template: %w", t.name, err)
		}
		output[t.name] = buf.String()
	}
	return output, nil
}

// Classes returns the CSS classes of the card: the module class, the theme and the
// loading and error markers if they apply.
func (p *Presenter) Classes(tplCtx TemplateContext) []string {
	classes := []string{OutputClass}
	if tplCtx.Theme != "" {
		classes = append(classes, tplCtx.Theme)
	}
	if tplCtx.IsLoading {
		classes = append(classes, LoadingClass)
	}
	if tplCtx.HasError {
		classes = append(classes, ErrorClass)
	}
	return classes
}

// errorSummary shortens fetch errors to their kind, the full error ends up in the log.
func errorSummary(err error) string {
	if err == nil {
		return ""
	}
	var fetchErr *weather.FetchError
	if errors.As(err, &fetchErr) && fetchErr.Kind != nil {
		if errors.Is(fetchErr.Kind, weather.ErrHTTPStatus) {
			return fmt.Sprintf("%s %d", fetchErr.Kind, fetchErr.StatusCode)
		}
		return fetchErr.Kind.Error()
	}
	return err.Error()
}

func weatherCategory(description string) string {
	desc := strings.ToLower(description)
	for _, rule := range conditionCategories {
		for _, keyword := range rule.keywords {
			if strings.Contains(desc, keyword) {
				return rule.category
			}
		}
	}
	return ""
}

func conditionIcon(category string, isDay bool) string {
	icons, ok := conditionIcons[category]
	if !ok {
		return unknownConditionIcon
	}
	return icons[isDay]
}
