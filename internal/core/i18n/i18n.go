// Package i18n holds the read-only phrase catalogs used to render recurrence
// descriptions and occurrence dates.
package i18n

import (
	"embed"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Locale identifies a supported catalog.
type Locale string

const (
	English    Locale = "en"
	French     Locale = "fr"
	Vietnamese Locale = "vi"

	// DefaultLocale is used when a caller asks for a locale with no catalog.
	DefaultLocale = English
)

// SupportedLocales lists every locale with an embedded catalog.
var SupportedLocales = []Locale{English, French, Vietnamese}

//go:embed locales/*.yaml
var catalogFiles embed.FS

// Plural is a phrase with a singular and a counted form. {n} is replaced by the count.
type Plural struct {
	One   string `yaml:"one"`
	Other string `yaml:"other"`
}

// Format picks the form matching n.
func (p Plural) Format(n int) string {
	if n == 1 {
		return p.One
	}
	return strings.ReplaceAll(p.Other, "{n}", strconv.Itoa(n))
}

// Catalog is one locale's phrase table.
type Catalog struct {
	Locale         Locale            `yaml:"locale"`
	Weekdays       []string          `yaml:"weekdays"`
	WeekdaysShort  []string          `yaml:"weekdays_short"`
	Months         []string          `yaml:"months"`
	MonthsShort    []string          `yaml:"months_short"`
	Frequency      map[string]Plural `yaml:"frequency"`
	EveryWeekday   string            `yaml:"every_weekday"`
	OnWeekdays     string            `yaml:"on_weekdays"`
	OnNthWeekday   string            `yaml:"on_nth_weekday"`
	OnNthWeekdayOf string            `yaml:"on_nth_weekday_of"`
	InMonth        string            `yaml:"in_month"`
	OnMonthDay     string            `yaml:"on_month_day"`
	OnLastDay      string            `yaml:"on_last_day"`
	OnDayFromEnd   string            `yaml:"on_day_from_end"`
	Ordinals       map[string]string `yaml:"ordinals"`
	ListAnd        string            `yaml:"list_and"`
	EndUntil       string            `yaml:"end_until"`
	EndCount       Plural            `yaml:"end_count"`
	DateLayout     string            `yaml:"date_layout"`
	UntilLayout    string            `yaml:"until_layout"`
	TimeSeparator  string            `yaml:"time_separator"`
	Short          map[string]string `yaml:"short"`
	Presets        map[string]string `yaml:"presets"`
}

var catalogs = mustLoadCatalogs()

func mustLoadCatalogs() map[Locale]*Catalog {
	loaded, err := loadCatalogs()
	if err != nil {
		panic(err)
	}
	return loaded
}

func loadCatalogs() (map[Locale]*Catalog, error) {
	entries, err := catalogFiles.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("read locale catalogs: %w", err)
	}

	loaded := make(map[Locale]*Catalog, len(entries))
	for _, entry := range entries {
		raw, err := catalogFiles.ReadFile(path.Join("locales", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", entry.Name(), err)
		}

		var c Catalog
		if err := yaml.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", entry.Name(), err)
		}
		if err := c.validate(); err != nil {
			return nil, fmt.Errorf("catalog %s: %w", entry.Name(), err)
		}
		loaded[c.Locale] = &c
	}

	if _, ok := loaded[DefaultLocale]; !ok {
		return nil, fmt.Errorf("default locale %q has no catalog", DefaultLocale)
	}
	return loaded, nil
}

func (c *Catalog) validate() error {
	if c.Locale == "" {
		return fmt.Errorf("locale is required")
	}
	if len(c.Weekdays) != 7 || len(c.WeekdaysShort) != 7 {
		return fmt.Errorf("weekdays must list 7 names")
	}
	if len(c.Months) != 12 || len(c.MonthsShort) != 12 {
		return fmt.Errorf("months must list 12 names")
	}
	for _, freq := range []string{"daily", "weekly", "monthly", "yearly"} {
		if _, ok := c.Frequency[freq]; !ok {
			return fmt.Errorf("frequency %q is missing", freq)
		}
	}
	if !strings.Contains(c.OnNthWeekdayOf, "{month}") || !strings.Contains(c.InMonth, "{month}") {
		return fmt.Errorf("on_nth_weekday_of and in_month must contain {month}")
	}
	return nil
}

// ParseLocale maps a user supplied tag ("fr", "fr-CA", "VI") onto a supported
// locale, falling back to DefaultLocale.
func ParseLocale(tag string) Locale {
	if l, ok := LookupLocale(tag); ok {
		return l
	}
	return DefaultLocale
}

// LookupLocale is ParseLocale without the fallback.
func LookupLocale(tag string) (Locale, bool) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if i := strings.IndexAny(tag, "-_"); i >= 0 {
		tag = tag[:i]
	}
	if _, ok := catalogs[Locale(tag)]; ok {
		return Locale(tag), true
	}
	return "", false
}

// Messages returns the catalog for locale, or the default catalog when the
// locale is unknown.
func Messages(locale Locale) *Catalog {
	if c, ok := catalogs[locale]; ok {
		return c
	}
	return catalogs[DefaultLocale]
}

// Weekday returns the full weekday name.
func (c *Catalog) Weekday(d time.Weekday) string {
	return c.Weekdays[int(d)%7]
}

// Month returns the full month name.
func (c *Catalog) Month(m time.Month) string {
	return c.Months[(int(m)+11)%12]
}

// Ordinal names an nth-weekday position (1..4, or -1 for last).
func (c *Catalog) Ordinal(n int) string {
	key := map[int]string{1: "first", 2: "second", 3: "third", 4: "fourth", -1: "last"}[n]
	if key == "" {
		return strconv.Itoa(n)
	}
	return c.Ordinals[key]
}

// JoinList joins items as "a, b and c".
func (c *Catalog) JoinList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + " " + c.ListAnd + " " + items[len(items)-1]
}

// FormatDate renders a calendar date with the catalog's date layout.
func (c *Catalog) FormatDate(year int, month time.Month, day int, weekday time.Weekday) string {
	return c.render(c.DateLayout, year, month, day, weekday)
}

// FormatUntil renders an end date, without weekday.
func (c *Catalog) FormatUntil(year int, month time.Month, day int, weekday time.Weekday) string {
	return c.render(c.UntilLayout, year, month, day, weekday)
}

// ShortLabel renders a short-label token. Tokens beginning with "every_" take a count.
func (c *Catalog) ShortLabel(token string, n int) string {
	label, ok := c.Short[token]
	if !ok {
		label = catalogs[DefaultLocale].Short[token]
	}
	return strings.ReplaceAll(label, "{n}", strconv.Itoa(n))
}

// PresetLabel returns the display label for a preset key.
func (c *Catalog) PresetLabel(key string) string {
	if label, ok := c.Presets[key]; ok {
		return label
	}
	return catalogs[DefaultLocale].Presets[key]
}

func (c *Catalog) render(layout string, year int, month time.Month, day int, weekday time.Weekday) string {
	r := strings.NewReplacer(
		"{weekday_short}", c.WeekdaysShort[int(weekday)%7],
		"{weekday}", c.Weekdays[int(weekday)%7],
		"{month_short}", c.MonthsShort[int(month)-1],
		"{month}", c.Months[int(month)-1],
		"{dd}", fmt.Sprintf("%02d", day),
		"{mm}", fmt.Sprintf("%02d", int(month)),
		"{day}", strconv.Itoa(day),
		"{year}", strconv.Itoa(year),
	)
	return r.Replace(layout)
}
