// Package store resolves store-level configuration into the active locale
// set. Schema definition and document synthesis both go through ActiveLocales
// so the per-locale fields they agree on cannot drift.
package store

import (
	"strings"

	"github.com/softmaker-io/spree-searchkick/internal/domain"
)

// ActiveLocales returns the ordered, deduplicated locale set for the store:
// the supported locales in their configured order, with the default locale
// appended when not already listed. Pure function of the store configuration.
func ActiveLocales(cfg domain.StoreConfig) []string {
	seen := make(map[string]struct{}, len(cfg.SupportedLocales)+1)
	locales := make([]string, 0, len(cfg.SupportedLocales)+1)

	add := func(locale string) {
		locale = strings.TrimSpace(locale)
		if locale == "" {
			return
		}
		if _, ok := seen[locale]; ok {
			return
		}
		seen[locale] = struct{}{}
		locales = append(locales, locale)
	}

	for _, locale := range cfg.SupportedLocales {
		add(locale)
	}
	add(cfg.DefaultLocale)

	return locales
}

// SameLocales reports whether two locale sets are identical in content and
// order. Used to detect schema/synthesis divergence.
func SameLocales(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ParseSupportedLocales splits a comma-separated supported-locales column
// into its entries, trimming whitespace and dropping empties.
func ParseSupportedLocales(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	locales := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			locales = append(locales, p)
		}
	}
	return locales
}
