package synth

import (
	"log/slog"
	"strings"

	"github.com/softmaker-io/spree-searchkick/internal/domain"
)

// expandOptionTypes builds the option facet group from the filterable option
// types of the product: paired option_type_ids/option_type_names, the deduped
// option_value_ids used by its variants, and one dynamically named field per
// type (lower-cased type name) listing the value names in use.
func expandOptionTypes(graph *domain.ProductGraph, log *slog.Logger) map[string]any {
	fields := make(map[string]any)

	valueByID := make(map[string]domain.OptionValue, len(graph.OptionValues))
	for _, ov := range graph.OptionValues {
		valueByID[ov.ID] = ov
	}

	// Value ids actually used by variants, in variant order, deduped.
	usedIDs := make([]string, 0, len(graph.OptionValues))
	seenID := make(map[string]bool)
	for _, v := range graph.Variants {
		for _, id := range v.OptionValueIDs {
			if !seenID[id] {
				seenID[id] = true
				usedIDs = append(usedIDs, id)
			}
		}
	}

	typeIDs := make([]string, 0, len(graph.OptionTypes))
	typeNames := make([]string, 0, len(graph.OptionTypes))
	valueIDs := make([]string, 0, len(usedIDs))

	for _, ot := range graph.OptionTypes {
		if !ot.Filterable {
			continue
		}
		typeIDs = append(typeIDs, ot.ID)
		typeNames = append(typeNames, ot.Name)

		names := make([]string, 0, 4)
		seenName := make(map[string]bool)
		for _, id := range usedIDs {
			ov, ok := valueByID[id]
			if !ok || ov.OptionTypeID != ot.ID {
				continue
			}
			valueIDs = append(valueIDs, ov.ID)
			name := strings.ToLower(strings.TrimSpace(ov.Name))
			if name == "" || seenName[name] {
				continue
			}
			seenName[name] = true
			names = append(names, name)
		}
		if len(names) > 0 {
			setDynamic(fields, strings.ToLower(ot.Name), names, log)
		}
	}

	fields["option_type_ids"] = typeIDs
	fields["option_type_names"] = typeNames
	fields["option_value_ids"] = valueIDs
	return fields
}

// expandProperties builds the property facet group from the filterable
// properties of the product: paired property_ids/property_names, the nested
// properties entries keeping the {id, name, value} triple together, and one
// dynamically named field (lower-cased property name) per non-empty value.
func expandProperties(graph *domain.ProductGraph, log *slog.Logger) map[string]any {
	fields := make(map[string]any)

	valueByProperty := make(map[string]string, len(graph.PropertyValues))
	hasValue := make(map[string]bool, len(graph.PropertyValues))
	for _, pv := range graph.PropertyValues {
		if _, ok := valueByProperty[pv.PropertyID]; !ok {
			valueByProperty[pv.PropertyID] = pv.Value
			hasValue[pv.PropertyID] = true
		}
	}

	ids := make([]string, 0, len(graph.Properties))
	names := make([]string, 0, len(graph.Properties))
	entries := make([]domain.PropertyEntry, 0, len(graph.Properties))

	for _, p := range graph.Properties {
		if !p.Filterable {
			continue
		}
		ids = append(ids, p.ID)
		names = append(names, p.Name)

		entry := domain.PropertyEntry{ID: p.ID, Name: p.Name}
		if hasValue[p.ID] {
			value := valueByProperty[p.ID]
			entry.Value = &value
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				setDynamic(fields, strings.ToLower(p.Name), strings.ToLower(trimmed), log)
			}
		}
		entries = append(entries, entry)
	}

	fields["property_ids"] = ids
	fields["property_names"] = names
	fields["properties"] = entries
	return fields
}

// setDynamic writes a generated facet field. Distinct source names can
// collapse to the same lower-cased key ("Color" vs "color"); the later write
// wins and the collision is logged so catalog data can be cleaned up.
func setDynamic(fields map[string]any, key string, value any, log *slog.Logger) {
	if _, exists := fields[key]; exists && log != nil {
		log.Warn("dynamic facet field collision, keeping later value",
			slog.String("field", key))
	}
	fields[key] = value
}
