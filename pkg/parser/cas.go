package parser

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/annoflow/annoflow/internal/model"
)

const layerDefinitionType = "de.tudarmstadt.ukp.clarin.webanno.api.type.LayerDefinition"

// bookkeepingTypes are structural entries of the CAS format itself,
// never user annotations.
var bookkeepingTypes = map[string]struct{}{
	layerDefinitionType: {},
	"de.tudarmstadt.ukp.clarin.webanno.api.type.FeatureDefinition": {},
	"uima.tcas.DocumentAnnotation":                                 {},
}

// positional feature names carry offsets, not annotation content.
var skipFeatures = map[string]struct{}{
	"begin":   {},
	"end":     {},
	"sofa":    {},
	"literal": {},
}

// casDocument mirrors the UIMA JSON CAS layout: a flat list of feature
// structures, each tagged with its fully-qualified type name.
type casDocument struct {
	FeatureStructures []map[string]json.RawMessage `json:"%FEATURE_STRUCTURES"`
}

// DecodeCAS reads one CAS JSON document and tallies annotations per
// fully-qualified type name, counting feature value occurrences along
// the way. The second return value maps type names to display names
// collected from the document's layer definitions.
func DecodeCAS(r io.Reader) (model.CasStats, map[string]string, error) {
	var doc casDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, nil, fmt.Errorf("decoding CAS: %w", err)
	}

	stats := make(model.CasStats)
	typeNames := make(map[string]string)

	for _, fs := range doc.FeatureStructures {
		typeName := rawString(fs["%TYPE"])
		if typeName == "" {
			continue
		}

		if typeName == layerDefinitionType {
			name := rawString(fs["name"])
			uiName := rawString(fs["uiName"])
			if name != "" && uiName != "" {
				typeNames[name] = uiName
			}
			continue
		}
		if _, ok := bookkeepingTypes[typeName]; ok {
			continue
		}

		entry, ok := stats[typeName]
		if !ok {
			entry = &model.TypeStat{Features: make(map[string]int)}
			stats[typeName] = entry
		}
		entry.Total++

		for key, raw := range fs {
			if strings.HasPrefix(key, "%") || strings.HasPrefix(key, "@") {
				continue
			}
			if _, skip := skipFeatures[key]; skip {
				continue
			}
			value, ok := scalarValue(raw)
			if !ok {
				continue
			}
			entry.Features[value]++
		}
	}

	return stats, typeNames, nil
}

// rawString decodes a raw JSON value expected to be a string.
func rawString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// scalarValue renders a JSON scalar as its count key. Nested values
// and nulls do not count as feature values.
func scalarValue(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	switch raw[0] {
	case '"':
		s := rawString(raw)
		if s == "" {
			return "", false
		}
		return s, true
	case 't', 'f':
		return string(raw), true
	case '{', '[', 'n':
		return "", false
	default:
		// Numeric. Integral values render without a fraction.
		f, err := strconv.ParseFloat(string(raw), 64)
		if err != nil {
			return "", false
		}
		if f == float64(int64(f)) {
			return strconv.FormatInt(int64(f), 10), true
		}
		return strconv.FormatFloat(f, 'g', -1, 64), true
	}
}
