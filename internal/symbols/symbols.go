package symbols

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Symbol is a ticker with its display name.
type Symbol struct {
	Ticker string `yaml:"ticker" json:"ticker"`
	Name   string `yaml:"name" json:"name"`
}

// Default is the watch list used when no symbols file is configured.
var Default = []Symbol{
	{Ticker: "IDEA", Name: "Vodafone Idea Limited"},
	{Ticker: "ADANIPORTS", Name: "Adani Ports and SEZ"},
	{Ticker: "RELIANCE", Name: "Reliance Industries"},
	{Ticker: "BAJAJ-AUTO", Name: "Bajaj Auto Limited"},
}

// Load reads an ordered symbol list from a YAML file. Two shapes are accepted:
//
//	symbols:
//	  - ticker: RELIANCE
//	    name: Reliance Industries
//
// or a mapping of ticker to name, whose document order is kept:
//
//	RELIANCE: Reliance Industries
//	IDEA: Vodafone Idea Limited
func Load(path string) ([]Symbol, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read symbols: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML bytes in either shape accepted by Load.
func Parse(b []byte) ([]Symbol, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse symbols: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, errors.New("parse symbols: empty document")
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parse symbols: line %d: expected a mapping", root.Line)
	}

	if len(root.Content) == 2 && root.Content[0].Value == "symbols" && root.Content[1].Kind == yaml.SequenceNode {
		var list struct {
			Symbols []Symbol `yaml:"symbols"`
		}
		if err := root.Decode(&list); err != nil {
			return nil, fmt.Errorf("parse symbols: %w", err)
		}
		return normalize(list.Symbols)
	}

	out := make([]Symbol, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		out = append(out, Symbol{Ticker: root.Content[i].Value, Name: root.Content[i+1].Value})
	}
	return normalize(out)
}

// FromCSV builds a list from comma-separated tickers; names default to the ticker.
func FromCSV(s string) []Symbol {
	parts := strings.Split(s, ",")
	out := make([]Symbol, 0, len(parts))
	for _, p := range parts {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p != "" {
			out = append(out, Symbol{Ticker: p, Name: p})
		}
	}
	return out
}

// normalize trims and upper-cases tickers and rejects blanks and duplicates.
func normalize(in []Symbol) ([]Symbol, error) {
	seen := make(map[string]struct{}, len(in))
	out := make([]Symbol, 0, len(in))
	for i, s := range in {
		s.Ticker = strings.ToUpper(strings.TrimSpace(s.Ticker))
		s.Name = strings.TrimSpace(s.Name)
		if s.Ticker == "" {
			return nil, fmt.Errorf("symbol %d: empty ticker", i+1)
		}
		if _, dup := seen[s.Ticker]; dup {
			return nil, fmt.Errorf("symbol %d: duplicate ticker %s", i+1, s.Ticker)
		}
		seen[s.Ticker] = struct{}{}
		if s.Name == "" {
			s.Name = s.Ticker
		}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil, errors.New("no symbols")
	}
	return out, nil
}
