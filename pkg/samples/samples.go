// Package samples ships the canonical diagram texts used for demos and tests.
package samples

import (
	"embed"
	"sort"
	"strings"
)

//go:embed fixtures/*.puml
var fixtures embed.FS

// Default is the key returned for unknown lookups.
const Default = "basic"

var catalog = func() map[string]string {
	entries, err := fixtures.ReadDir("fixtures")
	if err != nil {
		panic(err)
	}
	m := make(map[string]string, len(entries))
	for _, e := range entries {
		data, err := fixtures.ReadFile("fixtures/" + e.Name())
		if err != nil {
			panic(err)
		}
		m[strings.TrimSuffix(e.Name(), ".puml")] = string(data)
	}
	return m
}()

// Names lists the sample keys in alphabetical order.
func Names() []string {
	out := make([]string, 0, len(catalog))
	for k := range catalog {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Get returns the sample for key. An unknown key yields the default sample
// and false.
func Get(key string) (string, bool) {
	if s, ok := catalog[key]; ok {
		return s, true
	}
	return catalog[Default], false
}
