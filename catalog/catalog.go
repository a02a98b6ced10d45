// Package catalog holds the per-model economics configuration: which cars to
// hunt for, the price ceiling to pay, the expected markup at the destination
// market and the minimum profit worth the trip.
package catalog

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"car-arbitrage/models"
)

// Catalog maps a stable model key to its rule.
type Catalog map[string]models.ModelRule

// Load reads a YAML rule file so the target set can be changed without a
// rebuild. The file maps model keys to rule fields:
//
//	bmw_e46_330:
//	  search_terms: ["BMW 330i", "BMW 330ci"]
//	  max_price: 10000
//	  markup: 1000
//	  min_profit: 200
func Load(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %q: %w", path, err)
	}

	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("catalog: parse %q: %w", path, err)
	}

	for key, rule := range c {
		rule.Key = key
		c[key] = rule
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the whole catalog and fails fast on the first bad rule.
// An empty catalog is fatal: there is nothing to evaluate against.
func (c Catalog) Validate() error {
	if len(c) == 0 {
		return fmt.Errorf("catalog: no model rules configured")
	}
	for _, key := range c.Keys() {
		rule := c[key]
		if len(rule.SearchTerms) == 0 {
			return fmt.Errorf("catalog: model %q has no search terms", key)
		}
		if rule.MaxPrice <= 0 {
			return fmt.Errorf("catalog: model %q has non-positive price ceiling %.0f", key, rule.MaxPrice)
		}
	}
	return nil
}

// Keys returns the model keys in sorted order for deterministic iteration.
func (c Catalog) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Rule looks up the rule for a model key.
func (c Catalog) Rule(key string) (models.ModelRule, bool) {
	rule, ok := c[key]
	return rule, ok
}
