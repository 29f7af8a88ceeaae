// Package config implements the layered configuration consulted when a
// parameter is absent from the command line and the environment.
// Layers are ordered: later layers shadow earlier ones key by key,
// nested mappings are merged across layers, and a scalar cuts the
// merge below it, replacing a whole subtree at once.
package config

import (
	"sort"
	"strings"
)

// Config is an ordered stack of configuration layers.
type Config struct {
	layers []map[string]any
}

// New returns a configuration over the given layers, the last one
// having the highest priority.
func New(layers ...map[string]any) *Config {
	return &Config{layers: layers}
}

// Merge appends a layer shadowing all existing ones.
func (c *Config) Merge(layer map[string]any) {
	c.layers = append(c.layers, layer)
}

// IsZero reports whether the configuration holds no layers at all.
func (c *Config) IsZero() bool {
	return c == nil || len(c.layers) == 0
}

// Has reports whether any layer holds the key.
func (c *Config) Has(key string) bool {
	if c == nil {
		return false
	}

	for _, layer := range c.layers {
		if _, ok := layer[key]; ok {
			return true
		}
	}

	return false
}

// Get resolves a top level key. Scalars resolve to the newest layer's
// value; mappings resolve to the merge of every layer's mapping down
// to the newest scalar under the same key.
func (c *Config) Get(key string) (any, bool) {
	if c == nil {
		return nil, false
	}

	var maps []map[string]any

	for i := len(c.layers) - 1; i >= 0; i-- {
		value, ok := c.layers[i][key]
		if !ok {
			continue
		}

		nested, ok := value.(map[string]any)
		if !ok {
			if maps == nil {
				return value, true
			}

			break
		}

		maps = append(maps, nested)
	}

	if maps == nil {
		return nil, false
	}

	// Collected newest first, merged oldest first.
	reverse(maps)

	return mergeMaps(maps), true
}

// Sub returns a configuration scoped to the mappings found under the
// key, preserving the layer order.
func (c *Config) Sub(key string) *Config {
	sub := New()

	if c == nil {
		return sub
	}

	for _, layer := range c.layers {
		if nested, ok := layer[key].(map[string]any); ok {
			sub.Merge(nested)
		}
	}

	return sub
}

// GetPath resolves a dotted path such as "server.port" across the
// merged layers.
func (c *Config) GetPath(path string) (any, bool) {
	if c == nil {
		return nil, false
	}

	keys := strings.Split(path, ".")

	value, ok := c.Get(keys[0])
	if !ok {
		return nil, false
	}

	for _, key := range keys[1:] {
		nested, ok := value.(map[string]any)
		if !ok {
			return nil, false
		}

		value, ok = nested[key]
		if !ok {
			return nil, false
		}
	}

	return value, true
}

// Keys lists the distinct top level keys in sorted order.
func (c *Config) Keys() []string {
	if c == nil {
		return nil
	}

	var keys []string

	seen := make(map[string]struct{})

	for _, layer := range c.layers {
		for key := range layer {
			if _, ok := seen[key]; ok {
				continue
			}

			seen[key] = struct{}{}
			keys = append(keys, key)
		}
	}

	sort.Strings(keys)

	return keys
}

// mergeMaps deep merges the mappings, later ones winning key by key.
// The result shares no containers with the inputs.
func mergeMaps(maps []map[string]any) map[string]any {
	merged := make(map[string]any)

	for _, layer := range maps {
		for key, value := range layer {
			nested, ok := value.(map[string]any)
			if !ok {
				merged[key] = value
				continue
			}

			if existing, ok := merged[key].(map[string]any); ok {
				merged[key] = mergeMaps([]map[string]any{existing, nested})
				continue
			}

			merged[key] = mergeMaps([]map[string]any{nested})
		}
	}

	return merged
}

func reverse(maps []map[string]any) {
	for i, j := 0, len(maps)-1; i < j; i, j = i+1, j-1 {
		maps[i], maps[j] = maps[j], maps[i]
	}
}
