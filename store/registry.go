// Package store holds the registry of chunk store types
// that can be created from configuration.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/bobg/chunksync"
)

// Factory creates a store from its configuration.
type Factory func(context.Context, map[string]interface{}) (chunksync.Store, error)

var registry = make(map[string]Factory)

// Register makes a store type available to Create under the given key.
// It is meant to be called from the init function of a store implementation.
func Register(key string, f Factory) {
	registry[key] = f
}

// Create creates a store of the type registered under key.
func Create(ctx context.Context, key string, conf map[string]interface{}) (chunksync.Store, error) {
	f, ok := registry[key]
	if !ok {
		return nil, fmt.Errorf("unknown store type %q, want one of %v", key, Types())
	}
	return f(ctx, conf)
}

// FromConfig creates a store from a configuration map
// whose "type" entry names the registered store type.
func FromConfig(ctx context.Context, conf map[string]interface{}) (chunksync.Store, error) {
	typ, ok := conf["type"].(string)
	if !ok {
		return nil, fmt.Errorf(`config missing "type" parameter`)
	}
	return Create(ctx, typ, conf)
}

// Types lists the registered store types in order.
func Types() []string {
	result := make([]string, 0, len(registry))
	for k := range registry {
		result = append(result, k)
	}
	sort.Strings(result)
	return result
}

// IntParam gets an integer parameter from a configuration map.
// The value may be a Go int,
// a float64 as produced by encoding/json,
// or a json.Number as produced by a decoder with UseNumber.
func IntParam(conf map[string]interface{}, name string) (int, error) {
	switch v := conf[name].(type) {
	case int:
		return v, nil
	case float64:
		return int(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("parsing %q parameter: %w", name, err)
		}
		return int(n), nil
	case nil:
		return 0, fmt.Errorf("missing %q parameter", name)
	default:
		return 0, fmt.Errorf("%q parameter has type %T, want a number", name, v)
	}
}
