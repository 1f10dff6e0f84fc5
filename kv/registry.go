package kv

import (
	"context"
	"fmt"
	"sort"
)

// Factory creates a Store from a configuration map.
type Factory func(context.Context, map[string]interface{}) (Store, error)

var registry = make(map[string]Factory)

// Register makes a store type available to Create under the given key.
// Store packages call it from their init functions.
func Register(key string, f Factory) {
	registry[key] = f
}

// Create creates a Store of the type registered under key.
func Create(ctx context.Context, key string, conf map[string]interface{}) (Store, error) {
	f, ok := registry[key]
	if !ok {
		return nil, fmt.Errorf("key %s not found in registry", key)
	}
	return f(ctx, conf)
}

// Types lists the registered store types.
func Types() []string {
	var result []string
	for k := range registry {
		result = append(result, k)
	}
	sort.Strings(result)
	return result
}

// Nested creates the store described by conf[param],
// which must be a map with a "type" entry.
// It is for wrapper stores such as lru and logging.
func Nested(ctx context.Context, conf map[string]interface{}, param string) (Store, error) {
	nested, ok := conf[param].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf(`missing "%s" parameter`, param)
	}
	nestedType, ok := nested["type"].(string)
	if !ok {
		return nil, fmt.Errorf(`"%s" parameter missing "type"`, param)
	}
	return Create(ctx, nestedType, nested)
}
