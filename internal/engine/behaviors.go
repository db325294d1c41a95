package engine

import (
	"fmt"
	"sort"
)

// BehaviorFactory creates a Behavior from scene-file props.
type BehaviorFactory func(props map[string]any) Behavior

var behaviorRegistry = map[string]BehaviorFactory{}

// RegisterBehavior makes a behavior available to scene files under name.
func RegisterBehavior(name string, factory BehaviorFactory) {
	if factory == nil {
		panic(fmt.Sprintf("behavior %q registered with nil factory", name))
	}
	if _, exists := behaviorRegistry[name]; exists {
		panic(fmt.Sprintf("behavior %q already registered", name))
	}
	behaviorRegistry[name] = factory
}

// CreateBehavior looks up a registered behavior by name and creates it with the given props.
func CreateBehavior(name string, props map[string]any) (Behavior, bool) {
	factory, ok := behaviorRegistry[name]
	if !ok {
		return nil, false
	}
	return factory(props), true
}

// RegisteredBehaviors returns a sorted list of all registered behavior names.
func RegisteredBehaviors() []string {
	names := make([]string, 0, len(behaviorRegistry))
	for name := range behaviorRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PropFloat reads a numeric prop decoded from JSON, falling back to def.
func PropFloat(props map[string]any, key string, def float32) float32 {
	if v, ok := props[key].(float64); ok {
		return float32(v)
	}
	return def
}

// PropString reads a string prop, falling back to def.
func PropString(props map[string]any, key string, def string) string {
	if v, ok := props[key].(string); ok {
		return v
	}
	return def
}

// PropVector reads a [x, y, z] prop decoded from JSON.
func PropVector(props map[string]any, key string) ([3]float32, bool) {
	raw, ok := props[key].([]any)
	if !ok || len(raw) != 3 {
		return [3]float32{}, false
	}
	var out [3]float32
	for i, v := range raw {
		f, ok := v.(float64)
		if !ok {
			return [3]float32{}, false
		}
		out[i] = float32(f)
	}
	return out, true
}
