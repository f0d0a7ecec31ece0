// Package history merges per-app navigation state into the shared history
// state object. Every function takes the current state as a value and
// returns a new one; inputs are never modified.
package history

import "maps"

// MicroAppStateKey is the only key of the shared state this package writes.
const MicroAppStateKey = "microAppState"

// State is the shared per-entry history state.
type State map[string]any

// SetMicroState returns raw with microAppState[appName] set to microState.
// An empty appName returns an unchanged copy of raw.
func SetMicroState(appName string, microState any, raw State) State {
	if appName == "" {
		return cloneState(raw)
	}
	states := make(map[string]any)
	if cur, ok := asMap(raw[MicroAppStateKey]); ok {
		maps.Copy(states, cur)
	}
	states[appName] = microState

	next := make(State, len(raw)+1)
	maps.Copy(next, raw)
	next[MicroAppStateKey] = states
	return next
}

// MicroState returns the state stored for appName, or nil when absent at
// any level.
func MicroState(appName string, raw State) any {
	states, ok := asMap(raw[MicroAppStateKey])
	if !ok {
		return nil
	}
	return states[appName]
}

// MicroStates returns a copy of the whole per-app mapping, nil when absent.
func MicroStates(raw State) map[string]any {
	states, ok := asMap(raw[MicroAppStateKey])
	if !ok {
		return nil
	}
	return maps.Clone(states)
}

// RemoveMicroState returns a copy of raw without appName's entry. An
// emptied microAppState is dropped. A microAppState that is not a mapping
// is left as is. An empty appName returns an unchanged copy of raw.
func RemoveMicroState(appName string, raw State) State {
	next := cloneState(raw)
	if appName == "" {
		return next
	}
	states, ok := asMap(raw[MicroAppStateKey])
	if !ok {
		return next
	}
	if _, has := states[appName]; has {
		states = maps.Clone(states)
		delete(states, appName)
	}
	if len(states) == 0 {
		delete(next, MicroAppStateKey)
		return next
	}
	next[MicroAppStateKey] = states
	return next
}

func cloneState(raw State) State {
	if raw == nil {
		return State{}
	}
	return maps.Clone(raw)
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, m != nil
	case State:
		return map[string]any(m), m != nil
	default:
		return nil, false
	}
}
