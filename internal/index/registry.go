package index

import (
	"reflect"
	"sync"

	apperrors "github.com/softmaker-io/spree-searchkick/pkg/errors"
)

// Registry holds the process-wide index configuration snapshot. The external
// index cannot be redefined in place once created, so every schema or
// settings change is staged here as a patch, deep-merged into the held
// snapshot, and pushed through the engine's reprovisioning path by the
// caller. The registry itself only guarantees correct, atomic merges.
type Registry struct {
	mu      sync.RWMutex
	current map[string]any
}

// NewRegistry creates a registry initialized with the baseline configuration.
func NewRegistry(base map[string]any) *Registry {
	return &Registry{current: deepCopyMap(base)}
}

// Current returns a deep copy of the held configuration snapshot.
func (r *Registry) Current() map[string]any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return deepCopyMap(r.current)
}

// ApplyPatch deep-merges the patch into the held configuration and returns
// the merged result. The apply is all-or-nothing: the held snapshot is only
// replaced once the whole merge has succeeded, and concurrent readers always
// observe either the previous or the new snapshot, never an intermediate.
// Applying the same patch twice is a no-op.
func (r *Registry) ApplyPatch(patch map[string]any) (map[string]any, error) {
	if patch == nil {
		return nil, apperrors.InvalidInput("configuration patch must be a JSON object")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	merged := DeepMerge(r.current, patch)
	r.current = merged
	return deepCopyMap(merged), nil
}

// DeepMerge merges patch into base without mutating either argument:
// map values merge recursively, list values concatenate and deduplicate
// (order is not semantically meaningful in index configuration lists), and
// any other patch value overrides the base value.
func DeepMerge(base, patch map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(patch))
	for k, v := range base {
		out[k] = deepCopyValue(v)
	}
	for k, pv := range patch {
		out[k] = mergeValue(out[k], pv)
	}
	return out
}

func mergeValue(base, patch any) any {
	baseMap, baseIsMap := base.(map[string]any)
	patchMap, patchIsMap := patch.(map[string]any)
	if baseIsMap && patchIsMap {
		return DeepMerge(baseMap, patchMap)
	}

	baseList, baseIsList := base.([]any)
	patchList, patchIsList := patch.([]any)
	if baseIsList && patchIsList {
		return mergeLists(baseList, patchList)
	}

	return deepCopyValue(patch)
}

// mergeLists concatenates base and patch, dropping patch entries already
// present (by deep equality) so repeated applies converge.
func mergeLists(base, patch []any) []any {
	out := make([]any, 0, len(base)+len(patch))
	for _, v := range base {
		out = append(out, deepCopyValue(v))
	}
	for _, pv := range patch {
		duplicate := false
		for _, existing := range out {
			if reflect.DeepEqual(existing, pv) {
				duplicate = true
				break
			}
		}
		if !duplicate {
			out = append(out, deepCopyValue(pv))
		}
	}
	return out
}

func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		return deepCopyMap(tv)
	case []any:
		out := make([]any, len(tv))
		for i, e := range tv {
			out[i] = deepCopyValue(e)
		}
		return out
	default:
		return v
	}
}
