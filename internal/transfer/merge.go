// Copyright (c) 2026 Stanza CMS Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

// mergeShallow merges incoming into existing one level deep: an
// incoming key with a non-nil value wins, an incoming nil never
// overwrites. Neither input is mutated.
func mergeShallow(existing, incoming map[string]any) map[string]any {
	merged := make(map[string]any, len(existing)+len(incoming))
	for k, v := range existing {
		merged[k] = v
	}
	for k, v := range incoming {
		if v == nil {
			continue
		}
		merged[k] = v
	}
	return merged
}

// mergeDeep merges incoming into existing recursively: nested plain
// objects merge key by key, any other value type (including arrays)
// is replaced wholesale by the incoming value. Neither input is
// mutated.
func mergeDeep(existing, incoming map[string]any) map[string]any {
	merged := make(map[string]any, len(existing)+len(incoming))
	for k, v := range existing {
		merged[k] = v
	}
	for k, v := range incoming {
		incomingObj, incomingIsObj := v.(map[string]any)
		existingObj, existingIsObj := merged[k].(map[string]any)
		if incomingIsObj && existingIsObj {
			merged[k] = mergeDeep(existingObj, incomingObj)
			continue
		}
		merged[k] = v
	}
	return merged
}
