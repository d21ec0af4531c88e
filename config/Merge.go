package config

// Merge combines sources in order. Later sources override earlier ones key by key,
// nested maps are merged recursively, and merging nothing yields an empty config.
func Merge(sources ...*Config) *Config {
	merged := map[string]any{}
	for _, source := range sources {
		if source == nil {
			continue
		}
		mergeInto(merged, source.values)
	}
	return &Config{values: merged}
}

func mergeInto(target, overlay map[string]any) {
	for key, value := range overlay {
		overlayMap, overlayIsMap := value.(map[string]any)
		existingMap, existingIsMap := target[key].(map[string]any)
		if overlayIsMap && existingIsMap {
			combined := normalizeMap(existingMap)
			mergeInto(combined, overlayMap)
			target[key] = combined
			continue
		}
		target[key] = normalizeValue(value)
	}
}
