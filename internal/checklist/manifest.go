package checklist

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"
)

// ManifestFile is the index of available checklists under the root.
const ManifestFile = "index.json"

// ManifestEntry points at one checklist file.
type ManifestEntry struct {
	Name string `json:"name,omitempty"`
	File string `json:"file"`
}

// Label returns the display name, falling back to the file.
func (e ManifestEntry) Label() string {
	if e.Name != "" {
		return e.Name
	}
	return e.File
}

type manifestEnvelope struct {
	Lists      []ManifestEntry `json:"lists"`
	Checklists []ManifestEntry `json:"checklists"`
}

// ParseManifest accepts {"lists": [...]}, {"checklists": [...]} or a bare array.
func ParseManifest(data []byte) ([]ManifestEntry, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var entries []ManifestEntry
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("checklist: decode manifest: %w", err)
		}
		return entries, nil
	}

	var envelope manifestEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("checklist: decode manifest: %w", err)
	}
	if len(envelope.Lists) > 0 {
		return envelope.Lists, nil
	}
	if len(envelope.Checklists) > 0 {
		return envelope.Checklists, nil
	}
	return []ManifestEntry{}, nil
}

// ResolveFile maps a manifest file reference to a slash separated path
// relative to the checklist root. References that already carry the root
// directory, or a leading slash, are trimmed to the same form.
func ResolveFile(root, file string) string {
	clean := strings.TrimPrefix(path.Clean("/"+strings.TrimSpace(file)), "/")
	root = strings.Trim(path.Clean("/"+root), "/")
	if root != "" && strings.HasPrefix(clean, root+"/") {
		return strings.TrimPrefix(clean, root+"/")
	}
	return clean
}
