package client

import (
	"fmt"
	"strings"
)

// ResourceType identifies a category of manageable MOLGENIS resource. Each type
// carries the backend entity identifier, the URL path segment used by the
// permission manager, and a human-readable label.
type ResourceType int

const (
	EntityType ResourceType = iota
	Theme
	Package
	Plugin
)

type resourceTypeInfo struct {
	entityID string
	path     string
	label    string
}

var resourceTypes = map[ResourceType]resourceTypeInfo{
	EntityType: {"sys_md_EntityType", "entityclass", "Entity Type"},
	Theme:      {"sys_set_StyleSheet", "stylesheet", "Stylesheet"},
	Package:    {"sys_md_Package", "package", "Package"},
	Plugin:     {"sys_Plugin", "plugin", "Plugin"},
}

// EntityID returns the backend entity identifier, e.g. sys_md_EntityType.
func (t ResourceType) EntityID() string { return resourceTypes[t].entityID }

// Path returns the URL path segment used by the permission endpoint.
func (t ResourceType) Path() string { return resourceTypes[t].path }

// Label returns the human-readable name used in messages.
func (t ResourceType) Label() string { return resourceTypes[t].label }

func (t ResourceType) String() string { return resourceTypes[t].label }

// ResourceTypeOfLabel resolves a label such as "Entity Type" or "entity type"
// back to its ResourceType.
func ResourceTypeOfLabel(label string) (ResourceType, error) {
	normalized := strings.ToLower(strings.TrimSpace(label))
	for t, info := range resourceTypes {
		if strings.ToLower(info.label) == normalized {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown resource type %q", label)
}

// PrincipalType selects between the two kinds of permission subjects.
type PrincipalType string

const (
	PrincipalUser PrincipalType = "user"
	PrincipalRole PrincipalType = "role"
)
