package parse

import "strings"

// EquipmentTags splits a comma-joined equipment string into trimmed tags.
// Order and duplicates are kept; blank entries are dropped.
func EquipmentTags(raw string) []string {
	tags := []string{}
	if strings.TrimSpace(raw) == "" {
		return tags
	}
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		tags = append(tags, item)
	}
	return tags
}

// JoinEquipment is the wire form of a tag list.
func JoinEquipment(tags []string) string {
	return strings.Join(tags, ", ")
}
