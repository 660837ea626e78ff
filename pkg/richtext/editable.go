package richtext

import (
	"encoding/json"
	"strings"
)

const (
	editablePrefix = "<!--#storyblok#"
	editableSuffix = "-->"

	// OutlineClass marks elements the visual editor can select.
	OutlineClass = "storyblok__outline"
)

// EditableAttrs returns the attributes the visual editor uses to locate an
// instance: data-blok-c (the editable options as JSON), data-blok-uid and
// the outline class. It returns nil when the instance carries no valid
// _editable comment.
func (i Instance) EditableAttrs() Attrs {
	raw, ok := i.Fields["_editable"].(string)
	if !ok || raw == "" {
		return nil
	}

	body := strings.TrimPrefix(strings.TrimSpace(raw), editablePrefix)
	body = strings.TrimSuffix(body, editableSuffix)

	var opts map[string]any
	if err := json.Unmarshal([]byte(body), &opts); err != nil {
		return nil
	}
	encoded, err := json.Marshal(opts)
	if err != nil {
		return nil
	}

	return Attrs{
		"data-blok-c":   string(encoded),
		"data-blok-uid": stringOf(opts["id"]) + "-" + stringOf(opts["uid"]),
		"class":         OutlineClass,
	}
}
