package exports

import (
	"encoding/json"
	"strings"
)

// ExtractAnnotations collapses a decoded annotations column, a list of
// {task, task_label, value} objects, into a task-to-value map. The task
// label is discarded. Single-element list values collapse to the element
// and empty lists to the empty string, mirroring how the annotation
// payloads are conventionally widened into task columns.
func ExtractAnnotations(decoded any) map[string]any {
	out := make(map[string]any)
	list, ok := decoded.([]any)
	if !ok {
		return out
	}

	for _, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		task, _ := obj["task"].(string)
		if task == "" {
			continue
		}
		out[task] = collapseValue(obj["value"])
	}
	return out
}

func collapseValue(value any) any {
	if list, ok := value.([]any); ok {
		switch len(list) {
		case 0:
			return ""
		case 1:
			return list[0]
		}
	}
	if value == nil {
		return ""
	}
	return value
}

// FlattenValue renders an annotation answer to a flat string for the
// minimal annotations table. Nested answer payloads (lists of objects
// carrying detail values) flatten to their detail values joined with "|";
// plain lists join their elements; scalars render directly.
func FlattenValue(value any) string {
	switch v := value.(type) {
	case string:
		// Task cells can hold embedded JSON when the export was
		// round-tripped through CSV.
		if looksLikeJSON(v) {
			var decoded any
			if err := json.Unmarshal([]byte(v), &decoded); err == nil {
				return FlattenValue(decoded)
			}
		}
		return v
	case nil:
		return ""
	case []any:
		if allObjects(v) {
			return flattenDetailList(v)
		}
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s := FlattenValue(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "|")
	case map[string]any:
		return flattenDetailList([]any{v})
	default:
		return scalarString(v)
	}
}

func looksLikeJSON(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "[") || strings.HasPrefix(s, "{")
}

func allObjects(list []any) bool {
	if len(list) == 0 {
		return false
	}
	for _, item := range list {
		if _, ok := item.(map[string]any); !ok {
			return false
		}
	}
	return true
}

// flattenDetailList pulls the detail values out of composite answers such
// as dropdown tasks, which nest {details: [{value: ...}, ...]}.
func flattenDetailList(list []any) string {
	var values []string
	for _, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		details, ok := obj["details"].([]any)
		if !ok {
			// An object without details flattens to its value field when
			// present.
			if v, ok := obj["value"]; ok {
				if s := FlattenValue(v); s != "" {
					values = append(values, s)
				}
			}
			continue
		}
		for _, detail := range details {
			detailObj, ok := detail.(map[string]any)
			if !ok {
				continue
			}
			value := detailObj["value"]
			switch v := value.(type) {
			case nil:
				return ""
			case []any:
				parts := make([]string, 0, len(v))
				for _, x := range v {
					parts = append(parts, scalarString(x))
				}
				values = append(values, strings.Join(parts, ","))
			default:
				values = append(values, scalarString(v))
			}
		}
	}

	nonEmpty := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			nonEmpty = append(nonEmpty, v)
		}
	}
	return strings.Join(nonEmpty, "|")
}
