package workflow

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ${name}, ${name:-default}, ${name.field.sub}
	shellRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)((?:\.[A-Za-z0-9_]+)*)(?::-([^}]*))?\}`)
	// {{.name}}
	templateRef = regexp.MustCompile(`\{\{\s*\.([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)
)

// Expand substitutes workflow variables into text. References to names that are not in
// vars are left untouched so the shell can still resolve its own variables.
func Expand(text string, vars map[string]string) string {
	text = shellRef.ReplaceAllStringFunc(text, func(ref string) string {
		return resolveShellRef(ref, vars, true)
	})
	return templateRef.ReplaceAllStringFunc(text, func(ref string) string {
		name := templateRef.FindStringSubmatch(ref)[1]
		if v, ok := vars[name]; ok {
			return v
		}
		return ref
	})
}

// ExpandFields substitutes only field references such as ${slack_token.token}. Shell steps
// get plain variables through their environment, which bash cannot do for dotted names.
func ExpandFields(text string, vars map[string]string) string {
	return shellRef.ReplaceAllStringFunc(text, func(ref string) string {
		return resolveShellRef(ref, vars, false)
	})
}

func resolveShellRef(ref string, vars map[string]string, plain bool) string {
	m := shellRef.FindStringSubmatch(ref)
	name, path, def := m[1], m[2], m[3]
	hasDefault := strings.Contains(ref, ":-")

	v, ok := vars[name]
	if !ok {
		return ref
	}
	if path == "" {
		if !plain {
			return ref
		}
		if v == "" && hasDefault {
			return def
		}
		return v
	}

	field, ok := lookupField(v, strings.Split(strings.TrimPrefix(path, "."), "."))
	if !ok || (field == "" && hasDefault) {
		if hasDefault {
			return def
		}
		return ref
	}
	return field
}

// lookupField walks a JSON object value along path
func lookupField(raw string, path []string) (string, bool) {
	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return "", false
	}
	for _, key := range path {
		obj, ok := doc.(map[string]any)
		if !ok {
			return "", false
		}
		if doc, ok = obj[key]; !ok {
			return "", false
		}
	}
	switch val := doc.(type) {
	case string:
		return val, true
	case nil:
		return "", true
	default:
		out, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val), true
		}
		return string(out), true
	}
}
