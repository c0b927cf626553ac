package codec

import "strings"

// Lookup walks a decoded compound by slash-separated path, e.g.
// "Level/xPos". Only compound steps are followed.
func Lookup(tree map[string]any, path string) (any, bool) {
	if tree == nil {
		return nil, false
	}
	var cur any = tree
	for _, name := range strings.Split(path, "/") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[name]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Int coerces any NBT integer tag value.
func Int(v any) (int64, bool) {
	switch n := v.(type) {
	case int8:
		return int64(n), true
	case uint8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	}
	return 0, false
}

func LookupInt(tree map[string]any, path string) (int64, bool) {
	v, ok := Lookup(tree, path)
	if !ok {
		return 0, false
	}
	return Int(v)
}

func LookupString(tree map[string]any, path string) (string, bool) {
	v, ok := Lookup(tree, path)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
