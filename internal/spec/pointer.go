package spec

import (
	"net/url"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// resolvePointer walks a local JSON Pointer reference ("#", "#/a/b") from root.
func resolvePointer(root *yaml.Node, ref string) (*yaml.Node, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "#" {
		return unalias(root), true
	}
	if !strings.HasPrefix(ref, "#/") {
		return nil, false
	}

	current := unalias(root)
	for _, token := range strings.Split(strings.TrimPrefix(ref, "#/"), "/") {
		token = decodePointerToken(token)
		switch current.Kind {
		case yaml.MappingNode:
			next := lookup(current, token)
			if next == nil {
				return nil, false
			}
			current = next
		case yaml.SequenceNode:
			index, err := strconv.Atoi(token)
			if err != nil || index < 0 || index >= len(current.Content) {
				return nil, false
			}
			current = unalias(current.Content[index])
		default:
			return nil, false
		}
	}
	return current, true
}

// decodePointerToken undoes URI percent-encoding and then RFC 6901 escaping.
func decodePointerToken(token string) string {
	if unescaped, err := url.PathUnescape(token); err == nil {
		token = unescaped
	}
	token = strings.ReplaceAll(token, "~1", "/")
	return strings.ReplaceAll(token, "~0", "~")
}

func encodePointerToken(token string) string {
	token = strings.ReplaceAll(token, "~", "~0")
	return strings.ReplaceAll(token, "/", "~1")
}

// child appends key to the JSON Pointer ptr.
func child(ptr, key string) string {
	return ptr + "/" + encodePointerToken(key)
}
