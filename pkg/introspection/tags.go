package introspection

import (
	"strings"
)

// Tags are smart tags parsed from a database comment. A bare tag ("@omit")
// maps to the empty string.
type Tags map[string]string

// Tagged is implemented by every introspection kind that carries smart tags
type Tagged interface {
	SmartTags() Tags
}

// SmartTags returns the namespace tags
func (n *Namespace) SmartTags() Tags {
	if n == nil {
		return nil
	}
	return n.Tags
}

// SmartTags returns the class tags
func (c *Class) SmartTags() Tags {
	if c == nil {
		return nil
	}
	return c.Tags
}

// SmartTags returns the attribute tags
func (a *Attribute) SmartTags() Tags {
	if a == nil {
		return nil
	}
	return a.Tags
}

// SmartTags returns the constraint tags
func (c *Constraint) SmartTags() Tags {
	if c == nil {
		return nil
	}
	return c.Tags
}

// SmartTags returns the index tags
func (i *Index) SmartTags() Tags {
	if i == nil {
		return nil
	}
	return i.Tags
}

// ParseComment splits a comment into leading "@tag value" lines and the
// remaining description text.
//
//	@omit read,zombodb
//	@name products
//	The product catalog.
func ParseComment(comment string) (Tags, string) {
	tags := Tags{}
	lines := strings.Split(comment, "\n")

	i := 0
	for ; i < len(lines); i++ {
		line := strings.TrimRight(lines[i], "\r")
		if !strings.HasPrefix(line, "@") {
			break
		}
		body := strings.TrimPrefix(line, "@")
		name, value, _ := strings.Cut(body, " ")
		if name == "" {
			break
		}
		value = strings.TrimSpace(value)
		if prev, ok := tags[name]; ok && prev != "" && value != "" {
			value = prev + "," + value
		}
		tags[name] = value
	}

	return tags, strings.TrimSpace(strings.Join(lines[i:], "\n"))
}

// Merge returns a copy of t with the overrides applied on top
func (t Tags) Merge(overrides Tags) Tags {
	out := make(Tags, len(t)+len(overrides))
	for k, v := range t {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

// Omit reports whether the entity's @omit tag excludes the given action.
// A bare @omit excludes everything.
func Omit(entity Tagged, action string) bool {
	if entity == nil {
		return false
	}
	value, ok := entity.SmartTags()["omit"]
	if !ok {
		return false
	}
	if value == "" {
		return true
	}
	for _, part := range strings.Split(value, ",") {
		if strings.TrimSpace(part) == action {
			return true
		}
	}
	return false
}
