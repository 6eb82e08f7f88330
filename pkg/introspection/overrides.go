package introspection

// TagOverrides supplies smart tags from configuration instead of database
// comments. Keys are either qualified ("schema.table", "schema.index",
// "schema.table.column") or bare names; qualified keys win.
type TagOverrides struct {
	Classes    map[string]Tags `yaml:"classes"`
	Indexes    map[string]Tags `yaml:"indexes"`
	Attributes map[string]Tags `yaml:"attributes"`
}

// IsEmpty reports whether no overrides are configured
func (o TagOverrides) IsEmpty() bool {
	return len(o.Classes) == 0 && len(o.Indexes) == 0 && len(o.Attributes) == 0
}

// ApplyTagOverrides returns a copy of the result with configured tags merged
// over the tags parsed from comments. The receiver is left untouched so a
// cached snapshot can be shared between builds with different settings.
func (r *Result) ApplyTagOverrides(o TagOverrides) *Result {
	out := r.clone()
	if o.IsEmpty() {
		return out
	}

	for _, c := range out.Classes {
		nsName := ""
		if c.Namespace != nil {
			nsName = c.Namespace.Name
		}
		c.Tags = mergeOverride(c.Tags, o.Classes, c.Name, nsName+"."+c.Name)
		for _, a := range c.Attributes {
			a.Tags = mergeOverride(a.Tags, o.Attributes, c.Name+"."+a.Name, nsName+"."+c.Name+"."+a.Name)
		}
		for _, idx := range c.Indexes {
			idx.Tags = mergeOverride(idx.Tags, o.Indexes, idx.Name, nsName+"."+idx.Name)
		}
	}

	return out
}

func mergeOverride(tags Tags, overrides map[string]Tags, bare, qualified string) Tags {
	if t, ok := overrides[bare]; ok {
		tags = tags.Merge(t)
	}
	if t, ok := overrides[qualified]; ok {
		tags = tags.Merge(t)
	}
	return tags
}

// clone deep-copies the snapshot and re-links it
func (r *Result) clone() *Result {
	out := &Result{}
	for _, ns := range r.Namespaces {
		cp := *ns
		cp.Tags = ns.Tags.Merge(nil)
		out.Namespaces = append(out.Namespaces, &cp)
	}
	for _, c := range r.Classes {
		cp := *c
		cp.Tags = c.Tags.Merge(nil)
		out.Classes = append(out.Classes, &cp)
	}
	for _, a := range r.Attributes {
		cp := *a
		cp.Tags = a.Tags.Merge(nil)
		out.Attributes = append(out.Attributes, &cp)
	}
	for _, con := range r.Constraints {
		cp := *con
		cp.Tags = con.Tags.Merge(nil)
		out.Constraints = append(out.Constraints, &cp)
	}
	for _, idx := range r.Indexes {
		cp := *idx
		cp.Tags = idx.Tags.Merge(nil)
		out.Indexes = append(out.Indexes, &cp)
	}
	for _, ext := range r.Extensions {
		cp := *ext
		out.Extensions = append(out.Extensions, &cp)
	}
	out.Link()
	return out
}
