package schema

import (
	"strings"
)

// PrintSDL renders the schema as SDL text. Types are printed sorted by name
// with builtin scalars omitted, so two schemas with the same types print
// identically.
func PrintSDL(s *Schema) string {
	builtin := make(map[string]bool)
	for _, sc := range BuiltinScalars() {
		if sc.Description == "" {
			builtin[sc.Name] = true
		}
	}

	parts := make([]string, 0, len(s.order))
	for _, t := range s.Types() {
		if builtin[t.TypeName()] {
			continue
		}
		parts = append(parts, PrintType(t))
	}
	return strings.Join(parts, "\n\n") + "\n"
}

// PrintType renders a single type definition
func PrintType(t NamedType) string {
	var b strings.Builder
	writeDescription(&b, "", t.TypeDescription())

	switch v := t.(type) {
	case *Scalar:
		b.WriteString("scalar " + v.Name)
	case *Object:
		b.WriteString("type " + v.Name + " {\n")
		for _, f := range v.Fields {
			writeField(&b, f)
		}
		b.WriteString("}")
	case *InputObject:
		b.WriteString("input " + v.Name + " {\n")
		for _, f := range v.Fields {
			writeDescription(&b, "  ", f.Description)
			b.WriteString("  " + f.Name + ": " + f.Type.String() + "\n")
		}
		b.WriteString("}")
	case *Enum:
		b.WriteString("enum " + v.Name + " {\n")
		for _, ev := range v.Values {
			writeDescription(&b, "  ", ev.Description)
			b.WriteString("  " + ev.Name + "\n")
		}
		b.WriteString("}")
	}
	return b.String()
}

func writeField(b *strings.Builder, f *Field) {
	writeDescription(b, "  ", f.Description)
	b.WriteString("  " + f.Name)
	if len(f.Args) > 0 {
		b.WriteString("(\n")
		for _, a := range f.Args {
			writeDescription(b, "    ", a.Description)
			b.WriteString("    " + a.Name + ": " + a.Type.String() + "\n")
		}
		b.WriteString("  )")
	}
	b.WriteString(": " + f.Type.String() + "\n")
}

func writeDescription(b *strings.Builder, indent, desc string) {
	if desc == "" {
		return
	}
	desc = strings.ReplaceAll(desc, `"""`, `\"""`)
	if !strings.Contains(desc, "\n") {
		b.WriteString(indent + `"""` + desc + `"""` + "\n")
		return
	}
	b.WriteString(indent + `"""` + "\n")
	for _, line := range strings.Split(desc, "\n") {
		b.WriteString(indent + line + "\n")
	}
	b.WriteString(indent + `"""` + "\n")
}
