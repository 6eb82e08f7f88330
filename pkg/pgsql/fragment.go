package pgsql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"
)

// MaxIdentifierLength is the longest identifier PostgreSQL keeps; longer
// names are silently truncated by the server
const MaxIdentifierLength = 63

type nodeKind int

const (
	kindRaw nodeKind = iota
	kindIdentifier
	kindValue
)

type node struct {
	kind  nodeKind
	text  string
	parts []string
	value interface{}
}

// Fragment is an immutable, composable piece of SQL
type Fragment struct {
	nodes []node
}

// Raw creates a fragment from trusted SQL text
func Raw(text string) Fragment {
	if text == "" {
		return Fragment{}
	}
	return Fragment{nodes: []node{{kind: kindRaw, text: text}}}
}

// Identifier creates a quoted, dot-separated identifier (schema.table, alias.column)
func Identifier(parts ...string) Fragment {
	cp := make([]string, len(parts))
	copy(cp, parts)
	return Fragment{nodes: []node{{kind: kindIdentifier, parts: cp}}}
}

// Value creates a bound parameter
func Value(v interface{}) Fragment {
	return Fragment{nodes: []node{{kind: kindValue, value: v}}}
}

// Join concatenates fragments with a literal separator
func Join(frags []Fragment, sep string) Fragment {
	out := Fragment{}
	for i, f := range frags {
		if i > 0 && sep != "" {
			out.nodes = append(out.nodes, node{kind: kindRaw, text: sep})
		}
		out.nodes = append(out.nodes, f.nodes...)
	}
	return out
}

// Sprintf builds a fragment from a format containing %s verbs, one per
// argument fragment. %% yields a literal percent sign. A verb/argument
// mismatch is a programming error and panics.
func Sprintf(format string, args ...Fragment) Fragment {
	out := Fragment{}
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			out.nodes = append(out.nodes, node{kind: kindRaw, text: lit.String()})
			lit.Reset()
		}
	}

	next := 0
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' {
			lit.WriteByte(c)
			continue
		}
		if i+1 >= len(format) {
			panic(fmt.Sprintf("pgsql: trailing %% in format %q", format))
		}
		i++
		switch format[i] {
		case '%':
			lit.WriteByte('%')
		case 's':
			if next >= len(args) {
				panic(fmt.Sprintf("pgsql: missing argument for verb %d in %q", next+1, format))
			}
			flush()
			out.nodes = append(out.nodes, args[next].nodes...)
			next++
		default:
			panic(fmt.Sprintf("pgsql: unsupported verb %%%c in %q", format[i], format))
		}
	}
	if next != len(args) {
		panic(fmt.Sprintf("pgsql: %d extra arguments for %q", len(args)-next, format))
	}
	flush()
	return out
}

// IsEmpty reports whether the fragment renders to nothing
func (f Fragment) IsEmpty() bool {
	return len(f.nodes) == 0
}

// Values returns the bound values in render order
func (f Fragment) Values() []interface{} {
	var values []interface{}
	for _, n := range f.nodes {
		if n.kind == kindValue {
			values = append(values, n.value)
		}
	}
	return values
}

// String renders the fragment with numbered placeholders, for debugging and logs
func (f Fragment) String() string {
	text, _ := Compile(f)
	return text
}

// Compile renders the fragment to SQL text with $n placeholders and the
// matching argument list
func Compile(f Fragment) (string, []interface{}) {
	return CompileOffset(f, 0)
}

// CompileOffset renders the fragment numbering placeholders after offset
// already-bound arguments
func CompileOffset(f Fragment, offset int) (string, []interface{}) {
	var b strings.Builder
	args := make([]interface{}, 0)

	for _, n := range f.nodes {
		switch n.kind {
		case kindRaw:
			b.WriteString(n.text)
		case kindIdentifier:
			for i, p := range n.parts {
				if i > 0 {
					b.WriteByte('.')
				}
				b.WriteString(QuoteIdentifier(p))
			}
		case kindValue:
			args = append(args, n.value)
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(offset + len(args)))
		}
	}

	return b.String(), args
}

// QuoteIdentifier double-quotes an identifier, escaping embedded quotes
func QuoteIdentifier(name string) string {
	return pq.QuoteIdentifier(name)
}
