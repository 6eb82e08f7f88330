package zombodb

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/zombograph/pkg/introspection"
)

// ExtensionName is the extension that must be installed for any table to
// be searchable
const ExtensionName = "zombodb"

// IndexType is the access method of search indexes
const IndexType = "zombodb"

// Smart tag actions that exclude a table or index from search
const (
	OmitSearch = "zombodb"
	OmitRead   = "read"
)

// EligibleSet maps class ids to the search index used for them. It is
// computed once per build and never changed afterwards.
type EligibleSet map[string]*introspection.Index

// Contains reports whether the class is searchable
func (s EligibleSet) Contains(c *introspection.Class) bool {
	if c == nil {
		return false
	}
	_, ok := s[c.ID]
	return ok
}

// Index returns the search index of a class
func (s EligibleSet) Index(c *introspection.Class) (*introspection.Index, bool) {
	if c == nil {
		return nil, false
	}
	idx, ok := s[c.ID]
	return idx, ok
}

// ClassIDs returns the eligible class ids, sorted
func (s EligibleSet) ClassIDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Restrict keeps only the classes in exposed. A table that is not exposed
// as a collection cannot be searched even when it carries an index.
func (s EligibleSet) Restrict(exposed []*introspection.Class) EligibleSet {
	out := make(EligibleSet, len(s))
	for _, c := range exposed {
		if idx, ok := s.Index(c); ok {
			out[c.ID] = idx
		}
	}
	return out
}

// Scan computes the eligible set from one introspection snapshot. When the
// extension is not installed the set is empty. When a table has more than
// one search index the oldest index (lowest oid) is used.
func Scan(snapshot *introspection.Result, log *logrus.Entry) EligibleSet {
	set := EligibleSet{}

	if _, ok := snapshot.ExtensionByName(ExtensionName); !ok {
		log.Info("zombodb extension not installed, search is disabled")
		return set
	}

	for _, idx := range snapshot.Indexes {
		if idx.IndexType != IndexType || introspection.Omit(idx, OmitSearch) {
			continue
		}
		table := idx.Class
		if table == nil || table.Namespace == nil {
			continue
		}
		if !table.IsSelectable || introspection.Omit(idx, OmitRead) {
			continue
		}
		if introspection.Omit(table, OmitSearch) || introspection.Omit(table, OmitRead) {
			continue
		}

		prev, exists := set[table.ID]
		if !exists {
			set[table.ID] = idx
			continue
		}

		keep, drop := prev, idx
		if idx.OID() < prev.OID() {
			keep, drop = idx, prev
		}
		set[table.ID] = keep
		log.WithFields(logrus.Fields{
			"table":   table.Namespace.Name + "." + table.Name,
			"using":   keep.Name,
			"ignored": drop.Name,
		}).Warn("Table has more than one zombodb index, using the oldest")
	}

	log.WithField("tables", len(set)).Debug("Scanned zombodb indexes")
	return set
}
