package introspection

import (
	"sort"
	"strconv"
)

// Class kinds as reported by pg_class.relkind
const (
	ClassKindTable            = "r"
	ClassKindView             = "v"
	ClassKindMaterializedView = "m"
	ClassKindForeignTable     = "f"
	ClassKindPartitionedTable = "p"
)

// Constraint types as reported by pg_constraint.contype
const (
	ConstraintPrimaryKey = "p"
	ConstraintForeignKey = "f"
	ConstraintUnique     = "u"
)

// Namespace is a PostgreSQL schema
type Namespace struct {
	ID          string
	Name        string
	Description string
	Tags        Tags
}

// Class is a table, view or other relation exposing rows
type Class struct {
	ID           string
	Name         string
	NamespaceID  string
	Kind         string
	Description  string
	Tags         Tags
	IsSelectable bool
	IsInsertable bool
	IsUpdatable  bool
	IsDeletable  bool

	// Resolved by Result.Link
	Namespace          *Namespace
	Attributes         []*Attribute
	PrimaryKey         *Constraint
	Constraints        []*Constraint
	ForeignConstraints []*Constraint
	Indexes            []*Index
}

// Attribute is a column of a class
type Attribute struct {
	ClassID     string
	Num         int
	Name        string
	TypeName    string
	IsArray     bool
	IsNotNull   bool
	HasDefault  bool
	Description string
	Tags        Tags

	Class *Class
}

// Constraint is a primary key, unique or foreign key constraint
type Constraint struct {
	ID                      string
	Name                    string
	Type                    string
	ClassID                 string
	ForeignClassID          string
	KeyAttributeNums        []int
	ForeignKeyAttributeNums []int
	Description             string
	Tags                    Tags

	Class                *Class
	ForeignClass         *Class
	KeyAttributes        []*Attribute
	ForeignKeyAttributes []*Attribute
}

// Index is an index defined over a class. IndexType is the access method
// name (btree, gin, zombodb, ...).
type Index struct {
	ID          string
	Name        string
	ClassID     string
	IndexType   string
	IsUnique    bool
	IsPrimary   bool
	Description string
	Tags        Tags

	Class *Class
}

// OID returns the numeric object id, used to order indexes by creation
func (i *Index) OID() uint64 {
	oid, err := strconv.ParseUint(i.ID, 10, 64)
	if err != nil {
		return 0
	}
	return oid
}

// Extension is an installed PostgreSQL extension
type Extension struct {
	ID          string
	Name        string
	NamespaceID string
	Version     string
}

// Result holds one introspection snapshot grouped by kind
type Result struct {
	Namespaces  []*Namespace
	Classes     []*Class
	Attributes  []*Attribute
	Constraints []*Constraint
	Indexes     []*Index
	Extensions  []*Extension

	classByID map[string]*Class
}

// ClassByID returns the class with the given id
func (r *Result) ClassByID(id string) (*Class, bool) {
	if r.classByID == nil {
		r.Link()
	}
	c, ok := r.classByID[id]
	return c, ok
}

// ExtensionByName returns the installed extension with the given name
func (r *Result) ExtensionByName(name string) (*Extension, bool) {
	for _, ext := range r.Extensions {
		if ext.Name == name {
			return ext, true
		}
	}
	return nil, false
}

// Link resolves back-references between kinds. It is idempotent and must be
// called before the result is shared with a build.
func (r *Result) Link() {
	nsByID := make(map[string]*Namespace, len(r.Namespaces))
	for _, ns := range r.Namespaces {
		nsByID[ns.ID] = ns
	}

	r.classByID = make(map[string]*Class, len(r.Classes))
	for _, c := range r.Classes {
		c.Namespace = nsByID[c.NamespaceID]
		c.Attributes = nil
		c.PrimaryKey = nil
		c.Constraints = nil
		c.ForeignConstraints = nil
		c.Indexes = nil
		r.classByID[c.ID] = c
	}

	attrs := make([]*Attribute, len(r.Attributes))
	copy(attrs, r.Attributes)
	sort.SliceStable(attrs, func(i, j int) bool {
		if attrs[i].ClassID != attrs[j].ClassID {
			return attrs[i].ClassID < attrs[j].ClassID
		}
		return attrs[i].Num < attrs[j].Num
	})
	for _, a := range attrs {
		if c, ok := r.classByID[a.ClassID]; ok {
			a.Class = c
			c.Attributes = append(c.Attributes, a)
		}
	}

	for _, con := range r.Constraints {
		con.Class = r.classByID[con.ClassID]
		con.ForeignClass = r.classByID[con.ForeignClassID]
		con.KeyAttributes = resolveAttributes(con.Class, con.KeyAttributeNums)
		con.ForeignKeyAttributes = resolveAttributes(con.ForeignClass, con.ForeignKeyAttributeNums)

		if con.Class != nil {
			con.Class.Constraints = append(con.Class.Constraints, con)
			if con.Type == ConstraintPrimaryKey {
				con.Class.PrimaryKey = con
			}
		}
		if con.Type == ConstraintForeignKey && con.ForeignClass != nil {
			con.ForeignClass.ForeignConstraints = append(con.ForeignClass.ForeignConstraints, con)
		}
	}

	for _, idx := range r.Indexes {
		idx.Class = r.classByID[idx.ClassID]
		if idx.Class != nil {
			idx.Class.Indexes = append(idx.Class.Indexes, idx)
		}
	}
}

func resolveAttributes(c *Class, nums []int) []*Attribute {
	if c == nil || len(nums) == 0 {
		return nil
	}
	out := make([]*Attribute, 0, len(nums))
	for _, n := range nums {
		for _, a := range c.Attributes {
			if a.Num == n {
				out = append(out, a)
				break
			}
		}
	}
	return out
}
