package introspection

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// Source produces introspection snapshots
type Source interface {
	Load(ctx context.Context, schemas []string) (*Result, error)
}

const namespacesQuery = `
	SELECT nsp.oid::text, nsp.nspname, COALESCE(obj_description(nsp.oid, 'pg_namespace'), '')
	FROM pg_catalog.pg_namespace nsp
	WHERE nsp.nspname = ANY($1)
	ORDER BY nsp.nspname
`

const classesQuery = `
	SELECT
		rel.oid::text,
		rel.relname,
		rel.relnamespace::text,
		rel.relkind::text,
		COALESCE(obj_description(rel.oid, 'pg_class'), ''),
		has_table_privilege(rel.oid, 'SELECT'),
		has_table_privilege(rel.oid, 'INSERT'),
		has_table_privilege(rel.oid, 'UPDATE'),
		has_table_privilege(rel.oid, 'DELETE')
	FROM pg_catalog.pg_class rel
	JOIN pg_catalog.pg_namespace nsp ON nsp.oid = rel.relnamespace
	WHERE rel.relkind IN ('r', 'v', 'm', 'f', 'p')
		AND nsp.nspname = ANY($1)
	ORDER BY rel.oid
`

const attributesQuery = `
	SELECT
		att.attrelid::text,
		att.attnum,
		att.attname,
		CASE WHEN typ.typtype = 'd' THEN base.typname ELSE typ.typname END,
		typ.typcategory = 'A',
		att.attnotnull,
		att.atthasdef,
		COALESCE(col_description(att.attrelid, att.attnum), '')
	FROM pg_catalog.pg_attribute att
	JOIN pg_catalog.pg_class rel ON rel.oid = att.attrelid
	JOIN pg_catalog.pg_namespace nsp ON nsp.oid = rel.relnamespace
	JOIN pg_catalog.pg_type typ ON typ.oid = att.atttypid
	LEFT JOIN pg_catalog.pg_type base ON base.oid = typ.typbasetype
	WHERE att.attnum > 0
		AND NOT att.attisdropped
		AND rel.relkind IN ('r', 'v', 'm', 'f', 'p')
		AND nsp.nspname = ANY($1)
	ORDER BY att.attrelid, att.attnum
`

const constraintsQuery = `
	SELECT
		con.oid::text,
		con.conname,
		con.contype::text,
		con.conrelid::text,
		con.confrelid::text,
		con.conkey,
		con.confkey,
		COALESCE(obj_description(con.oid, 'pg_constraint'), '')
	FROM pg_catalog.pg_constraint con
	JOIN pg_catalog.pg_class rel ON rel.oid = con.conrelid
	JOIN pg_catalog.pg_namespace nsp ON nsp.oid = rel.relnamespace
	WHERE con.contype IN ('p', 'f', 'u')
		AND nsp.nspname = ANY($1)
	ORDER BY con.oid
`

const indexesQuery = `
	SELECT
		idx.indexrelid::text,
		cls.relname,
		idx.indrelid::text,
		am.amname,
		idx.indisunique,
		idx.indisprimary,
		COALESCE(obj_description(idx.indexrelid, 'pg_class'), '')
	FROM pg_catalog.pg_index idx
	JOIN pg_catalog.pg_class cls ON cls.oid = idx.indexrelid
	JOIN pg_catalog.pg_am am ON am.oid = cls.relam
	JOIN pg_catalog.pg_class tbl ON tbl.oid = idx.indrelid
	JOIN pg_catalog.pg_namespace nsp ON nsp.oid = tbl.relnamespace
	WHERE nsp.nspname = ANY($1)
	ORDER BY idx.indexrelid
`

const extensionsQuery = `
	SELECT ext.oid::text, ext.extname, ext.extnamespace::text, ext.extversion
	FROM pg_catalog.pg_extension ext
	ORDER BY ext.extname
`

// Loader reads introspection data from the PostgreSQL system catalogs
type Loader struct {
	db  *sql.DB
	log *logrus.Logger
}

// NewLoader creates a catalog loader
func NewLoader(db *sql.DB, log *logrus.Logger) *Loader {
	if log == nil {
		log = logrus.New()
	}
	return &Loader{db: db, log: log}
}

// Load reads one snapshot of all kinds for the given schemas
func (l *Loader) Load(ctx context.Context, schemas []string) (*Result, error) {
	start := time.Now()
	result := &Result{}
	schemaArg := pq.Array(schemas)

	if err := l.loadNamespaces(ctx, schemaArg, result); err != nil {
		return nil, err
	}
	if err := l.loadClasses(ctx, schemaArg, result); err != nil {
		return nil, err
	}
	if err := l.loadAttributes(ctx, schemaArg, result); err != nil {
		return nil, err
	}
	if err := l.loadConstraints(ctx, schemaArg, result); err != nil {
		return nil, err
	}
	if err := l.loadIndexes(ctx, schemaArg, result); err != nil {
		return nil, err
	}
	if err := l.loadExtensions(ctx, result); err != nil {
		return nil, err
	}

	result.Link()

	l.log.WithFields(logrus.Fields{
		"schemas":    schemas,
		"classes":    len(result.Classes),
		"indexes":    len(result.Indexes),
		"extensions": len(result.Extensions),
		"duration":   time.Since(start),
	}).Debug("Introspection loaded")

	return result, nil
}

func (l *Loader) loadNamespaces(ctx context.Context, schemas interface{}, result *Result) error {
	rows, err := l.db.QueryContext(ctx, namespacesQuery, schemas)
	if err != nil {
		return fmt.Errorf("failed to introspect namespaces: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		ns := &Namespace{}
		var comment string
		if err := rows.Scan(&ns.ID, &ns.Name, &comment); err != nil {
			return fmt.Errorf("failed to scan namespace: %w", err)
		}
		ns.Tags, ns.Description = ParseComment(comment)
		result.Namespaces = append(result.Namespaces, ns)
	}
	return rows.Err()
}

func (l *Loader) loadClasses(ctx context.Context, schemas interface{}, result *Result) error {
	rows, err := l.db.QueryContext(ctx, classesQuery, schemas)
	if err != nil {
		return fmt.Errorf("failed to introspect classes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		c := &Class{}
		var comment string
		if err := rows.Scan(
			&c.ID,
			&c.Name,
			&c.NamespaceID,
			&c.Kind,
			&comment,
			&c.IsSelectable,
			&c.IsInsertable,
			&c.IsUpdatable,
			&c.IsDeletable,
		); err != nil {
			return fmt.Errorf("failed to scan class: %w", err)
		}
		c.Tags, c.Description = ParseComment(comment)
		result.Classes = append(result.Classes, c)
	}
	return rows.Err()
}

func (l *Loader) loadAttributes(ctx context.Context, schemas interface{}, result *Result) error {
	rows, err := l.db.QueryContext(ctx, attributesQuery, schemas)
	if err != nil {
		return fmt.Errorf("failed to introspect attributes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		a := &Attribute{}
		var comment string
		if err := rows.Scan(
			&a.ClassID,
			&a.Num,
			&a.Name,
			&a.TypeName,
			&a.IsArray,
			&a.IsNotNull,
			&a.HasDefault,
			&comment,
		); err != nil {
			return fmt.Errorf("failed to scan attribute: %w", err)
		}
		a.Tags, a.Description = ParseComment(comment)
		result.Attributes = append(result.Attributes, a)
	}
	return rows.Err()
}

func (l *Loader) loadConstraints(ctx context.Context, schemas interface{}, result *Result) error {
	rows, err := l.db.QueryContext(ctx, constraintsQuery, schemas)
	if err != nil {
		return fmt.Errorf("failed to introspect constraints: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		con := &Constraint{}
		var keys, foreignKeys pq.Int64Array
		var comment string
		if err := rows.Scan(
			&con.ID,
			&con.Name,
			&con.Type,
			&con.ClassID,
			&con.ForeignClassID,
			&keys,
			&foreignKeys,
			&comment,
		); err != nil {
			return fmt.Errorf("failed to scan constraint: %w", err)
		}
		con.KeyAttributeNums = toInts(keys)
		con.ForeignKeyAttributeNums = toInts(foreignKeys)
		con.Tags, con.Description = ParseComment(comment)
		result.Constraints = append(result.Constraints, con)
	}
	return rows.Err()
}

func (l *Loader) loadIndexes(ctx context.Context, schemas interface{}, result *Result) error {
	rows, err := l.db.QueryContext(ctx, indexesQuery, schemas)
	if err != nil {
		return fmt.Errorf("failed to introspect indexes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		idx := &Index{}
		var comment string
		if err := rows.Scan(
			&idx.ID,
			&idx.Name,
			&idx.ClassID,
			&idx.IndexType,
			&idx.IsUnique,
			&idx.IsPrimary,
			&comment,
		); err != nil {
			return fmt.Errorf("failed to scan index: %w", err)
		}
		idx.Tags, idx.Description = ParseComment(comment)
		result.Indexes = append(result.Indexes, idx)
	}
	return rows.Err()
}

func (l *Loader) loadExtensions(ctx context.Context, result *Result) error {
	rows, err := l.db.QueryContext(ctx, extensionsQuery)
	if err != nil {
		return fmt.Errorf("failed to introspect extensions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		ext := &Extension{}
		if err := rows.Scan(&ext.ID, &ext.Name, &ext.NamespaceID, &ext.Version); err != nil {
			return fmt.Errorf("failed to scan extension: %w", err)
		}
		result.Extensions = append(result.Extensions, ext)
	}
	return rows.Err()
}

func toInts(values pq.Int64Array) []int {
	if len(values) == 0 {
		return nil
	}
	out := make([]int, len(values))
	for i, v := range values {
		out[i] = int(v)
	}
	return out
}
