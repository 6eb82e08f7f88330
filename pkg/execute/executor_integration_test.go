//go:build integration

package execute

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/platinummonkey/zombograph/pkg/build"
	"github.com/platinummonkey/zombograph/pkg/introspection"
	"github.com/platinummonkey/zombograph/pkg/schema"
	"github.com/platinummonkey/zombograph/pkg/tables"
	"github.com/platinummonkey/zombograph/pkg/zombodb"
)

const productsTable = `
	CREATE TABLE zombodb_test.products (
		id SERIAL8 NOT NULL PRIMARY KEY,
		name text NOT NULL,
		keywords varchar(64)[],
		short_summary text,
		long_description text,
		price bigint,
		inventory_count integer,
		discontinued boolean default false,
		availability_date date
	);

	CREATE TABLE zombodb_test.reviews (
		id serial NOT NULL PRIMARY KEY,
		product_id int8 NOT NULL REFERENCES zombodb_test.products (id),
		review text
	);

	INSERT INTO zombodb_test.products VALUES
		(1, 'Magical Widget', '{magical,widget,round}', 'A widget that is quite magical', 'Magical Widgets come from the land of Magicville and are capable of things you can''t imagine', 9900, 42, 'f', '2015-08-31'),
		(2, 'Baseball', '{baseball,sports,round}', 'It''s a baseball', 'Throw it at a person with a big wooden stick and hope they don''t hit it', 1249, 2, 'f', '2015-08-21'),
		(3, 'Telephone', '{communication,primitive,"alexander graham bell"}', 'A device to enable long-distance communications', 'Use this to call your friends and family and be annoyed by telemarketers.  Long-distance charges may apply', 1899, 200, 'f', '2015-08-11'),
		(4, 'Box', '{wooden,box,"negative space",square}', 'Just an empty box made of wood', 'A wooden container that will eventually rot away.  Put stuff it in (but not a cat).', 17000, 0, 't', '2015-07-01');

	INSERT INTO zombodb_test.reviews VALUES (1, 2, 'it is great');
`

// setupPostgres starts a PostgreSQL container from image and creates the
// zombodb_test schema
func setupPostgres(t *testing.T, image string) (*sql.DB, func()) {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx, image,
		postgres.WithDatabase("zombograph_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(120*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("postgres", connStr)
	require.NoError(t, err)
	require.NoError(t, db.Ping())

	_, err = db.Exec(`CREATE SCHEMA zombodb_test`)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := container.Terminate(cleanupCtx); err != nil {
			t.Logf("Warning: Failed to terminate container: %v", err)
		}
	}
	return db, cleanup
}

func buildFromDatabase(t *testing.T, db *sql.DB) *schema.Schema {
	t.Helper()
	snapshot, err := introspection.NewLoader(db, nil).Load(context.Background(), []string{"zombodb_test"})
	require.NoError(t, err)

	b := build.NewBuilder(nil)
	require.NoError(t, b.Use(
		tables.NewPlugin(tables.Options{Schemas: []string{"zombodb_test"}}, nil),
		zombodb.NewPlugin(zombodb.Options{}, nil),
	))
	res, err := b.Build(context.Background(), snapshot)
	require.NoError(t, err)
	return res.Schema
}

func productNodes(t *testing.T, out map[string]interface{}) []interface{} {
	t.Helper()
	conn, ok := out["allProducts"].(map[string]interface{})
	require.True(t, ok)
	rows, ok := conn["nodes"].([]interface{})
	require.True(t, ok)
	return rows
}

func TestIntegration_PlainPostgres(t *testing.T) {
	db, cleanup := setupPostgres(t, "postgres:15-alpine")
	defer cleanup()

	_, err := db.Exec(productsTable)
	require.NoError(t, err)

	s := buildFromDatabase(t, db)
	_, ok := s.Type("SearchQuery")
	assert.False(t, ok, "search surface requires the zombodb extension")

	out, err := NewExecutor(db, s, nil).Execute(context.Background(), []Selection{{
		Name: "allProducts",
		Args: map[string]interface{}{"orderBy": []interface{}{"NAME_ASC"}},
		Selections: []Selection{
			nodes(field("id"), field("name"), field("keywords"), Selection{
				Name:       "reviewsByProductId",
				Selections: []Selection{nodes(field("review")), field(tables.FieldTotalCount)},
			}),
			field(tables.FieldTotalCount),
		},
	}})
	require.NoError(t, err)

	rows := productNodes(t, out)
	require.Len(t, rows, 4)
	baseball := rows[0].(map[string]interface{})
	assert.Equal(t, "Baseball", baseball["name"])
	assert.Equal(t, []interface{}{"baseball", "sports", "round"}, baseball["keywords"])
	assert.Equal(t, 1, baseball["reviewsByProductId"].(map[string]interface{})["totalCount"])
	assert.Equal(t, 4, out["allProducts"].(map[string]interface{})["totalCount"])
}

// TestIntegration_ZomboDB needs an image with the zombodb extension and a
// reachable Elasticsearch, given by ZOMBOGRAPH_TEST_ZOMBODB_IMAGE and
// ZOMBOGRAPH_TEST_ELASTICSEARCH_URL
func TestIntegration_ZomboDB(t *testing.T) {
	image := os.Getenv("ZOMBOGRAPH_TEST_ZOMBODB_IMAGE")
	esURL := os.Getenv("ZOMBOGRAPH_TEST_ELASTICSEARCH_URL")
	if image == "" || esURL == "" {
		t.Skip("ZOMBOGRAPH_TEST_ZOMBODB_IMAGE and ZOMBOGRAPH_TEST_ELASTICSEARCH_URL are required")
	}

	db, cleanup := setupPostgres(t, image)
	defer cleanup()

	_, err := db.Exec(`CREATE EXTENSION IF NOT EXISTS zombodb`)
	require.NoError(t, err)
	_, err = db.Exec(productsTable)
	require.NoError(t, err)
	_, err = db.Exec(fmt.Sprintf(`
		CREATE INDEX idxproducts
			ON zombodb_test.products
			USING zombodb ((zombodb_test.products.*))
			WITH (url='%s')`, esURL))
	require.NoError(t, err)

	s := buildFromDatabase(t, db)
	exec := NewExecutor(db, s, nil)

	t.Run("search with min score and score ordering", func(t *testing.T) {
		out, err := exec.Execute(context.Background(), []Selection{{
			Name: "allProducts",
			Args: map[string]interface{}{
				"search":  map[string]interface{}{"query": "sports box", "minScore": 0},
				"orderBy": []interface{}{"_SCORE_DESC", "NAME_ASC"},
			},
			Selections: []Selection{nodes(field("id"), field("name"), field("_score"))},
		}})
		require.NoError(t, err)
		assert.Len(t, productNodes(t, out), 2)
	})

	t.Run("score without search", func(t *testing.T) {
		out, err := exec.Execute(context.Background(), []Selection{{
			Name: "allProducts",
			Selections: []Selection{nodes(field("id"), field("name"), field("_score"), Selection{
				Name:       "reviewsByProductId",
				Selections: []Selection{nodes(field("id"), field("review"))},
			})},
		}})
		require.NoError(t, err)
		assert.Len(t, productNodes(t, out), 4)
	})

	t.Run("no search on an indexed table", func(t *testing.T) {
		out, err := exec.Execute(context.Background(), []Selection{{
			Name:       "allProducts",
			Selections: []Selection{nodes(field("id"), field("name"))},
		}})
		require.NoError(t, err)
		assert.Len(t, productNodes(t, out), 4)
	})

	t.Run("search with condition", func(t *testing.T) {
		_, err := db.Exec(`
			CREATE TABLE zombodb_test.country (
				id SERIAL8 NOT NULL PRIMARY KEY,
				name text NOT NULL,
				active boolean NOT NULL DEFAULT 't'
			);
			INSERT INTO zombodb_test.country (name) VALUES
				('United States'), ('United Kingdom'), ('Australia'), ('Argentina');`)
		require.NoError(t, err)
		_, err = db.Exec(fmt.Sprintf(`
			CREATE INDEX idx_countries
				ON zombodb_test.country
				USING zombodb ((zombodb_test.country.*))
				WITH (url='%s')`, esURL))
		require.NoError(t, err)

		countries := NewExecutor(db, buildFromDatabase(t, db), nil)
		out, err := countries.Execute(context.Background(), []Selection{{
			Name: "allCountries",
			Args: map[string]interface{}{
				"search":    map[string]interface{}{"query": "australia"},
				"condition": map[string]interface{}{"active": true},
				"orderBy":   []interface{}{"_SCORE_DESC", "NAME_ASC"},
			},
			Selections: []Selection{nodes(field("id"), field("name"), field("_score"))},
		}})
		require.NoError(t, err)
		assert.Len(t, out["allCountries"].(map[string]interface{})["nodes"], 1)
	})
}
