package db

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/report-bot/internal/schema"
)

func TestUpsertReportQuery(t *testing.T) {
	s := schema.Default()
	query := upsertReportQuery(s)

	assert.True(t, strings.HasPrefix(query, "INSERT INTO reports (user_id, report_date, "))
	assert.Contains(t, query, "ON CONFLICT (user_id, report_date) DO UPDATE")
	assert.Contains(t, query, "updated_at = now()")

	for _, key := range s.Keys() {
		assert.Contains(t, query, key+" = EXCLUDED."+key)
	}

	// One placeholder per field plus the two identity parameters.
	assert.Equal(t, len(s.Keys())+2, strings.Count(query, "$"))
}

func TestValueColumns_FollowSchemaOrder(t *testing.T) {
	s := schema.Default()
	cols := valueColumns(s)

	parts := strings.Split(cols, ", ")
	assert.Equal(t, s.Keys(), parts)
}

func TestValueDest_CollectsTypedValues(t *testing.T) {
	s := schema.Default()
	dest, collect := valueDest(s)
	require.Len(t, dest, len(s.Fields()))

	for i, f := range s.Fields() {
		if f.Kind == schema.Numeric {
			p, ok := dest[i].(*int64)
			require.True(t, ok, f.Key)
			*p = int64(i)
		} else {
			p, ok := dest[i].(*string)
			require.True(t, ok, f.Key)
			*p = f.Key
		}
	}

	values := collect()
	require.Len(t, values, len(s.Fields()))
	for i, f := range s.Fields() {
		if f.Kind == schema.Numeric {
			assert.Equal(t, int64(i), values[f.Key])
		} else {
			assert.Equal(t, f.Key, values[f.Key])
		}
	}
}

func TestExportHeaders(t *testing.T) {
	s := schema.Default()
	headers := exportHeaders(s)

	require.Len(t, headers, 4+len(s.Fields()))
	assert.Equal(t, []string{"Дата", "Табельный номер", "Сотрудник", "Должность"}, headers[:4])
	for i, f := range s.Fields() {
		assert.Equal(t, f.FullLabel, headers[4+i])
	}
}

func TestColumnType(t *testing.T) {
	assert.Equal(t, "INTEGER NOT NULL DEFAULT 0", columnType(schema.Numeric))
	assert.Equal(t, "TEXT NOT NULL DEFAULT ''", columnType(schema.Text))
}

func TestManager_LiveDatabase(t *testing.T) {
	// The repository methods require a running PostgreSQL instance.
	t.Skip("Skipping database test - requires PostgreSQL")
}
