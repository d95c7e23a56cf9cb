package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetTableColumns(t *testing.T) {
	cfg := Config{
		Driver: "sqlite",
		Name:   ":memory:",
	}
	db, err := Connect(cfg)
	assert.NoError(t, err)
	assert.NotNil(t, db)

	err = db.Exec("CREATE TABLE sync_documents (sync_key TEXT PRIMARY KEY, sync_state TEXT, matched_on TEXT)").Error
	assert.NoError(t, err)

	columns, err := GetTableColumns(db, "sync_documents")
	assert.NoError(t, err)
	assert.Len(t, columns, 3)

	colMap := make(map[string]string)
	for _, col := range columns {
		colMap[col.Field] = col.Type
	}

	assert.Equal(t, "text", colMap["sync_key"])
	assert.Equal(t, "text", colMap["sync_state"])
	assert.Equal(t, "text", colMap["matched_on"])

	// PRAGMA table_info returns an empty result for a non-existent table
	cols, err := GetTableColumns(db, "non_existent")
	assert.NoError(t, err)
	assert.Empty(t, cols)

	assert.True(t, HasTable(db, "sync_documents"))
	assert.False(t, HasTable(db, "non_existent"))
}
