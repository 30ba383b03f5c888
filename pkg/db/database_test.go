package db

import (
	"bytes"
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/notes/internal/logging"
)

type account struct {
	ID    uint
	Email string
}

func TestGormLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	gdb, err := gorm.Open(sqlite.Open("file:gormlogger?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormLogger(logging.NewWithWriter(&buf, "info")),
	})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&account{}))
	buf.Reset()

	var a account
	err = gdb.Where("email = ?", "secret@example.com").First(&a).Error
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Empty(t, buf.String(), "missing rows are not logged")

	var n int
	err = gdb.Raw("SELECT count(*) FROM no_such_table WHERE email = ?", "secret@example.com").Scan(&n).Error
	require.Error(t, err)
	assert.Contains(t, buf.String(), "no_such_table")
	assert.Contains(t, buf.String(), `"level":"WARN"`)
	assert.NotContains(t, buf.String(), "secret@example.com")
}

func TestOpenSQLite(t *testing.T) {
	t.Parallel()

	gdb, err := OpenSQLite(context.Background(), "file:opensqlite?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, Ping(context.Background(), gdb))
}
