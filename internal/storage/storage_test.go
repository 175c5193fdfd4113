package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"

	"tsp/internal/config"
	"tsp/internal/weight"
)

func TestParseHistory(t *testing.T) {
	data := []byte(`{
		"a/FastTest.scala": 1.5,
		"a/SlowTest.scala": 42,
		"a/Zero.scala": 0,
		"a/Negative.scala": -3,
		"a/Text.scala": "12",
		"a/Null.scala": null,
		"a/Object.scala": {"seconds": 4}
	}`)

	h, dropped, err := ParseHistory(data)

	require.NoError(t, err)
	require.Equal(t, weight.History{"a/FastTest.scala": 1.5, "a/SlowTest.scala": 42}, h)
	require.Equal(t, 5, dropped)
}

func TestParseHistory_NotAnObject(t *testing.T) {
	for _, data := range []string{`[1, 2]`, `"x"`, `{`} {
		_, _, err := ParseHistory([]byte(data))
		require.Error(t, err, data)
	}
}

func TestJSONStorage_LoadMissingFile(t *testing.T) {
	st := NewJSONStorage(filepath.Join(t.TempDir(), "none.json"), 1)

	h, err := st.LoadHistory(context.Background())

	require.NoError(t, err)
	require.Empty(t, h)
	require.NotNil(t, h)
}

func TestJSONStorage_Record(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.json")
	ctx := context.Background()

	t.Run("replace", func(t *testing.T) {
		st := NewJSONStorage(path, 1)
		require.NoError(t, st.Record(ctx, "a.scala", 10))
		require.NoError(t, st.Record(ctx, "a.scala", 20))
		require.NoError(t, st.Record(ctx, "b.scala", 3))

		h, err := st.LoadHistory(ctx)
		require.NoError(t, err)
		require.Equal(t, weight.History{"a.scala": 20, "b.scala": 3}, h)
	})

	t.Run("blend", func(t *testing.T) {
		st := NewJSONStorage(path, 0.5)
		require.NoError(t, st.Record(ctx, "a.scala", 40))

		h, err := st.LoadHistory(ctx)
		require.NoError(t, err)
		require.InDelta(t, 30, h["a.scala"], 1e-9)
	})

	t.Run("rejects invalid observations", func(t *testing.T) {
		st := NewJSONStorage(path, 1)
		require.Error(t, st.Record(ctx, "a.scala", 0))
		require.Error(t, st.Record(ctx, "a.scala", -1))
		require.Error(t, st.Record(ctx, "", 2))
	})
}

func TestJSONStorage_RecordDropsCorruptEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"old.scala": "bad", "keep.scala": 2}`), 0644))
	st := NewJSONStorage(path, 1)

	require.NoError(t, st.Record(context.Background(), "new.scala", 5))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(data), "old.scala")
	require.Contains(t, string(data), "keep.scala")
}

func TestJSONStorage_Save(t *testing.T) {
	st := NewJSONStorage(filepath.Join(t.TempDir(), "history.json"), 1)

	require.NoError(t, st.Save(weight.History{"a": 2, "b": -1}))

	h, err := st.LoadHistory(context.Background())
	require.NoError(t, err)
	require.Equal(t, weight.History{"a": 2}, h)
}

func TestOpen(t *testing.T) {
	t.Run("json by default", func(t *testing.T) {
		cfg := config.New()
		cfg.ProjectPath = t.TempDir()

		st, err := Open(cfg)
		require.NoError(t, err)
		js, ok := st.(*JSONStorage)
		require.True(t, ok)
		require.Equal(t, cfg.GetHistoryPath(), js.Path())
	})

	t.Run("mysql", func(t *testing.T) {
		cfg := config.New()
		cfg.HistoryBackend = config.BackendMySQL
		cfg.HistoryDSN = "ci:secret@tcp(db:3306)/timings"

		st, err := Open(cfg)
		require.NoError(t, err)
		my, ok := st.(*MySQLStorage)
		require.True(t, ok)
		require.NoError(t, my.Close())
	})

	t.Run("unknown backend", func(t *testing.T) {
		cfg := config.New()
		cfg.HistoryBackend = "redis"

		_, err := Open(cfg)
		require.Error(t, err)
	})
}

func TestDSNFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		dsn := DSNFromEnv(func(string) string { return "" })

		parsed, err := mysql.ParseDSN(dsn)
		require.NoError(t, err)
		require.Equal(t, "root", parsed.User)
		require.Equal(t, "127.0.0.1:3306", parsed.Addr)
		require.Equal(t, "testing", parsed.DBName)
		require.Equal(t, 5*time.Second, parsed.Timeout)
	})

	t.Run("from environment", func(t *testing.T) {
		env := map[string]string{
			"DB_HOST":     "db.internal",
			"DB_PORT":     "3307",
			"DB_USERNAME": "ci",
			"DB_PASSWORD": "s3cret",
			"DB_DATABASE": "timings",
		}
		dsn := DSNFromEnv(func(k string) string { return env[k] })

		parsed, err := mysql.ParseDSN(dsn)
		require.NoError(t, err)
		require.Equal(t, "ci", parsed.User)
		require.Equal(t, "s3cret", parsed.Passwd)
		require.Equal(t, "db.internal:3307", parsed.Addr)
		require.Equal(t, "timings", parsed.DBName)
	})
}
