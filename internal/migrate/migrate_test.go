package migrate

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"strings"
	"testing"
	"testing/fstest"

	_ "github.com/mattn/go-sqlite3"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRun_embedded(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()

	n, err := Run(ctx, db, quietLogger())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n != 2 {
		t.Errorf("applied = %d; want 2", n)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM stations`).Scan(&count); err != nil {
		t.Fatalf("count stations: %v", err)
	}
	if count != 3 {
		t.Errorf("seeded stations = %d; want 3", count)
	}

	n, err = Run(ctx, db, quietLogger())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if n != 0 {
		t.Errorf("second Run applied %d; want 0", n)
	}
}

func TestRunFS(t *testing.T) {
	tests := []struct {
		name    string
		files   fstest.MapFS
		want    int
		wantErr string
	}{
		{
			name: "ordered by version",
			files: fstest.MapFS{
				"m/0002_insert.sql": {Data: []byte(`INSERT INTO t (id) VALUES (1);`)},
				"m/0001_create.sql": {Data: []byte(`CREATE TABLE t (id INTEGER);`)},
				"m/README.md":       {Data: []byte("ignored")},
			},
			want: 2,
		},
		{
			name: "bad sql rolls back",
			files: fstest.MapFS{
				"m/0001_broken.sql": {Data: []byte(`CREATE TABLE (`)},
			},
			wantErr: "apply 0001_broken.sql",
		},
		{
			name: "duplicate version",
			files: fstest.MapFS{
				"m/0001_a.sql": {Data: []byte(`SELECT 1;`)},
				"m/0001_b.sql": {Data: []byte(`SELECT 1;`)},
			},
			wantErr: "duplicate migration version 0001",
		},
		{
			name:    "missing dir",
			files:   fstest.MapFS{},
			wantErr: "read migrations dir",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := openMemory(t)
			n, err := runFS(context.Background(), db, tt.files, "m", quietLogger())
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("err = %v; want containing %q", err, tt.wantErr)
				}
				var recorded int
				_ = db.QueryRow(`SELECT COUNT(*) FROM ` + tableName).Scan(&recorded)
				if recorded != 0 {
					t.Errorf("recorded %d migrations after failure", recorded)
				}
				return
			}
			if err != nil {
				t.Fatalf("runFS: %v", err)
			}
			if n != tt.want {
				t.Errorf("applied = %d; want %d", n, tt.want)
			}
		})
	}
}

func TestParseMigrationFilename(t *testing.T) {
	tests := []struct {
		in      string
		version string
		name    string
		ok      bool
	}{
		{"0001_create_stations.sql", "0001", "create_stations", true},
		{"1_short.sql", "", "", false},
		{"0001_x.txt", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, n, ok := parseMigrationFilename(tt.in)
			if v != tt.version || n != tt.name || ok != tt.ok {
				t.Errorf("parse(%q) = %q, %q, %v", tt.in, v, n, ok)
			}
		})
	}
}
