package export

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/PabloGalante/studybuddy/internal/logstore"
	"github.com/PabloGalante/studybuddy/internal/observability"
)

// ErrInputMissing is returned when the log file to export does not exist.
var ErrInputMissing = errors.New("input log file not found")

// Reader loads log records from a JSON-lines file.
type Reader interface {
	Read(ctx context.Context, path string) ([]logstore.Record, error)
}

// NewReader returns the reader for engine "jsonl" (default) or "duckdb".
func NewReader(engine string) (Reader, error) {
	switch strings.ToLower(engine) {
	case "", "jsonl":
		return JSONLReader{}, nil
	case "duckdb":
		return DuckDBReader{}, nil
	default:
		return nil, fmt.Errorf("unknown export engine %q", engine)
	}
}

// JSONLReader decodes the file line by line.
type JSONLReader struct{}

func (JSONLReader) Read(_ context.Context, path string) ([]logstore.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputMissing, path)
		}
		return nil, err
	}
	defer f.Close()
	return logstore.Read(f)
}

// DuckDBReader queries the file with DuckDB's read_json, which copes with
// large logs without holding raw lines in Go.
type DuckDBReader struct{}

func (DuckDBReader) Read(ctx context.Context, path string) ([]logstore.Record, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputMissing, path)
		}
		return nil, err
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("failed to open DuckDB: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "INSTALL json"); err != nil {
		return nil, fmt.Errorf("failed to install JSON extension: %w", err)
	}
	if _, err := db.ExecContext(ctx, "LOAD json"); err != nil {
		return nil, fmt.Errorf("failed to load JSON extension: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT "timestamp", "userText", "assistantText", CAST("sources" AS VARCHAR)
		FROM read_json('%s',
			format = 'newline_delimited',
			columns = {timestamp: 'VARCHAR', userText: 'VARCHAR', assistantText: 'VARCHAR', sources: 'JSON'})
	`, strings.ReplaceAll(path, "'", "''"))

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying log file: %w", err)
	}
	defer rows.Close()

	var out []logstore.Record
	for rows.Next() {
		var ts, user, assistant, sources sql.NullString
		if err := rows.Scan(&ts, &user, &assistant, &sources); err != nil {
			return nil, fmt.Errorf("scanning log row: %w", err)
		}
		rec := logstore.Record{
			Timestamp:     ts.String,
			UserText:      user.String,
			AssistantText: assistant.String,
		}
		if sources.Valid && sources.String != "" {
			if err := json.Unmarshal([]byte(sources.String), &rec.Sources); err != nil {
				observability.Logger().Warn("ignoring malformed sources", "timestamp", ts.String, "error", err)
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Convert reads in with r and writes the CSV to out, creating its directory.
// It returns the number of exported rows.
func Convert(ctx context.Context, r Reader, in, out string) (int, error) {
	rows, err := r.Read(ctx, in)
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return 0, fmt.Errorf("creating output dir: %w", err)
	}
	f, err := os.Create(out)
	if err != nil {
		return 0, fmt.Errorf("creating %s: %w", out, err)
	}
	if err := ToCSV(rows, f); err != nil {
		f.Close()
		return 0, fmt.Errorf("writing csv: %w", err)
	}
	if err := f.Close(); err != nil {
		return 0, err
	}

	observability.WithFields("in", in, "out", out).Info("exported logs", "rows", len(rows))
	return len(rows), nil
}
