package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// tables lists everything a snapshot covers, in dump order.
var tables = []string{
	"patients",
	"doctors",
	"beds",
	"visits",
	"admissions",
	"billing_charges",
	"payments",
	"audit_logs",
	"ot_procedures",
}

// Metadata describes one snapshot file.
type Metadata struct {
	Name      string         `json:"backup_name"`
	CreatedAt time.Time      `json:"backup_date"`
	Version   string         `json:"version"`
	Path      string         `json:"path,omitempty"`
	SizeBytes int64          `json:"size_bytes,omitempty"`
	RowCounts map[string]int `json:"row_counts,omitempty"`
}

// Service writes full-database JSON snapshots. Rows are serialized by the
// database itself with json_agg, so the export never lags behind schema
// changes.
type Service struct {
	pool *pgxpool.Pool
	dir  string
	log  zerolog.Logger
	now  func() time.Time
}

func NewService(pool *pgxpool.Pool, dir string, log zerolog.Logger) *Service {
	return &Service{
		pool: pool,
		dir:  dir,
		log:  log.With().Str("component", "backup").Logger(),
		now:  time.Now,
	}
}

// Create dumps every table to one JSON file under the backup directory. An
// empty name derives one from the timestamp.
func (s *Service) Create(ctx context.Context, name string) (*Metadata, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("backup dir: %w", err)
	}

	created := s.now()
	if name == "" {
		name = "hospital_backup_" + created.Format("20060102_150405")
	}
	if strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("backup name must not contain path separators")
	}

	meta := Metadata{
		Name:      name,
		CreatedAt: created,
		Version:   "1.0",
		RowCounts: make(map[string]int, len(tables)),
	}

	dump := map[string]interface{}{"backup_metadata": meta}
	for _, table := range tables {
		rows, count, err := s.dumpTable(ctx, table)
		if err != nil {
			return nil, fmt.Errorf("dump %s: %w", table, err)
		}
		dump[table] = rows
		meta.RowCounts[table] = count
	}
	dump["backup_metadata"] = meta

	path := filepath.Join(s.dir, name+".json")
	data, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return nil, fmt.Errorf("write backup: %w", err)
	}

	meta.Path = path
	meta.SizeBytes = int64(len(data))
	s.log.Info().Str("name", name).Int64("size_bytes", meta.SizeBytes).Msg("backup created")
	return &meta, nil
}

func (s *Service) dumpTable(ctx context.Context, table string) (json.RawMessage, int, error) {
	var rows json.RawMessage
	var count int
	// table comes from the fixed list above, never from input.
	query := fmt.Sprintf(`SELECT COALESCE(json_agg(t), '[]'::json), COUNT(*) FROM %s t`, table)
	if err := s.pool.QueryRow(ctx, query).Scan(&rows, &count); err != nil {
		return nil, 0, err
	}
	return rows, count, nil
}

// List returns the snapshots on disk, newest first.
func (s *Service) List() ([]Metadata, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var out []Metadata
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		out = append(out, Metadata{
			Name:      strings.TrimSuffix(entry.Name(), ".json"),
			CreatedAt: info.ModTime(),
			Path:      filepath.Join(s.dir, entry.Name()),
			SizeBytes: info.Size(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
