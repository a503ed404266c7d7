package importer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/neilberkman/tabrider/internal/core/db"
	"github.com/neilberkman/tabrider/internal/core/models"
	"github.com/neilberkman/tabrider/internal/core/session"
	"github.com/neilberkman/tabrider/internal/logx"
	"github.com/neilberkman/tabrider/pkg/gssessions"
)

// Importer handles importing exported session files into the store
type Importer struct {
	db    *db.DB
	store *session.Store
}

// New creates a new importer
func New(database *db.DB, store *session.Store) *Importer {
	return &Importer{db: database, store: store}
}

// FileResult describes the outcome of importing one file
type FileResult struct {
	Path     string
	Parsed   int
	Imported int
	Skipped  bool // File was imported before
}

// ImportFile imports every session in one export file. Files already
// imported (by content hash) are skipped.
func (i *Importer) ImportFile(ctx context.Context, path string) (FileResult, error) {
	result := FileResult{Path: path}

	// Compute file hash
	hash, err := computeFileHash(path)
	if err != nil {
		return result, fmt.Errorf("failed to hash file: %w", err)
	}

	seen, err := i.db.HasImport(ctx, hash)
	if err != nil {
		return result, err
	}
	if seen {
		result.Skipped = true
		return result, nil
	}

	parsed, err := gssessions.ParseFile(path)
	if err != nil {
		return result, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	result.Parsed = len(parsed.Sessions)

	sessions := make([]models.Session, 0, len(parsed.Sessions))
	for _, ps := range parsed.Sessions {
		sessions = append(sessions, convert(ps, parsed.FileMtime))
	}

	imported, err := i.store.ImportSessions(ctx, sessions)
	if err != nil {
		return result, fmt.Errorf("failed to import %s: %w", path, err)
	}
	result.Imported = imported

	if err := i.db.RecordImport(ctx, path, hash, imported); err != nil {
		return result, err
	}
	return result, nil
}

// ImportFiles imports each file, reporting progress per file. A file that
// fails is logged and skipped.
func (i *Importer) ImportFiles(ctx context.Context, files []string, progress ProgressCallback) ([]FileResult, error) {
	log := logx.Ctx(ctx)
	var results []FileResult
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		res, err := i.ImportFile(ctx, file)
		if err != nil {
			log.Warn("import failed", "file", file, "err", err)
			continue
		}
		results = append(results, res)

		// Update progress
		if progress != nil {
			detail := fmt.Sprintf("%d of %d sessions new", res.Imported, res.Parsed)
			if res.Skipped {
				detail = "already imported"
			}
			progress.Update(filepath.Base(file), detail)
		}
	}
	if progress != nil {
		progress.Finish()
	}
	return results, nil
}

// FindExportFiles lists .json and .txt files under dirPath, or dirPath itself
// when it is a file
func FindExportFiles(dirPath string) ([]string, error) {
	info, err := os.Stat(dirPath)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{dirPath}, nil
	}

	var files []string
	err = filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		ext := strings.ToLower(filepath.Ext(path))
		if !info.IsDir() && (ext == ".json" || ext == ".txt") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}
	return files, nil
}

// convert maps a parsed session onto the store model. Missing ids get a
// fresh UUID and missing dates fall back to the file's modification time.
func convert(ps gssessions.ParsedSession, mtime time.Time) models.Session {
	s := models.Session{
		ID:      ps.ID,
		Name:    ps.Name,
		Date:    ps.Date,
		Windows: make([]models.Window, 0, len(ps.Windows)),
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Date.IsZero() {
		s.Date = mtime.UTC()
	}
	s.Date = s.Date.Truncate(time.Millisecond)

	for _, pw := range ps.Windows {
		w := models.Window{ID: pw.ID, Tabs: make([]models.Tab, 0, len(pw.Tabs))}
		for _, pt := range pw.Tabs {
			w.Tabs = append(w.Tabs, models.Tab{
				ID:      pt.ID,
				URL:     pt.URL,
				Title:   pt.Title,
				Pinned:  pt.Pinned,
				Favicon: pt.FavIconURL,
			})
		}
		if len(w.Tabs) > 0 {
			s.Windows = append(s.Windows, w)
		}
	}
	return s
}

func computeFileHash(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = file.Close()
	}()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}
