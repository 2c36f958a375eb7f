package index

import (
	"log/slog"
	"time"

	"github.com/starford/havenfs/internal/checksum"
	"github.com/starford/havenfs/internal/diag"
	"github.com/starford/havenfs/internal/document"
	"github.com/starford/havenfs/internal/storage"
)

// Sync walks the workspace and brings the index up to date:
//   - new/changed files are parsed and upserted
//   - files removed from disk are deleted from the index
func Sync(db DocumentIndex, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		res, err := IndexFile(db, m.Path, data)
		if err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		logger.Debug("sync: indexed",
			slog.String("path", m.Path),
			slog.Int("nodes", len(res.Nodes)),
			slog.Int("diagnostics", len(res.Diagnostics)))
	}

	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteDocument(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// IndexFile parses data and upserts the result for path.
func IndexFile(db DocumentIndex, path string, data []byte) (document.Result, error) {
	res := document.Parse(string(data), diag.NewSink())
	if err := db.UpsertDocument(path, checksum.Sum(data), res, time.Now()); err != nil {
		return res, err
	}
	return res, nil
}
