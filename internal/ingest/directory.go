package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tymoteuszmilek/Invoice-Automation/constants"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/common"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/dedup"
)

// ListSources walks root and returns matching CSV files sorted by path.
func (i *FSIngestor) ListSources(root string) ([]string, DirStats, error) {
	var paths []string
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		stats.Scanned++
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			i.logger.Warn("skipping unreadable path", "path", path, "error", walkErr)
			stats.Failed++
			return nil
		}
		if i.skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !AllowedExt(filepath.Ext(path)) {
			return nil
		}
		stats.Matched++
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, stats, fmt.Errorf("walk: %w", err)
	}
	sort.Strings(paths)
	return paths, stats, nil
}

// ProcessDirectory cleans every CSV under root and writes the results into
// outDir. Files are read and cleaned in parallel; with global dedup scope the
// cleaning passes run afterwards in file order against one shared seen-set.
// A file that fails is reported in its FileResult and does not stop the run.
func (i *FSIngestor) ProcessDirectory(ctx context.Context, root, outDir string) ([]FileResult, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root path is required")
	}
	if strings.TrimSpace(outDir) == "" {
		return nil, DirStats{}, errors.New("output path is required")
	}
	if common.BatchIDFromContext(ctx) == "" {
		ctx = common.WithBatchID(ctx, uuid.NewString())
	}

	paths, stats, err := i.ListSources(root)
	if err != nil {
		return nil, stats, err
	}
	i.logger.Info("ingest.dir.start", "root", root, "files", len(paths), "scope", i.scope, "workers", i.workers)

	global := i.scope == constants.DedupGlobal
	staging := make([]*staged, len(paths))
	readErrs := make([]error, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(i.workers)
	for idx, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			st, err := i.read(gctx, path)
			st.result.Report.Source = outputName(root, path)
			staging[idx] = st
			if err != nil {
				readErrs[idx] = err
				return nil
			}
			if !global {
				i.clean(dedup.New(), st)
				readErrs[idx] = i.WriteResult(&st.result, root, outDir)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, stats, err
	}

	if global {
		shared := dedup.New()
		for idx, st := range staging {
			if readErrs[idx] != nil {
				continue
			}
			i.clean(shared, st)
			readErrs[idx] = i.WriteResult(&st.result, root, outDir)
		}
	}

	results := make([]FileResult, len(staging))
	for idx, st := range staging {
		res := st.result
		if err := readErrs[idx]; err != nil {
			res.Err = err.Error()
			res.Report.Err = err.Error()
			stats.Failed++
			i.metrics.IncrFile("failed")
		} else {
			stats.Succeeded++
			stats.RowsWritten += res.Report.RowsWritten
			stats.RowsDropped += res.Report.Dropped()
			i.metrics.ObserveBatch(res.Report)
			i.metrics.IncrFile("ok")
			i.logBatch(res.Report)
		}
		stats.RowsRead += res.Report.RowsRead
		results[idx] = res
	}

	i.logger.Info("ingest.dir.ok",
		"batch_id", common.BatchIDFromContext(ctx),
		"matched", stats.Matched,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
		"rows_read", stats.RowsRead,
		"rows_written", stats.RowsWritten,
	)
	return results, stats, nil
}
