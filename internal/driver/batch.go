package driver

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Mo-Gul/asciidoctor-reducer/internal/reduce"
)

// BatchResult holds the outcome for one document of a batch run.
type BatchResult struct {
	Path   string // path relative to the batch root
	Result *Result
	Err    error // load failure; Result is nil when set
}

// listDocFiles returns the sorted list of *.adoc and *.asciidoc files under dir.
func listDocFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(path, ".adoc") || strings.HasSuffix(path, ".asciidoc") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// deterministic order
	sort.Strings(files)
	return files, nil
}

// ReduceDir reduces every AsciiDoc document under dir in parallel. Each
// document gets its own reducer, file set, and bag, so no coordination is
// needed between workers. jobs <= 0 selects GOMAXPROCS.
func ReduceDir(ctx context.Context, dir string, opts reduce.Options, jobs int) ([]BatchResult, error) {
	files, err := listDocFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// per-index slots; no mutex needed
	results := make([]BatchResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			rel, relErr := filepath.Rel(dir, path)
			if relErr != nil {
				rel = path
			}
			res, err := ReduceFile(path, opts)
			results[i] = BatchResult{Path: rel, Result: res, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
