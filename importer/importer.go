// Package importer runs statement parsers over the configured input
// sources and groups the resulting transaction records by destination
// journal file. Parsing is the only concurrent phase of a run: one bounded
// task per source document, fork-join, results concatenated.
package importer

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/robinvdvleuten/ledgerimport/assign"
	"github.com/robinvdvleuten/ledgerimport/logging"
	"github.com/robinvdvleuten/ledgerimport/record"
)

// Parser extracts transaction records from one statement document. Every
// record must be tagged with the document path it came from. A parser must
// return an error instead of partial or ambiguous records; the error is
// fatal for the whole run.
type Parser interface {
	Parse(ctx context.Context, document string) ([]record.TransactionRecord, error)
}

// Input is one configured statement source: a directory of documents
// handled by a single parser.
type Input struct {
	Name   string
	Source string
	Parser Parser
}

// ParseAll parses every document of every input over a bounded worker pool
// and groups the records by destination journal file. Records keep their
// parser emission order within a document; documents are visited in sorted
// path order, so grouping is deterministic for a given input tree.
func ParseAll(ctx context.Context, inputs []Input, workers int) (*assign.Groups, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	logger := logging.FromContext(ctx)

	type task struct {
		input    int
		document string
	}
	var tasks []task
	for i, input := range inputs {
		logger.Info().Str("input", input.Name).Msg("parsing")
		documents, err := listDocuments(input.Source)
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", input.Name, err)
		}
		for _, doc := range documents {
			tasks = append(tasks, task{input: i, document: doc})
		}
	}

	results := make([][]record.TransactionRecord, len(tasks))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, tk := range tasks {
		g.Go(func() error {
			records, err := inputs[tk.input].Parser.Parse(gctx, tk.document)
			if err != nil {
				return fmt.Errorf("parsing %s: %w", tk.document, err)
			}
			mu.Lock()
			results[i] = records
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	groups := assign.NewGroups()
	for _, records := range results {
		for _, rec := range records {
			groups.Add(Destination(rec.Document()), rec)
		}
	}
	return groups, nil
}

// listDocuments returns the regular files under source, sorted by path.
func listDocuments(source string) ([]string, error) {
	var documents []string
	err := filepath.WalkDir(source, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && !strings.HasPrefix(d.Name(), ".") {
			documents = append(documents, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(documents)
	return documents, nil
}

// Destination derives the output journal path for a source document: the
// document's parent directory becomes the output subdirectory and the
// filename stem gets a .journal suffix.
func Destination(source string) string {
	dir := filepath.Base(filepath.Dir(source))
	name := filepath.Base(source)
	if ext := filepath.Ext(name); ext != "" {
		name = strings.TrimSuffix(name, ext)
	}
	return filepath.Join(dir, name+".journal")
}
