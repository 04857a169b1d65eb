// Package ingest drives the build-phase concurrency model of spec §5:
// P producer goroutines read and tokenize the dataset's compressed
// newline-delimited JSON article files in parallel, reserving doc_id
// ranges from a shared atomic counter and pushing batches of Terms
// through a bounded channel to the single consumer goroutine that owns
// the SPIMI dictionary (internal/spimi.Builder).
package ingest

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/nyxsearch/engine/internal/docstore"
	"github.com/nyxsearch/engine/internal/spimi"
	"github.com/nyxsearch/engine/internal/tokenize"
)

// Record is one input article: {url, title, text} per spec §1. JSON
// parsing of this shape is an out-of-core collaborator; this type is
// the minimal contract the rest of the build pipeline needs from it.
type Record struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Config tunes the producer/consumer pipeline.
type Config struct {
	Producers    int // default 2 (spec §5)
	BatchSize    int // Terms per channel send, default 256
	ChannelDepth int // batches buffered, default 10 (spec §5)
	MaxDictTerms int // forwarded to spimi.NewBuilder
}

func (c Config) withDefaults() Config {
	if c.Producers <= 0 {
		c.Producers = 2
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 256
	}
	if c.ChannelDepth <= 0 {
		c.ChannelDepth = 10
	}
	return c
}

// Result is the build's output: the flushed SPIMI run paths and the
// frozen document metadata store ready for persistence.
type Result struct {
	Runs   []string
	Docs   *docstore.Store
	AvgLen float64
}

// BuildFromDir walks datasetDir for `.gz` article files,
// partitions them across cfg.Producers goroutines (bounded further by
// a semaphore when there are many more files than workers), tokenizes
// each record's title+text, and feeds the single consumer goroutine
// that owns spimi.Builder and flushes `.tmpidx` run files into
// indexDir. Any producer or consumer I/O error aborts the whole build
// (spec §4.6 "any error is fatal"), propagated via errgroup.
func BuildFromDir(ctx context.Context, datasetDir, indexDir string, cfg Config) (Result, error) {
	cfg = cfg.withDefaults()

	files, err := listArticleFiles(datasetDir)
	if err != nil {
		return Result{}, err
	}

	docs := docstore.NewBuilder()
	builder := spimi.NewBuilder(indexDir, cfg.MaxDictTerms)

	batches := make(chan spimi.Batch, cfg.ChannelDepth)
	sem := semaphore.NewWeighted(int64(cfg.Producers))

	// Producers run in their own group so the channel can be closed
	// the instant every producer has returned, independent of when
	// the consumer below finishes draining it. pctx is also cancelled
	// if the consumer fails, so producers blocked sending on a full
	// channel unblock instead of deadlocking.
	producers, pgctx := errgroup.WithContext(ctx)
	pctx, cancel := context.WithCancel(pgctx)
	defer cancel()
	for _, path := range files {
		path := path
		producers.Go(func() error {
			if err := sem.Acquire(pctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)
			return produceFile(pctx, path, docs, batches, cfg.BatchSize)
		})
	}

	var consumeErr error
	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		for batch := range batches {
			if err := builder.Add(batch); err != nil {
				consumeErr = fmt.Errorf("ingest: flush run: %w", err)
				cancel()
				return
			}
		}
	}()

	produceErr := producers.Wait()
	close(batches)
	<-consumerDone

	if produceErr != nil {
		return Result{}, produceErr
	}
	if consumeErr != nil {
		return Result{}, consumeErr
	}

	if err := builder.Flush(); err != nil {
		return Result{}, fmt.Errorf("ingest: final flush: %w", err)
	}

	store := docs.Freeze()
	return Result{Runs: builder.Runs(), Docs: store, AvgLen: store.AvgLen}, nil
}

// produceFile reads one gzip-compressed ndjson file record by record,
// reserves its doc_id range up front (range size = record count; the
// range starts at 1 for the corpus's very first document, per spec
// §3's "doc_id ≥ 1"), and emits one Term batch at a time to out.
func produceFile(ctx context.Context, path string, docs *docstore.Builder, out chan<- spimi.Batch, batchSize int) error {
	records, err := readRecords(path)
	if err != nil {
		return fmt.Errorf("ingest: read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil
	}

	first := docs.Reserve(len(records))
	metas := make([]docstore.Metadata, len(records))

	batch := make(spimi.Batch, 0, batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		select {
		case out <- batch:
		case <-ctx.Done():
			return ctx.Err()
		}
		batch = make(spimi.Batch, 0, batchSize)
		return nil
	}

	for i, rec := range records {
		docID := first + uint32(i)
		tokens := tokenize.IndexTerms(rec.Title + " " + rec.Text)
		metas[i] = docstore.Metadata{Name: rec.Title, URL: rec.URL, Length: uint32(len(tokens))}

		positions := make(map[string][]uint32, len(tokens))
		order := make([]string, 0, len(tokens))
		for _, tok := range tokens {
			if _, ok := positions[tok.Word]; !ok {
				order = append(order, tok.Word)
			}
			positions[tok.Word] = append(positions[tok.Word], uint32(tok.Position))
		}
		sort.Strings(order)
		for _, word := range order {
			batch = append(batch, spimi.Term{Word: word, DocID: docID, Positions: positions[word]})
			if len(batch) >= batchSize {
				if err := flush(); err != nil {
					return err
				}
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}

	docs.AddFile(first, metas)
	return nil
}

// listArticleFiles returns every `.gz` file directly under dir,
// sorted for deterministic doc_id assignment across runs.
func listArticleFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("ingest: read dataset dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if filepath.Ext(e.Name()) != ".gz" {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// readRecords decompresses and decodes one gzip ndjson article file in
// full. Each line is one JSON-encoded Record.
func readRecords(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	var records []Record
	sc := bufio.NewScanner(zr)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("malformed record: %w", err)
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil && err != io.EOF {
		return nil, err
	}
	return records, nil
}
