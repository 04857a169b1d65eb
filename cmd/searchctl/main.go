// Command searchctl is the engine's CLI collaborator (spec §6): an
// interactive REPL exposing the index, merge, save, load, query,
// metadata, terms, and quit verbs over a dataset/index directory pair
// named by a JSON config file, in the style of the teacher's flag
// parsing and log.Printf progress lines (cmd/cindex/cindex.go).
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/nyxsearch/engine/internal/blockcache"
	"github.com/nyxsearch/engine/internal/config"
	"github.com/nyxsearch/engine/internal/docstore"
	"github.com/nyxsearch/engine/internal/ingest"
	"github.com/nyxsearch/engine/internal/merge"
	"github.com/nyxsearch/engine/internal/query"
	"github.com/nyxsearch/engine/internal/scoring"
	"github.com/nyxsearch/engine/internal/termdir"
)

var usageMessage = `usage: searchctl -config config.json

Searchctl runs an interactive session over the engine named by
config.json's dataset_dir and index_dir. At the '> ' prompt:

	index             tokenize dataset_dir, write SPIMI run files
	merge             k-way merge the runs into inverted_index.idx
	save              persist the term directory and document metadata
	load              open a previously saved index for querying
	query <terms>     run a top-k query against the loaded index
	metadata          print corpus-wide statistics
	terms             print the number of distinct indexed terms
	quit              exit

index and merge must run in the same session (merge consumes the run
files index just wrote); save/load may run in any later session.
`

func usage() {
	fmt.Fprint(os.Stderr, usageMessage)
	os.Exit(2)
}

const (
	indexFileName = "inverted_index.idx"
	termDirName   = "term_metadata.sidx"
	docMetaName   = "document_metadata.sidx"
)

func main() {
	configPath := flag.String("config", "", "path to JSON config file")
	flag.Usage = usage
	flag.Parse()
	if *configPath == "" || flag.NArg() != 0 {
		usage()
	}

	log.SetPrefix("searchctl: ")
	log.SetFlags(0)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	sess := &session{cfg: cfg}
	defer sess.close()

	sc := bufio.NewScanner(os.Stdin)
	fmt.Fprint(os.Stdout, "> ")
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" {
			if quit := sess.dispatch(line); quit {
				return
			}
		}
		fmt.Fprint(os.Stdout, "> ")
	}
}

// session holds the state one REPL carries across verbs: the runs and
// document metadata produced by `index`, the directory produced by
// `merge` or `load`, and the query processor, which only `load` builds.
type session struct {
	cfg config.Config

	runs []string
	docs *docstore.Store

	dir       *termdir.Directory
	indexFile *os.File
	proc      *query.Processor
}

func (s *session) close() {
	if s.indexFile != nil {
		s.indexFile.Close()
	}
}

func (s *session) dispatch(line string) (quit bool) {
	fields := strings.Fields(line)
	verb := fields[0]
	switch verb {
	case "index":
		s.runIndex()
	case "merge":
		s.runMerge()
	case "save":
		s.runSave()
	case "load":
		s.runLoad()
	case "query":
		s.runQuery(strings.TrimSpace(strings.TrimPrefix(line, verb)))
	case "metadata":
		s.runMetadata()
	case "terms":
		s.runTerms()
	case "quit":
		return true
	default:
		fmt.Fprintf(os.Stdout, "unknown command %q\n", verb)
	}
	return false
}

func (s *session) runIndex() {
	if err := os.MkdirAll(s.cfg.IndexDir, 0o755); err != nil {
		log.Print(err)
		return
	}
	log.Printf("index %s", s.cfg.DatasetDir)
	res, err := ingest.BuildFromDir(context.Background(), s.cfg.DatasetDir, s.cfg.IndexDir, ingest.Config{
		Producers:    s.cfg.Producers,
		MaxDictTerms: s.cfg.MaxDictTerms,
	})
	if err != nil {
		log.Print(err)
		return
	}
	s.runs = res.Runs
	s.docs = res.Docs
	log.Printf("done: %d documents, %d runs", res.Docs.DocCount(), len(res.Runs))
}

func (s *session) runMerge() {
	if s.docs == nil || len(s.runs) == 0 {
		fmt.Fprintln(os.Stdout, "nothing to merge; run index first")
		return
	}
	path := filepath.Join(s.cfg.IndexDir, indexFileName)
	f, err := os.Create(path)
	if err != nil {
		log.Print(err)
		return
	}
	defer f.Close()

	log.Printf("merge %d runs", len(s.runs))
	dir, err := merge.Merge(s.runs, s.docs, s.docs.AvgLen, f, merge.Config{
		Codec:         s.cfg.CodecKind(),
		BlockCapacity: s.cfg.BlockCapacity,
		Params:        scoring.DefaultParams,
		WithPositions: true,
	})
	if err != nil {
		log.Print(err)
		return
	}
	s.dir = dir
	log.Printf("done: %d terms, %d blocks", dir.TermCount(), dir.BlockCount())
}

func (s *session) runSave() {
	if s.dir == nil || s.docs == nil {
		fmt.Fprintln(os.Stdout, "nothing to save; run merge first")
		return
	}
	if err := saveFile(filepath.Join(s.cfg.IndexDir, termDirName), s.dir.Save); err != nil {
		log.Print(err)
		return
	}
	if err := saveFile(filepath.Join(s.cfg.IndexDir, docMetaName), s.docs.Save); err != nil {
		log.Print(err)
		return
	}
	log.Printf("saved %s, %s", termDirName, docMetaName)
}

func saveFile(path string, write func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return write(f)
}

func (s *session) runLoad() {
	dir, err := loadFile(filepath.Join(s.cfg.IndexDir, termDirName), termdir.Load)
	if err != nil {
		log.Print(err)
		return
	}
	docs, err := loadFile(filepath.Join(s.cfg.IndexDir, docMetaName), docstore.Load)
	if err != nil {
		log.Print(err)
		return
	}

	if s.indexFile != nil {
		s.indexFile.Close()
	}
	f, err := os.Open(filepath.Join(s.cfg.IndexDir, indexFileName))
	if err != nil {
		log.Print(err)
		return
	}

	cache := newCache(s.cfg.CachePolicy, s.cfg.CacheCapacity)
	proc, err := query.NewProcessor(dir, docs, f, s.cfg.BlockCapacity, cache, s.cfg.Algorithm, scoring.DefaultParams)
	if err != nil {
		f.Close()
		log.Print(err)
		return
	}
	if s.cfg.TopK > 0 {
		proc.SetK(s.cfg.TopK)
	}

	s.dir = dir
	s.docs = docs
	s.indexFile = f
	s.proc = proc
	log.Printf("loaded %d terms, %d documents", dir.TermCount(), docs.DocCount())
}

func loadFile[T any](path string, load func(r io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, err
	}
	defer f.Close()
	return load(f)
}

func newCache(policy string, capacity int) blockcache.Cache {
	if capacity <= 0 {
		capacity = blockcache.DefaultCapacity
	}
	switch policy {
	case "lru":
		return blockcache.NewLRU(capacity)
	case "landlord":
		return blockcache.NewLandlord(capacity)
	default:
		return blockcache.NewLFU(capacity)
	}
}

func (s *session) runQuery(text string) {
	if s.proc == nil {
		fmt.Fprintln(os.Stdout, "no index loaded; run load first")
		return
	}
	if text == "" {
		fmt.Fprintln(os.Stdout, "usage: query <terms>")
		return
	}
	results, err := s.proc.Query(text)
	if err != nil {
		log.Print(err)
		return
	}
	if len(results) == 0 {
		fmt.Fprintln(os.Stdout, "no results")
		return
	}
	for i, r := range results {
		fmt.Fprintf(os.Stdout, "%2d. [%d] %.4f  %s  %s\n", i+1, r.DocID, r.Score, r.Metadata.Name, r.Metadata.URL)
	}
}

func (s *session) runMetadata() {
	if s.docs == nil {
		fmt.Fprintln(os.Stdout, "no corpus loaded")
		return
	}
	fmt.Fprintf(os.Stdout, "documents: %d\naverage length: %.2f\n", s.docs.DocCount(), s.docs.AvgLen)
	if s.dir != nil {
		fmt.Fprintf(os.Stdout, "blocks: %d\nterms: %d\n", s.dir.BlockCount(), s.dir.TermCount())
	}
}

func (s *session) runTerms() {
	if s.dir == nil {
		fmt.Fprintln(os.Stdout, "no term directory loaded")
		return
	}
	fmt.Fprintf(os.Stdout, "%d distinct terms\n", s.dir.TermCount())
}
