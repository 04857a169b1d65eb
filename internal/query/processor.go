package query

import (
	"container/list"
	"errors"
	"io"

	"github.com/nyxsearch/engine/internal/block"
	"github.com/nyxsearch/engine/internal/blockcache"
	"github.com/nyxsearch/engine/internal/chunk"
	"github.com/nyxsearch/engine/internal/docstore"
	"github.com/nyxsearch/engine/internal/scoring"
	"github.com/nyxsearch/engine/internal/termdir"
	"github.com/nyxsearch/engine/internal/tokenize"
)

// ErrUnknownAlgorithm is returned when a Processor is configured with
// an algorithm name outside boolean|wand|bmw|bmms|ms (spec §6, §7
// ConfigError).
var ErrUnknownAlgorithm = errors.New("query: unknown retrieval algorithm")

// Algorithm names accepted by Processor.SetAlgorithm, matching the
// config file's algorithm field (spec §6).
const (
	AlgorithmBoolean = "boolean"
	AlgorithmWAND    = "wand"
	AlgorithmBMW     = "bmw"
	AlgorithmMaxScr  = "ms"
	AlgorithmBMMS    = "bmms"
)

// Result is one ranked document: its score and its stored metadata.
type Result struct {
	DocID    uint32
	Score    float64
	Metadata docstore.Metadata
}

// Processor wires tokenization, the term directory, the block cache,
// and a configured retrieval algorithm into the query path described
// in spec §4.12. Not safe for concurrent use: the block cache and
// query cache it owns are single-threaded resources (spec §5).
type Processor struct {
	dir           *termdir.Directory
	docs          *docstore.Store
	indexFile     io.ReaderAt
	blockCapacity int
	blocks        blockcache.Cache
	params        scoring.Params
	k             int
	algorithm     string

	queryCache *queryCache
}

// NewProcessor builds a query processor. blockCapacity should match
// the capacity blocks were written with during merge (spec §4.3).
func NewProcessor(dir *termdir.Directory, docs *docstore.Store, indexFile io.ReaderAt, blockCapacity int, blocks blockcache.Cache, algorithm string, params scoring.Params) (*Processor, error) {
	switch algorithm {
	case AlgorithmBoolean, AlgorithmWAND, AlgorithmBMW, AlgorithmMaxScr, AlgorithmBMMS:
	default:
		return nil, ErrUnknownAlgorithm
	}
	if blocks == nil {
		blocks = blockcache.NewLFU(blockcache.DefaultCapacity)
	}
	return &Processor{
		dir:           dir,
		docs:          docs,
		indexFile:     indexFile,
		blockCapacity: blockCapacity,
		blocks:        blocks,
		params:        params,
		k:             20,
		algorithm:     algorithm,
		queryCache:    newQueryCache(100),
	}, nil
}

// SetK overrides the default top-k cutoff (spec §4.11 "k≈20").
func (p *Processor) SetK(k int) { p.k = k }

// Query tokenizes text, drops stop-words and terms unknown to the
// directory, runs the configured algorithm over the surviving terms,
// and translates the top-k doc_ids to DocumentMetadata (spec §4.12).
// An empty result (not an error) is returned if no query term is
// known to the directory (spec §7).
func (p *Processor) Query(text string) ([]Result, error) {
	if cached, ok := p.queryCache.get(text); ok {
		return p.translate(cached), nil
	}

	terms := tokenize.TokenizeQuery(text)
	var its []Iterator
	for _, term := range terms {
		meta, ok := p.dir.GetTermMetadata(term)
		if !ok {
			continue
		}
		chunks, err := p.chunksForTerm(meta.TermID, meta.BlockIDs)
		if err != nil {
			return nil, err
		}
		its = append(its, NewTermIterator(meta.TermID, meta.Ft, meta.MaxScore, chunks, meta.ChunkBlockMax, p.params))
	}
	if len(its) == 0 {
		return nil, nil
	}

	n := p.docs.DocCount()
	avgLen := p.docs.AvgLen
	docLen := func(docID uint32) float64 { return float64(p.docs.Length(docID)) }

	var scored []ScoredDoc
	switch p.algorithm {
	case AlgorithmBoolean:
		scored = ConjunctiveAND(its, p.k, n, docLen, avgLen)
	case AlgorithmWAND:
		scored = WAND(its, p.k, n, docLen, avgLen)
	case AlgorithmBMW:
		scored = BlockMaxWAND(its, p.k, n, docLen, avgLen)
	case AlgorithmMaxScr:
		scored = MaxScore(its, p.k, n, docLen, avgLen)
	case AlgorithmBMMS:
		scored = BlockMaxMaxScore(its, p.k, n, docLen, avgLen)
	}

	p.queryCache.put(text, scored)
	return p.translate(scored), nil
}

func (p *Processor) translate(scored []ScoredDoc) []Result {
	out := make([]Result, 0, len(scored))
	for _, s := range scored {
		meta, _ := p.docs.Get(s.DocID)
		out = append(out, Result{DocID: s.DocID, Score: s.Score, Metadata: meta})
	}
	return out
}

// chunksForTerm decodes (fetching from cache where possible) every
// chunk belonging to termID across its recorded block list, in order.
func (p *Processor) chunksForTerm(termID uint32, blockIDs []uint32) ([]*chunk.Decoded, error) {
	var all []*chunk.Decoded
	for _, bid := range blockIDs {
		dec, ok := p.blocks.Get(int(bid))
		if !ok {
			var err error
			dec, err = block.Decode(p.indexFile, int(bid), p.blockCapacity)
			if err != nil {
				return nil, err
			}
			p.blocks.Put(int(bid), dec)
		}
		idx := dec.CheckIfTermExists(termID)
		if idx < 0 {
			continue
		}
		chunks, err := dec.DecodeChunksForTerm(idx)
		if err != nil {
			return nil, err
		}
		all = append(all, chunks...)
	}
	return all, nil
}

// queryCache is a small bounded LRU of query text -> top-k results
// (spec §4.12 step 5).
type queryCache struct {
	capacity int
	ll       *list.List
	items    map[string]*list.Element
}

type queryCacheEntry struct {
	query   string
	results []ScoredDoc
}

func newQueryCache(capacity int) *queryCache {
	return &queryCache{capacity: capacity, ll: list.New(), items: make(map[string]*list.Element)}
}

func (c *queryCache) get(query string) ([]ScoredDoc, bool) {
	el, ok := c.items[query]
	if !ok {
		return nil, false
	}
	c.ll.MoveToFront(el)
	return el.Value.(*queryCacheEntry).results, true
}

func (c *queryCache) put(query string, results []ScoredDoc) {
	if el, ok := c.items[query]; ok {
		el.Value.(*queryCacheEntry).results = results
		c.ll.MoveToFront(el)
		return
	}
	if c.ll.Len() >= c.capacity {
		back := c.ll.Back()
		if back != nil {
			c.ll.Remove(back)
			delete(c.items, back.Value.(*queryCacheEntry).query)
		}
	}
	el := c.ll.PushFront(&queryCacheEntry{query: query, results: results})
	c.items[query] = el
}
