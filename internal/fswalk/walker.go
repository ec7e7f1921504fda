// Package fswalk implements the asynchronous filesystem search backend.
// A walk runs in its own goroutine, streams matching entries upstream in
// generation-tagged batches, and stops cooperatively when its context is
// cancelled. The consumer discards batches whose generation is stale.
package fswalk

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/runger/flit/internal/fuzzy"
)

// PathRef identifies a filesystem entry. Identity is the path itself.
type PathRef struct {
	Path  string // absolute
	IsDir bool
}

// Entry is a path candidate matched against the walk's query. Display is
// the root-relative path; Positions are rune indexes into Display
// marking the matched filename characters.
type Entry struct {
	Ref       PathRef
	Display   string
	Score     int
	Positions []int
}

// Msg is a message from a walk to the event loop: either a Batch of
// entries or a Done marker. Both carry the walk's generation.
type Msg interface{ Generation() uint64 }

// Batch carries discovered entries, in discovery order.
type Batch struct {
	Gen     uint64
	Entries []Entry
}

// Generation implements Msg.
func (b Batch) Generation() uint64 { return b.Gen }

// Done signals the end of a walk. Err is non-nil only when the root
// itself could not be read; per-subdirectory errors are swallowed.
type Done struct {
	Gen uint64
	Err error
}

// Generation implements Msg.
func (d Done) Generation() uint64 { return d.Gen }

const (
	defaultBatchSize = 64
	flushInterval    = 50 * time.Millisecond
)

// Walker produces path candidates under Root. Each call to Walk starts a
// fresh traversal; there is no resumption of prior walks.
type Walker struct {
	Root       string
	MaxDepth   int  // 0 = unlimited
	ShowHidden bool // include dot-prefixed entries
	IgnoreDirs map[string]bool
	BatchSize  int
}

// New returns a Walker over root.
func New(root string, maxDepth int, showHidden bool, ignoreDirs []string) *Walker {
	ignore := make(map[string]bool, len(ignoreDirs))
	for _, d := range ignoreDirs {
		ignore[d] = true
	}
	return &Walker{
		Root:       root,
		MaxDepth:   maxDepth,
		ShowHidden: showHidden,
		IgnoreDirs: ignore,
	}
}

// Walk starts a traversal for the given generation and query in a new
// goroutine and returns immediately. Matching entries stream to out as
// Batch messages; a final Done message always follows, unless the
// context is cancelled first. The walker never closes out: the channel
// is shared across generations.
func (w *Walker) Walk(ctx context.Context, gen uint64, query string, out chan<- Msg) {
	go w.run(ctx, gen, query, out)
}

func (w *Walker) run(ctx context.Context, gen uint64, query string, out chan<- Msg) {
	s := &walkState{
		walker:    w,
		ctx:       ctx,
		gen:       gen,
		query:     query,
		out:       out,
		batchSize: w.BatchSize,
		lastFlush: time.Now(),
	}
	if s.batchSize <= 0 {
		s.batchSize = defaultBatchSize
	}

	// A root that cannot be read at all is a terminal error for this
	// search generation.
	if _, err := os.ReadDir(w.Root); err != nil {
		s.send(Done{Gen: gen, Err: err})
		return
	}

	s.walkDir(w.Root, 1)
	if ctx.Err() != nil {
		return // cancelled: stop publishing, the generation is stale
	}
	s.flush()
	s.send(Done{Gen: gen})
}

type walkState struct {
	walker    *Walker
	ctx       context.Context
	gen       uint64
	query     string
	out       chan<- Msg
	batch     []Entry
	batchSize int
	lastFlush time.Time
}

// walkDir traverses dir depth-first. Unreadable directories are skipped
// silently; cancellation is checked per directory and per entry.
func (s *walkState) walkDir(dir string, depth int) {
	if s.ctx.Err() != nil {
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	for _, entry := range entries {
		if s.ctx.Err() != nil {
			return
		}

		name := entry.Name()
		if !s.walker.ShowHidden && strings.HasPrefix(name, ".") {
			continue
		}

		full := filepath.Join(dir, name)
		isDir := entry.IsDir() // false for symlinks to directories: never followed

		s.consider(full, name, isDir)

		if !isDir || s.walker.IgnoreDirs[name] {
			continue
		}
		if s.walker.MaxDepth > 0 && depth >= s.walker.MaxDepth {
			continue
		}
		s.walkDir(full, depth+1)
	}

	// Keep partial results flowing even through sparse subtrees.
	if len(s.batch) > 0 && time.Since(s.lastFlush) >= flushInterval {
		s.flush()
	}
}

// consider matches a discovered entry's filename against the query and
// queues it for publication.
func (s *walkState) consider(full, name string, isDir bool) {
	m, ok := fuzzy.Score(s.query, name)
	if !ok {
		return
	}

	display, err := filepath.Rel(s.walker.Root, full)
	if err != nil {
		display = full
	}

	// Positions refer to the filename; shift them to the display path.
	offset := utf8.RuneCountInString(display) - utf8.RuneCountInString(name)
	positions := m.Positions
	if offset > 0 && len(positions) > 0 {
		positions = make([]int, len(m.Positions))
		for i, p := range m.Positions {
			positions[i] = p + offset
		}
	}

	s.batch = append(s.batch, Entry{
		Ref:       PathRef{Path: full, IsDir: isDir},
		Display:   display,
		Score:     m.Score,
		Positions: positions,
	})
	if len(s.batch) >= s.batchSize {
		s.flush()
	}
}

func (s *walkState) flush() {
	if len(s.batch) == 0 {
		return
	}
	entries := make([]Entry, len(s.batch))
	copy(entries, s.batch)
	s.batch = s.batch[:0]
	s.lastFlush = time.Now()
	s.send(Batch{Gen: s.gen, Entries: entries})
}

// send delivers a message unless the walk has been cancelled. Blocking
// here is fine: the consumer drains the channel between redraws.
func (s *walkState) send(msg Msg) {
	if s.ctx.Err() != nil {
		return
	}
	select {
	case s.out <- msg:
	case <-s.ctx.Done():
	}
}
