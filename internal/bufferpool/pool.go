// Package bufferpool implements an in-memory cache of fixed-size disk pages
// sitting between higher-level access methods and the on-disk File
// abstraction in internal/storage. It amortizes disk I/O, guarantees at
// most one resident copy of any (File, PageNum) pair, and arbitrates frame
// allocation under memory pressure with a single-sweep clock replacement
// policy.
//
// The manager is specified single-threaded: callers running it from more
// than one goroutine must serialize their own access (see DESIGN.md).
package bufferpool

import (
	"fmt"
	"log/slog"

	"github.com/tuannm-lab/pagedb/internal/storage"
	"github.com/tuannm-lab/pagedb/pkg/clockx"
)

// Manager is the set of operations a caller (a heap file, an index, a
// manual-test REPL) drives the buffer pool through.
type Manager interface {
	ReadPage(file storage.File, pageNo storage.PageNum) (*storage.Page, error)
	AllocPage(file storage.File) (storage.PageNum, *storage.Page, error)
	UnpinPage(file storage.File, pageNo storage.PageNum, dirty bool) error
	FlushFile(file storage.File) error
	DisposePage(file storage.File, pageNo storage.PageNum) error
	PrintSelf()
	Close() error
}

// Pool is the buffer pool manager: a frame table, a parallel page pool, a
// (file, pageNo) -> frame directory, and a clock hand shared by all three.
type Pool struct {
	log *slog.Logger

	frames []*frame
	pages  []storage.Page
	dir    *directory
	hand   *clockx.Hand
}

var _ Manager = (*Pool)(nil)

// New constructs a pool of numBufs frames. log may be nil, in which case
// slog.Default() is used.
func New(numBufs int, log *slog.Logger) *Pool {
	if numBufs <= 0 {
		numBufs = 1
	}
	if log == nil {
		log = slog.Default()
	}

	p := &Pool{
		log:    log,
		frames: make([]*frame, numBufs),
		pages:  make([]storage.Page, numBufs),
		dir:    newDirectory(numBufs),
		hand:   clockx.New(numBufs),
	}
	for i := range p.frames {
		p.frames[i] = newFrame(i)
	}
	return p
}

// allocBuf finds a free or evictable frame per the single-sweep clock
// policy and returns its index. The returned frame is guaranteed invalid,
// with no directory mapping, ready to receive a new page.
//
// The sweep terminates with ErrBufferExceeded only once pinSeen reaches
// numBufs, i.e. numBufs consecutive advances have each landed on a pinned
// frame, confirming every frame is pinned. Clearing a refbit resets that
// tally, so a frame whose refbit is cleared on this pass can still be
// evicted on the very next advance that reaches it.
func (p *Pool) allocBuf() (int, error) {
	numBufs := len(p.frames)
	pinSeen := 0

	for pinSeen < numBufs {
		idx := p.hand.Advance()
		f := p.frames[idx]

		switch {
		case !f.valid:
			return idx, nil

		case f.refbit:
			f.refbit = false
			pinSeen = 0
			continue

		case f.pinCnt > 0:
			pinSeen++
			continue

		default:
			if f.dirty {
				if err := f.file.WritePage(p.pages[idx]); err != nil {
					return 0, fmt.Errorf("bufferpool: write back frame %d: %w", idx, err)
				}
				f.dirty = false
				p.log.Debug("bufferpool: dirty page written back", "frame", idx, "page", f.pageNo)
			}
			p.log.Debug("bufferpool: page evicted", "frame", idx, "page", f.pageNo)
			p.dir.remove(f.file, f.pageNo)
			f.clear()
			return idx, nil
		}
	}
	return 0, ErrBufferExceeded
}

// ReadPage pins and returns a stable pointer to the in-memory image of
// (file, pageNo). The pointer is valid only while the caller holds the pin.
func (p *Pool) ReadPage(file storage.File, pageNo storage.PageNum) (*storage.Page, error) {
	if idx, ok := p.dir.lookup(file, pageNo); ok {
		f := p.frames[idx]
		f.refbit = true
		f.pinCnt++
		return &p.pages[idx], nil
	}

	idx, err := p.allocBuf()
	if err != nil {
		return nil, err
	}

	page, err := file.ReadPage(pageNo)
	if err != nil {
		// Allocation work is reversed: the frame stays empty.
		return nil, err
	}

	p.pages[idx] = page
	p.dir.insert(file, pageNo, idx)
	p.frames[idx].set(file, pageNo)
	p.log.Debug("bufferpool: page loaded", "frame", idx, "page", pageNo, "file", file.Filename())
	return &p.pages[idx], nil
}

// AllocPage requests a fresh page from file, installs it in the pool, and
// returns it already pinned. file.AllocatePage runs before allocBuf so a
// full buffer pool never leaks a page number on the disk side.
func (p *Pool) AllocPage(file storage.File) (storage.PageNum, *storage.Page, error) {
	newPage, err := file.AllocatePage()
	if err != nil {
		return storage.InvalidPageNum, nil, err
	}
	pageNo := newPage.PageNum()

	idx, err := p.allocBuf()
	if err != nil {
		return storage.InvalidPageNum, nil, err
	}

	p.pages[idx] = newPage
	p.dir.insert(file, pageNo, idx)
	p.frames[idx].set(file, pageNo)
	p.log.Debug("bufferpool: page allocated", "frame", idx, "page", pageNo, "file", file.Filename())
	return pageNo, &p.pages[idx], nil
}

// UnpinPage decrements the pin count of (file, pageNo) and optionally marks
// it dirty. A page no longer resident is a silent no-op: callers cannot
// always tell whether a page they once pinned is still in the pool. A
// resident page with a zero pin count is a caller error.
func (p *Pool) UnpinPage(file storage.File, pageNo storage.PageNum, dirty bool) error {
	idx, ok := p.dir.lookup(file, pageNo)
	if !ok {
		return nil
	}
	f := p.frames[idx]

	if dirty {
		f.dirty = true
	}
	if f.pinCnt <= 0 {
		return &PageNotPinnedError{Filename: file.Filename(), PageNo: pageNo, FrameNo: idx}
	}
	f.pinCnt--
	return nil
}

// FlushFile writes back and evicts every frame owned by file. It is
// all-or-nothing in intent only: earlier frames already evicted during the
// scan stay durable even if a later frame raises PagePinned or BadBuffer.
// Callers must ensure no page of file is pinned before calling FlushFile.
func (p *Pool) FlushFile(file storage.File) error {
	for idx, f := range p.frames {
		if f.file != file {
			continue
		}

		if f.pinCnt > 0 {
			return &PagePinnedError{Filename: file.Filename(), PageNo: f.pageNo, FrameNo: idx}
		}
		if f.valid && f.pageNo == storage.InvalidPageNum {
			return &BadBufferError{FrameNo: idx, Dirty: f.dirty, Valid: f.valid, RefBit: f.refbit}
		}

		if f.dirty {
			if err := file.WritePage(p.pages[idx]); err != nil {
				return err
			}
			f.dirty = false
		}
		p.dir.remove(f.file, f.pageNo)
		f.clear()
	}
	return nil
}

// DisposePage drops (file, pageNo) from the pool, if resident, with no
// write-back since the page is being deleted, then unconditionally
// deletes it from file. Disposing a non-resident page is legal.
func (p *Pool) DisposePage(file storage.File, pageNo storage.PageNum) error {
	if idx, ok := p.dir.lookup(file, pageNo); ok {
		p.dir.remove(file, pageNo)
		p.frames[idx].clear()
	}
	return file.DeletePage(pageNo)
}

// Close flushes every valid, dirty frame back to its owning file before the
// pool is discarded. Unlike FlushFile, a non-zero pin count at shutdown is
// not an error: shutdown must always make progress. Callers that care
// about pins should call FlushFile themselves first.
func (p *Pool) Close() error {
	for idx, f := range p.frames {
		if f.valid && f.dirty {
			if f.pinCnt > 0 {
				p.log.Warn("bufferpool: closing with pinned dirty frame", "frame", idx, "page", f.pageNo)
			}
			if err := f.file.WritePage(p.pages[idx]); err != nil {
				return err
			}
			f.dirty = false
		}
	}
	return nil
}

// PrintSelf logs a diagnostic dump of the frame table, one structured line
// per frame plus a trailing count of valid frames.
func (p *Pool) PrintSelf() {
	valid := 0
	for idx, f := range p.frames {
		p.log.Info("bufferpool: frame",
			"frame", idx,
			"valid", f.valid,
			"pageNo", f.pageNo,
			"pinCnt", f.pinCnt,
			"dirty", f.dirty,
			"refbit", f.refbit,
		)
		if f.valid {
			valid++
		}
	}
	p.log.Info("bufferpool: total valid frames", "count", valid)
}
