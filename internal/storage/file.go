package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/tuannm-lab/pagedb/pkg/util"
)

// File is the external collaborator the buffer pool consumes: it knows how
// to persist and load pages by number, but nothing about pinning, caching or
// replacement. Those are the buffer pool's job.
//
// Implementations must give every page a stable PageNum until DeletePage is
// called on it, and must never reuse a live page's number.
type File interface {
	// ReadPage returns the on-disk contents of pageNo.
	ReadPage(pageNo PageNum) (Page, error)
	// WritePage persists p at its own page number.
	WritePage(p Page) error
	// AllocatePage returns a fresh, zeroed page with a newly assigned number.
	AllocatePage() (Page, error)
	// DeletePage removes a page from the file, freeing its number for reuse.
	DeletePage(pageNo PageNum) error
	// Filename identifies the file for diagnostics and error reporting only.
	Filename() string
}

var (
	ErrPageNotFound  = errors.New("storage: page not found")
	ErrWrongPageSize = errors.New("storage: buffer must be exactly PageSize bytes")
)

// headerPageNum is reserved for free-list/next-id bookkeeping and is never
// handed out by AllocatePage.
const headerPageNum PageNum = 0

// DiskFile is a File backed by a single OS file. Page 0 is a reserved header
// page holding the next unassigned page number and the free list of deleted
// page numbers; pages 1..N hold caller data at offset pageNo*PageSize.
type DiskFile struct {
	path string
	f    *os.File

	nextPageNum PageNum
	freeList    []PageNum
}

var _ File = (*DiskFile)(nil)

// OpenDiskFile opens (creating if necessary) a DiskFile at path and restores
// its header page, if one already exists on disk.
func OpenDiskFile(path string) (*DiskFile, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", path, err)
	}

	df := &DiskFile{path: path, f: f, nextPageNum: headerPageNum + 1}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if info.Size() >= PageSize {
		if err := df.loadHeader(); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	return df, nil
}

func (df *DiskFile) Filename() string { return df.path }

func (df *DiskFile) offsetOf(pageNo PageNum) int64 {
	return int64(pageNo) * PageSize
}

func (df *DiskFile) ReadPage(pageNo PageNum) (Page, error) {
	if pageNo == InvalidPageNum || pageNo == headerPageNum {
		return Page{}, ErrPageNotFound
	}
	p := NewPage(pageNo)
	n, err := df.f.ReadAt(p.Data(), df.offsetOf(pageNo))
	if err != nil && n == 0 {
		return Page{}, fmt.Errorf("storage: read page %d of %s: %w", pageNo, df.path, err)
	}
	return p, nil
}

func (df *DiskFile) WritePage(p Page) error {
	if p.PageNum() == InvalidPageNum || p.PageNum() == headerPageNum {
		return ErrPageNotFound
	}
	if len(p.Data()) != PageSize {
		return ErrWrongPageSize
	}
	if _, err := df.f.WriteAt(p.Data(), df.offsetOf(p.PageNum())); err != nil {
		return fmt.Errorf("storage: write page %d of %s: %w", p.PageNum(), df.path, err)
	}
	return nil
}

func (df *DiskFile) AllocatePage() (Page, error) {
	var pageNo PageNum
	if n := len(df.freeList); n > 0 {
		pageNo = df.freeList[n-1]
		df.freeList = df.freeList[:n-1]
	} else {
		pageNo = df.nextPageNum
		df.nextPageNum++
	}

	p := NewPage(pageNo)
	if err := df.WritePage(p); err != nil {
		return Page{}, err
	}
	if err := df.saveHeader(); err != nil {
		return Page{}, err
	}
	return p, nil
}

func (df *DiskFile) DeletePage(pageNo PageNum) error {
	if pageNo == InvalidPageNum || pageNo == headerPageNum {
		return nil
	}
	df.freeList = append(df.freeList, pageNo)
	return df.saveHeader()
}

// Close flushes header bookkeeping and releases the OS file handle.
func (df *DiskFile) Close() error {
	if err := df.saveHeader(); err != nil {
		util.CloseFile(df.f)
		return err
	}
	return df.f.Close()
}

// header layout within page 0: nextPageNum(u32) | freeCount(u32) | freeList[freeCount](u32...)
func (df *DiskFile) saveHeader() error {
	hdr := NewPage(headerPageNum)
	buf := hdr.Data()

	binary.LittleEndian.PutUint32(buf[0:4], uint32(df.nextPageNum))

	maxEntries := (PageSize - 8) / 4
	n := len(df.freeList)
	if n > maxEntries {
		// Best-effort bookkeeping: keep the header page single-block and
		// persist only the first maxEntries free-list entries rather than
		// spilling across pages. The in-memory free list keeps every entry,
		// but the ones past maxEntries are lost on reopen and their numbers
		// are not reclaimed after that; new pages are still allocated via
		// nextPageNum.
		n = maxEntries
	}
	binary.LittleEndian.PutUint32(buf[4:8], uint32(n))
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint32(buf[8+i*4:12+i*4], uint32(df.freeList[i]))
	}

	if _, err := df.f.WriteAt(buf, 0); err != nil {
		return fmt.Errorf("storage: write header of %s: %w", df.path, err)
	}
	return nil
}

func (df *DiskFile) loadHeader() error {
	hdr := NewPage(headerPageNum)
	buf := hdr.Data()
	if _, err := df.f.ReadAt(buf, 0); err != nil {
		return fmt.Errorf("storage: read header of %s: %w", df.path, err)
	}

	df.nextPageNum = PageNum(binary.LittleEndian.Uint32(buf[0:4]))
	n := binary.LittleEndian.Uint32(buf[4:8])
	df.freeList = make([]PageNum, 0, n)
	for i := uint32(0); i < n; i++ {
		df.freeList = append(df.freeList, PageNum(binary.LittleEndian.Uint32(buf[8+i*4:12+i*4])))
	}
	return nil
}
