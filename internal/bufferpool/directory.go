package bufferpool

import "github.com/tuannm-lab/pagedb/internal/storage"

// pageTag is the directory key: a (file identity, page number) pair. File
// identity is the File value's own equality. Every concrete File
// implementation in this codebase is a pointer type, so two tags compare
// equal exactly when they name the same page of the same open file.
type pageTag struct {
	file   storage.File
	pageNo storage.PageNum
}

// directory is the associative (file, pageNo) -> frameNo index backing the
// buffer pool. A chained hash table sized ~1.2x the frame count is the
// conventional implementation for this lookup; Go's builtin map already is
// one, open-addressed rather than chained, so directory is a thin wrapper
// around it with a capacity hint rather than a hand-rolled table. See
// DESIGN.md for why that's the idiomatic choice here rather than a gap.
type directory struct {
	table map[pageTag]int
}

// newDirectory sizes the map's initial bucket count to roughly 1.2x
// numBufs, the ratio the original BufMgr used for its hash table.
func newDirectory(numBufs int) *directory {
	hint := (numBufs * 12) / 10
	if hint < 1 {
		hint = 1
	}
	return &directory{table: make(map[pageTag]int, hint)}
}

func (d *directory) lookup(file storage.File, pageNo storage.PageNum) (frameNo int, ok bool) {
	frameNo, ok = d.table[pageTag{file, pageNo}]
	return
}

func (d *directory) insert(file storage.File, pageNo storage.PageNum, frameNo int) {
	d.table[pageTag{file, pageNo}] = frameNo
}

func (d *directory) remove(file storage.File, pageNo storage.PageNum) {
	delete(d.table, pageTag{file, pageNo})
}
