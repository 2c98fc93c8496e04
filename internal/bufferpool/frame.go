package bufferpool

import "github.com/tuannm-lab/pagedb/internal/storage"

// frame is the per-slot metadata the clock policy and page-lifecycle
// operations reason about. frameNo is immutable and equals the frame's
// index in Pool.frames.
type frame struct {
	frameNo int
	file    storage.File
	pageNo  storage.PageNum
	pinCnt  int
	dirty   bool
	valid   bool
	refbit  bool
}

func newFrame(frameNo int) *frame {
	return &frame{frameNo: frameNo, pageNo: storage.InvalidPageNum}
}

// set establishes occupancy: valid=true, pinCnt=1, dirty=false, refbit=true.
func (f *frame) set(file storage.File, pageNo storage.PageNum) {
	f.file = file
	f.pageNo = pageNo
	f.valid = true
	f.pinCnt = 1
	f.dirty = false
	f.refbit = true
}

// clear resets the frame to the empty invariant. frameNo is preserved.
func (f *frame) clear() {
	f.file = nil
	f.pageNo = storage.InvalidPageNum
	f.pinCnt = 0
	f.valid = false
	f.dirty = false
	f.refbit = false
}
