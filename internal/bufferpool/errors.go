package bufferpool

import (
	"errors"
	"fmt"

	"github.com/tuannm-lab/pagedb/internal/storage"
)

// ErrBufferExceeded is raised by allocBuf (and surfaces through ReadPage and
// AllocPage) once a full sweep has confirmed every frame is pinned.
var ErrBufferExceeded = errors.New("bufferpool: all frames pinned, no buffer available")

// PageNotPinnedError is raised by UnpinPage when the target page is
// resident but already has a zero pin count.
type PageNotPinnedError struct {
	Filename string
	PageNo   storage.PageNum
	FrameNo  int
}

func (e *PageNotPinnedError) Error() string {
	return fmt.Sprintf("bufferpool: page %d of %q in frame %d is not pinned", e.PageNo, e.Filename, e.FrameNo)
}

// PagePinnedError is raised by FlushFile when it encounters a pinned page
// belonging to the file being flushed.
type PagePinnedError struct {
	Filename string
	PageNo   storage.PageNum
	FrameNo  int
}

func (e *PagePinnedError) Error() string {
	return fmt.Sprintf("bufferpool: page %d of %q in frame %d is pinned", e.PageNo, e.Filename, e.FrameNo)
}

// BadBufferError is raised by FlushFile when it finds a frame marked valid
// with an invalid page number, an internal consistency violation.
type BadBufferError struct {
	FrameNo int
	Dirty   bool
	Valid   bool
	RefBit  bool
}

func (e *BadBufferError) Error() string {
	return fmt.Sprintf(
		"bufferpool: frame %d is valid with no page number (dirty=%t valid=%t refbit=%t)",
		e.FrameNo, e.Dirty, e.Valid, e.RefBit,
	)
}
