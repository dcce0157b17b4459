package services

import "sync"

type inodeKey struct {
	device uint64
	inode  uint64
}

// Deduper remembers which (device, inode) pairs one scan has already counted.
// It is created per scan and shared by all of that scan's workers.
type Deduper struct {
	seen sync.Map
}

func NewDeduper() *Deduper {
	return &Deduper{}
}

// Add reports whether the pair was new. Exactly one caller wins per pair, no
// matter how many workers race on it.
func (deduper *Deduper) Add(device, inode uint64) bool {
	_, loaded := deduper.seen.LoadOrStore(inodeKey{device: device, inode: inode}, struct{}{})
	return !loaded
}
