// Copyright © 2025 Texelcore contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: vt/images.go
// Summary: Raster image storage shared by the Sixel, ReGIS and Kitty paths.
//          Images anchor at a cell position; the compositor overlays them.

package vt

import "fmt"

// MaxImageBytes caps the store's total resident bytes across stored images
// and in-flight uploads.
const MaxImageBytes = 64 << 20

// Image is one raster held by a session.
type Image struct {
	ID     uint32
	Width  int
	Height int
	// Pixels is RGBA, row-major, 4 bytes per pixel. It stays nil for payloads
	// the overlay cannot raster.
	Pixels []byte
	// Data carries a Kitty payload exactly as transmitted.
	Data []byte
	// Complete marks a finished chunked upload.
	Complete bool

	// Cell anchor for placement.
	Row, Col int
	Visible  bool

	// Animation frames, if any. Frame 0 aliases the base payload.
	Frames [][]byte
}

// footprint counts the image's resident bytes. Frame 0 aliases Pixels or
// Data, so only later frames add to it.
func (im *Image) footprint() int {
	n := len(im.Pixels) + len(im.Data)
	for i := 1; i < len(im.Frames); i++ {
		n += len(im.Frames[i])
	}
	return n
}

// NewImage allocates a cleared image, refusing sizes past the byte cap.
func NewImage(id uint32, w, h int) (*Image, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("image %d: bad dimensions %dx%d", id, w, h)
	}
	if sz := w * h * 4; sz > MaxImageBytes {
		return nil, fmt.Errorf("image %d: %dx%d exceeds the %d byte cap", id, w, h, MaxImageBytes)
	}
	return &Image{ID: id, Width: w, Height: h, Pixels: make([]byte, w*h*4)}, nil
}

// Set writes one pixel, ignoring out-of-bounds coordinates.
func (im *Image) Set(x, y int, c RGB) {
	if x < 0 || y < 0 || x >= im.Width || y >= im.Height {
		return
	}
	i := (y*im.Width + x) * 4
	im.Pixels[i] = c.R
	im.Pixels[i+1] = c.G
	im.Pixels[i+2] = c.B
	im.Pixels[i+3] = 0xFF
}

// At reads one pixel.
func (im *Image) At(x, y int) (c RGB, alpha uint8) {
	if x < 0 || y < 0 || x >= im.Width || y >= im.Height {
		return RGB{}, 0
	}
	i := (y*im.Width + x) * 4
	return RGB{im.Pixels[i], im.Pixels[i+1], im.Pixels[i+2]}, im.Pixels[i+3]
}

// ImageStore keeps the images a session has received, keyed by client id.
// Sixel and ReGIS use the reserved id 0 slot.
type ImageStore struct {
	images  map[uint32]*Image
	pending map[uint32]*upload
	report  Reporter
	nextID  uint32

	// resident tracks bytes held by images and pending uploads together.
	resident int
	// uploadID names the chunked transfer still in flight, so continuation
	// chunks that omit i= land on it.
	uploadID     uint32
	uploadActive bool
}

// upload accumulates a chunked transfer before decode.
type upload struct {
	data    []byte
	format  int
	w, h    int
	display bool
	failed  bool
}

// NewImageStore builds an empty store.
func NewImageStore(report Reporter) *ImageStore {
	return &ImageStore{
		images:  make(map[uint32]*Image),
		pending: make(map[uint32]*upload),
		report:  report,
		nextID:  1,
	}
}

// Put installs or replaces an image. It refuses the swap when the store's
// resident bytes would pass MaxImageBytes.
func (st *ImageStore) Put(im *Image) bool {
	need := st.resident + im.footprint()
	if old, ok := st.images[im.ID]; ok {
		need -= old.footprint()
	}
	if need > MaxImageBytes {
		st.report(LevelWarning, SourceGraphics,
			fmt.Sprintf("image %d: refused, store holds %d of %d bytes", im.ID, st.resident, MaxImageBytes))
		return false
	}
	st.images[im.ID] = im
	st.resident = need
	return true
}

// Get fetches an image by id.
func (st *ImageStore) Get(id uint32) (*Image, bool) {
	im, ok := st.images[id]
	return im, ok
}

// Delete removes an image and any pending upload under the same id.
func (st *ImageStore) Delete(id uint32) {
	if im, ok := st.images[id]; ok {
		st.resident -= im.footprint()
		delete(st.images, id)
	}
	st.dropPending(id)
}

// dropPending discards an accumulating upload without touching the stored
// image under the same id.
func (st *ImageStore) dropPending(id uint32) {
	if up, ok := st.pending[id]; ok {
		st.resident -= len(up.data)
		delete(st.pending, id)
	}
	if st.uploadID == id {
		st.uploadActive = false
	}
}

// Clear drops everything.
func (st *ImageStore) Clear() {
	st.images = make(map[uint32]*Image)
	st.pending = make(map[uint32]*upload)
	st.resident = 0
	st.uploadActive = false
}

// ResidentBytes reports the store's current byte footprint.
func (st *ImageStore) ResidentBytes() int {
	return st.resident
}

// IDs lists every stored image id, placed or not.
func (st *ImageStore) IDs() []uint32 {
	out := make([]uint32, 0, len(st.images))
	for id := range st.images {
		out = append(out, id)
	}
	return out
}

// Visible calls fn for every placed image.
func (st *ImageStore) Visible(fn func(im *Image)) {
	for _, im := range st.images {
		if im.Visible {
			fn(im)
		}
	}
}
