package blob

import "bytes"

var (
	jpegStart = []byte{0xFF, 0xD8}
	jpegEnd   = []byte{0xFF, 0xD9}
)

// ExtractJPEG returns the first embedded JPEG frame in a resource blob.
// Thumbnails are stored inside an opaque container, so the frame is
// located by its SOI/EOI markers. ok is false when no complete frame is
// present, which callers treat as "no thumbnail".
func ExtractJPEG(data []byte) (frame []byte, ok bool) {
	start := bytes.Index(data, jpegStart)
	if start == -1 {
		return nil, false
	}
	end := bytes.Index(data[start:], jpegEnd)
	if end == -1 {
		return nil, false
	}
	end += start + len(jpegEnd)
	return data[start:end], true
}
