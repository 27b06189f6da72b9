// Package blob assembles recorded chunks into a finished media object and
// hands out process-scoped resolvable references to it.
package blob

import "github.com/pion/mediarecorder/pkg/rec"

// Blob is a finalized, immutable media object.
type Blob struct {
	Data []byte
	Type string
}

// Size returns the payload length in bytes.
func (b *Blob) Size() int {
	return len(b.Data)
}

// Assemble concatenates the chunk payloads into a single Blob. The first
// chunk's reported type wins over fallbackType, matching how a browser
// derives a recording's MIME type from its first dataavailable event.
func Assemble(chunks []rec.Chunk, fallbackType string) *Blob {
	blobType := fallbackType
	if len(chunks) > 0 && chunks[0].Type != "" {
		blobType = chunks[0].Type
	}

	var size int
	for _, c := range chunks {
		size += len(c.Data)
	}

	data := make([]byte, 0, size)
	for _, c := range chunks {
		data = append(data, c.Data...)
	}

	return &Blob{Data: data, Type: blobType}
}
