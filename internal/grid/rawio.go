package grid

import (
	"fmt"
	"io"
)

// Raw cave interchange format: the W×H cell states as row-major bytes,
// 0 = free, 1 = occupied. Dimensions travel out of band (file name,
// config, or CLI flags); the byte count must equal W*H exactly.

// WriteRaw encodes a ground-truth grid to w. Frontier cells are rejected:
// ground truth only ever holds Free and Occupied. Unknown is encoded as
// occupied so a partially-built grid can never leak traversable space.
func (g *Grid) WriteRaw(w io.Writer) error {
	buf := make([]byte, len(g.cells))
	for i, s := range g.cells {
		switch s {
		case Free:
			buf[i] = 0
		case Occupied, Unknown:
			buf[i] = 1
		default:
			x, y := g.Unpack(i)
			return fmt.Errorf("cell (%d,%d) has non-ground-truth state %v", x, y, s)
		}
	}
	_, err := w.Write(buf)
	return err
}

// ReadRaw decodes a w×h ground-truth grid from r.
func ReadRaw(r io.Reader, w, h int) (*Grid, error) {
	g, err := New(w, h)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, w*h)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("read %dx%d cave: %w", w, h, err)
	}
	for i, b := range buf {
		switch b {
		case 0:
			g.cells[i] = Free
		case 1:
			g.cells[i] = Occupied
		default:
			x, y := g.Unpack(i)
			return nil, fmt.Errorf("cell (%d,%d) has invalid byte %d", x, y, b)
		}
	}
	return g, nil
}
