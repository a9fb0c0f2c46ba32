package glyphtrace

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// Cell is the set of element types a Vmatrix can hold. Seeds, reductions and
// curve grids are uint32; ballots are float64.
type Cell interface {
	~uint8 | ~uint32 | ~int | ~int64 | ~float64
}

// Vmatrix is a square grid stored as a flat, row-major buffer. Index i maps
// to row i/Size and column i%Size.
type Vmatrix[T Cell] struct {
	Size int
	Data []T
}

// NewVmatrix creates a Vmatrix with an empty buffer. Callers are expected to
// fill Data before using it.
func NewVmatrix[T Cell](size int) Vmatrix[T] {
	return Vmatrix[T]{Size: size, Data: make([]T, 0, size*size)}
}

// InitializeVmatrix creates a size x size Vmatrix with every cell set to
// initialValue.
func InitializeVmatrix[T Cell](size int, initialValue T) Vmatrix[T] {
	data := make([]T, size*size)
	if initialValue != 0 {
		for i := range data {
			data[i] = initialValue
		}
	}
	return Vmatrix[T]{Size: size, Data: data}
}

// BuildVmatrix creates a Vmatrix holding a copy of data.
func BuildVmatrix[T Cell](size int, data []T) (Vmatrix[T], error) {
	if len(data) != size*size {
		return Vmatrix[T]{}, fmt.Errorf("vmatrix of size %d needs %d entries, got %d",
			size, size*size, len(data))
	}
	buf := make([]T, len(data))
	copy(buf, data)
	return Vmatrix[T]{Size: size, Data: buf}, nil
}

// Len returns the number of cells in the buffer.
func (m Vmatrix[T]) Len() int {
	return len(m.Data)
}

// Transpose rearranges the data in place so columns are read as rows.
func (m *Vmatrix[T]) Transpose() {
	dataCopy := make([]T, len(m.Data))
	copy(dataCopy, m.Data)

	size := m.Size
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			m.Data[i+j*size] = dataCopy[j+i*size]
		}
	}
}

// NormalCopy returns an independent copy of the matrix.
func (m Vmatrix[T]) NormalCopy() Vmatrix[T] {
	buf := make([]T, len(m.Data))
	copy(buf, m.Data)
	return Vmatrix[T]{Size: m.Size, Data: buf}
}

// TransposedCopy returns an independent, transposed copy of the matrix.
func (m Vmatrix[T]) TransposedCopy() Vmatrix[T] {
	c := m.NormalCopy()
	c.Transpose()
	return c
}

// TestIndex reports whether index is inside the buffer. It does not check
// whether the index is on the border of the grid; see TestBorderIndex.
func (m Vmatrix[T]) TestIndex(index int) bool {
	return index >= 0 && index < len(m.Data)
}

// TestBorderIndex reports whether index lies on the outermost ring of rows
// and columns. Indexes outside the buffer are treated as border.
func (m Vmatrix[T]) TestBorderIndex(index int) bool {
	if !m.TestIndex(index) {
		return true
	}
	row, col := index/m.Size, index%m.Size
	return row == 0 || row == m.Size-1 || col == 0 || col == m.Size-1
}

// Exclusive returns a matrix holding 1 where m is nonzero and other is zero,
// and 0 everywhere else.
//
// Exclusive panics if the matrices hold a different number of cells.
func (m Vmatrix[T]) Exclusive(other Vmatrix[uint32]) Vmatrix[uint32] {
	if len(m.Data) != len(other.Data) {
		panic(fmt.Sprintf("glyphtrace: exclusive on data sets of different length: %d and %d",
			len(m.Data), len(other.Data)))
	}

	result := InitializeVmatrix[uint32](m.Size, 0)
	for i := range m.Data {
		if m.Data[i] != 0 && other.Data[i] == 0 {
			result.Data[i] = 1
		}
	}
	return result
}

// Union returns a matrix holding 1 where either m or other is nonzero.
//
// Union panics if the matrices hold a different number of cells.
func (m Vmatrix[T]) Union(other Vmatrix[uint32]) Vmatrix[uint32] {
	if len(m.Data) != len(other.Data) {
		panic(fmt.Sprintf("glyphtrace: union on data sets of different length: %d and %d",
			len(m.Data), len(other.Data)))
	}

	result := InitializeVmatrix[uint32](m.Size, 0)
	for i := range m.Data {
		if m.Data[i] != 0 || other.Data[i] != 0 {
			result.Data[i] = 1
		}
	}
	return result
}

// Count returns the number of nonzero cells.
func (m Vmatrix[T]) Count() int {
	n := 0
	for _, v := range m.Data {
		if v != 0 {
			n++
		}
	}
	return n
}

// WriteTo writes the matrix as text, one row per line with no separators
// between cells.
func (m Vmatrix[T]) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var written int64
	for i := 0; i < m.Size; i++ {
		for j := 0; j < m.Size; j++ {
			n, err := bw.WriteString(formatCell(m.Data[j+i*m.Size]))
			written += int64(n)
			if err != nil {
				return written, err
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return written, err
		}
		written++
	}
	return written, bw.Flush()
}

func formatCell[T Cell](v T) string {
	switch x := any(v).(type) {
	case float64:
		return strconv.FormatFloat(x, 'g', 3, 64)
	default:
		return fmt.Sprint(v)
	}
}
