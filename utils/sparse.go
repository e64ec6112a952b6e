package utils

import (
	"fmt"

	"github.com/james-bowman/sparse"
	"github.com/james-bowman/sparse/blas"
	"gonum.org/v1/gonum/mat"
)

type DOK struct {
	M        *sparse.DOK
	readOnly bool
	name     string
}

func NewDOK(nr, nc int) (R DOK) {
	R = DOK{
		sparse.NewDOK(nr, nc),
		false,
		"unnamed - hint: pass a variable name to SetReadOnly()",
	}
	return
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m DOK) Dims() (r, c int)              { return m.M.Dims() }
func (m DOK) At(i, j int) float64           { return m.M.At(i, j) }
func (m DOK) T() mat.Matrix                 { return m.M.T() }
func (m DOK) RawMatrix() *blas.SparseMatrix { return m.M.ToCSR().RawMatrix() }

func (m DOK) Set(i, j int, val float64) {
	m.checkWritable()
	m.M.Set(i, j, val)
}

// Add accumulates val into (i, j)
func (m DOK) Add(i, j int, val float64) {
	m.checkWritable()
	m.M.Set(i, j, m.M.At(i, j)+val)
}

func (m *DOK) SetReadOnly(name ...string) {
	if len(name) != 0 {
		m.name = name[0]
	}
	m.readOnly = true
}

func (m DOK) checkWritable() {
	if m.readOnly {
		err := fmt.Errorf("attempt to write to a read only matrix named: \"%v\"", m.name)
		panic(err)
	}
}

func (m DOK) ToCSR() CSR {
	return CSR{
		M:        m.M.ToCSR(),
		readOnly: m.readOnly,
		name:     m.name,
	}
}

type CSR struct {
	M        *sparse.CSR
	readOnly bool
	name     string
}

// NewCSR returns an empty matrix meant as the receiver of a product
func NewCSR(nr, nc int) (R CSR) {
	R = CSR{
		sparse.NewCSR(nr, nc, nil, nil, nil),
		false,
		"unnamed - hint: pass a variable name to SetReadOnly()",
	}
	return
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m CSR) Dims() (r, c int)              { return m.M.Dims() }
func (m CSR) At(i, j int) float64           { return m.M.At(i, j) }
func (m CSR) T() mat.Matrix                 { return m.M.T() }
func (m CSR) RawMatrix() *blas.SparseMatrix { return m.M.RawMatrix() }
func (m CSR) Data() []float64 {
	return m.RawMatrix().Data
}

// Product stores a·b in the receiver
func (m CSR) Product(a, b CSR) CSR {
	m.checkWritable()
	m.M.Mul(a.M, b.M)
	return m
}

// RowNonZeros returns the column indices and values stored in row i
func (m CSR) RowNonZeros(i int) (cols []int, vals []float64) {
	raw := m.RawMatrix()
	start, end := raw.Indptr[i], raw.Indptr[i+1]
	return raw.Ind[start:end], raw.Data[start:end]
}

func (m *CSR) SetReadOnly(name ...string) {
	if len(name) != 0 {
		m.name = name[0]
	}
	m.readOnly = true
}

func (m CSR) checkWritable() {
	if m.readOnly {
		err := fmt.Errorf("attempt to write to a read only matrix named: \"%v\"", m.name)
		panic(err)
	}
}
