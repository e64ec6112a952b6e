package readfiles

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// TetGen text formats. Writers number records from zero, readers accept whatever first
// index the file uses and return zero based indices.

func WriteNode(w io.Writer, points []r3.Vec) (err error) {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d 3 0 0\n", len(points))
	for i, p := range points {
		fmt.Fprintf(bw, "%d %s %s %s\n", i, ftoa(p.X), ftoa(p.Y), ftoa(p.Z))
	}
	return bw.Flush()
}

func WriteEle(w io.Writer, tets [][4]int) (err error) {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d 4 0\n", len(tets))
	for i, t := range tets {
		fmt.Fprintf(bw, "%d %d %d %d %d\n", i, t[0], t[1], t[2], t[3])
	}
	return bw.Flush()
}

// WriteFace writes triangles with one boundary marker each
func WriteFace(w io.Writer, faces [][3]int, markers []int) (err error) {
	if len(markers) != len(faces) {
		return fmt.Errorf("%d markers for %d faces", len(markers), len(faces))
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d 1\n", len(faces))
	for i, f := range faces {
		fmt.Fprintf(bw, "%d %d %d %d %d\n", i, f[0], f[1], f[2], markers[i])
	}
	return bw.Flush()
}

// WriteVol writes the per element volume bounds of a refinement pass
func WriteVol(w io.Writer, volumes []float64) (err error) {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d\n", len(volumes))
	for i, v := range volumes {
		fmt.Fprintf(bw, "%d %s\n", i, ftoa(v))
	}
	return bw.Flush()
}

// WritePoly writes a piecewise linear complex of triangular facets, each a single
// polygon with its marker, followed by the hole seeds and an empty region list
func WritePoly(w io.Writer, points []r3.Vec, facets [][3]int, markers []int, holes []r3.Vec) (err error) {
	if len(markers) != len(facets) {
		return fmt.Errorf("%d markers for %d facets", len(markers), len(facets))
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# part 1 - node list\n")
	fmt.Fprintf(bw, "%d 3 0 0\n", len(points))
	for i, p := range points {
		fmt.Fprintf(bw, "%d %s %s %s\n", i, ftoa(p.X), ftoa(p.Y), ftoa(p.Z))
	}
	fmt.Fprintf(bw, "# part 2 - facet list\n")
	fmt.Fprintf(bw, "%d 1\n", len(facets))
	for i, f := range facets {
		fmt.Fprintf(bw, "1 0 %d\n3 %d %d %d\n", markers[i], f[0], f[1], f[2])
	}
	fmt.Fprintf(bw, "# part 3 - hole list\n")
	fmt.Fprintf(bw, "%d\n", len(holes))
	for i, h := range holes {
		fmt.Fprintf(bw, "%d %s %s %s\n", i, ftoa(h.X), ftoa(h.Y), ftoa(h.Z))
	}
	fmt.Fprintf(bw, "# part 4 - region list\n0\n")
	return bw.Flush()
}

// ReadNode returns the points of a .node file and the index of its first record
func ReadNode(r io.Reader) (points []r3.Vec, first int, err error) {
	var (
		reader = bufio.NewReader(r)
		fields []string
		n, dim int
	)
	if fields, err = nextRecord(reader); err != nil {
		return
	}
	if n, dim, err = header2(fields); err != nil || dim != 3 {
		return nil, 0, fmt.Errorf("%w: node header %v", ErrFormat, fields)
	}
	points = make([]r3.Vec, n)
	for i := 0; i < n; i++ {
		if fields, err = nextRecord(reader); err != nil {
			return
		}
		var (
			ind int
			f   []float64
		)
		if ind, err = strconv.Atoi(fields[0]); err == nil {
			f, err = parseFloats(strings.Join(fields[1:], " "))
		}
		if i == 0 {
			first = ind
		}
		if err != nil || len(f) < 3 || ind-first != i {
			return nil, 0, fmt.Errorf("%w: node record %v", ErrFormat, fields)
		}
		points[i] = r3.Vec{X: f[0], Y: f[1], Z: f[2]}
	}
	return
}

// ReadEle returns the zero based tetrahedra of an .ele file whose node file starts at first
func ReadEle(r io.Reader, first int) (tets [][4]int, err error) {
	var rows [][]int
	if rows, err = readIndexRecords(bufio.NewReader(r), 4, first); err != nil {
		return nil, fmt.Errorf("failed to read elements: %w", err)
	}
	tets = make([][4]int, len(rows))
	for i, row := range rows {
		copy(tets[i][:], row)
	}
	return
}

// ReadFace returns the zero based triangles and markers of a .face file
func ReadFace(r io.Reader, first int) (faces [][3]int, markers []int, err error) {
	var rows [][]int
	if rows, err = readIndexRecords(bufio.NewReader(r), 3, first); err != nil {
		return nil, nil, fmt.Errorf("failed to read faces: %w", err)
	}
	faces = make([][3]int, len(rows))
	markers = make([]int, len(rows))
	for i, row := range rows {
		copy(faces[i][:], row[:3])
		if len(row) > 3 {
			markers[i] = row[3]
		}
	}
	return
}

// readIndexRecords reads "i v0 .. vk-1 [attributes]" rows, shifting the node indices by first
func readIndexRecords(reader *bufio.Reader, k, first int) (rows [][]int, err error) {
	var (
		fields []string
		n, nc  int
		ind    []int
	)
	if fields, err = nextRecord(reader); err != nil {
		return
	}
	if n, nc, err = header2(fields); err != nil || (k == 4 && nc != 4) {
		return nil, fmt.Errorf("%w: header %v", ErrFormat, fields)
	}
	for i := 0; i < n; i++ {
		if fields, err = nextRecord(reader); err != nil {
			return
		}
		if ind, err = parseInts(strings.Join(fields, " ")); err != nil || len(ind) < k+1 {
			return nil, fmt.Errorf("%w: record %v", ErrFormat, fields)
		}
		row := ind[1:]
		for j := 0; j < k; j++ {
			row[j] -= first
		}
		rows = append(rows, row)
	}
	return
}

// nextRecord returns the fields of the next line that is neither blank nor a # comment
func nextRecord(reader *bufio.Reader) (fields []string, err error) {
	var line string
	for {
		if line, err = getLine(reader); err != nil {
			return
		}
		if ind := strings.Index(line, "#"); ind >= 0 {
			line = line[:ind]
		}
		if fields = strings.Fields(line); len(fields) != 0 {
			return
		}
	}
}

func header2(fields []string) (n, m int, err error) {
	if n, err = strconv.Atoi(fields[0]); err != nil {
		return
	}
	if len(fields) > 1 {
		m, err = strconv.Atoi(fields[1])
	}
	return
}

func ftoa(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}
