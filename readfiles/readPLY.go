package readfiles

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

var ErrFormat = errors.New("malformed file")

// ReadPLY reads an ASCII PLY polygon model, scaling every vertex by scale
func ReadPLY(filename string, scale float64) (points []r3.Vec, faces [][]int, err error) {
	var file *os.File
	if file, err = os.Open(filename); err != nil {
		return nil, nil, fmt.Errorf("failed to open model: %w", err)
	}
	defer file.Close()
	if points, faces, err = ParsePLY(bufio.NewReader(file), scale); err != nil {
		return nil, nil, fmt.Errorf("failed to read model %s: %w", filename, err)
	}
	return
}

// ParsePLY reads the header counts of the vertex and face elements, then the vertex rows
// "x y z ..." and the face rows "n i0 ... in-1". Extra vertex properties are ignored.
func ParsePLY(reader *bufio.Reader, scale float64) (points []r3.Vec, faces [][]int, err error) {
	var (
		line           string
		nVerts, nFaces = -1, -1
	)
	if line, err = getLine(reader); err != nil {
		return
	}
	if line != "ply" {
		return nil, nil, fmt.Errorf("%w: expected ply magic, have [%s]", ErrFormat, line)
	}
	for {
		if line, err = getLine(reader); err != nil {
			return nil, nil, fmt.Errorf("%w: no end_header", ErrFormat)
		}
		switch {
		case strings.HasPrefix(line, "format") && !strings.Contains(line, "ascii"):
			return nil, nil, fmt.Errorf("%w: only ascii models are read, have [%s]", ErrFormat, line)
		case strings.HasPrefix(line, "element vertex "):
			nVerts, err = strconv.Atoi(strings.TrimSpace(line[len("element vertex "):]))
		case strings.HasPrefix(line, "element face "):
			nFaces, err = strconv.Atoi(strings.TrimSpace(line[len("element face "):]))
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%w: header line [%s]", ErrFormat, line)
		}
		if line == "end_header" {
			break
		}
	}
	if nVerts < 0 || nFaces < 0 {
		return nil, nil, fmt.Errorf("%w: missing vertex or face element count", ErrFormat)
	}
	var f []float64
	for i := 0; i < nVerts; i++ {
		if line, err = getLine(reader); err != nil {
			return
		}
		if f, err = parseFloats(line); err != nil || len(f) < 3 {
			return nil, nil, fmt.Errorf("%w: vertex %d [%s]", ErrFormat, i, line)
		}
		points = append(points, r3.Scale(scale, r3.Vec{X: f[0], Y: f[1], Z: f[2]}))
	}
	var ind []int
	for i := 0; i < nFaces; i++ {
		if line, err = getLine(reader); err != nil {
			return
		}
		if ind, err = parseInts(line); err != nil || len(ind) < 1 || len(ind) < ind[0]+1 {
			return nil, nil, fmt.Errorf("%w: face %d [%s]", ErrFormat, i, line)
		}
		faces = append(faces, ind[1:ind[0]+1])
	}
	return
}

// getLine returns the next line without its line break. The last line of a file may
// lack the break.
func getLine(reader *bufio.Reader) (line string, err error) {
	line, err = reader.ReadString('\n')
	if err == io.EOF && len(line) != 0 {
		err = nil
	}
	if err != nil {
		if err == io.EOF {
			err = fmt.Errorf("%w: early end of file", ErrFormat)
		}
		return
	}
	line = strings.TrimSpace(line)
	return
}

func parseFloats(line string) (f []float64, err error) {
	var x float64
	for _, field := range strings.Fields(line) {
		if x, err = strconv.ParseFloat(field, 64); err != nil {
			return nil, err
		}
		f = append(f, x)
	}
	return
}

func parseInts(line string) (ind []int, err error) {
	var n int
	for _, field := range strings.Fields(line) {
		if n, err = strconv.Atoi(field); err != nil {
			return nil, err
		}
		ind = append(ind, n)
	}
	return
}
