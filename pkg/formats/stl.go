package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// STL format errors.
var (
	ErrTruncatedSTL = errors.New("truncated STL data")
	ErrInvalidSTL   = errors.New("invalid STL data")
	ErrEmptySTL     = errors.New("STL contains no triangles")
)

const (
	stlHeaderSize = 80
	stlRecordSize = 50 // normal + 3 vertices + attribute word
)

// STLTriangle is one facet as stored in the file.
type STLTriangle struct {
	Normal    [3]float32
	Vertices  [3][3]float32
	Attribute uint16 // Binary only, often a packed color
}

// STL represents a parsed stereolithography file.
type STL struct {
	Name      string // ASCII solid name or trimmed binary header
	Binary    bool
	Triangles []STLTriangle
}

// ParseSTL parses binary or ASCII STL from raw bytes.
// A payload whose size matches 84+50·n is binary even when the header
// starts with "solid", which several exporters write.
func ParseSTL(data []byte) (*STL, error) {
	if isBinarySTL(data) {
		return parseBinarySTL(data)
	}
	if bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("solid")) {
		return parseASCIISTL(data)
	}
	if len(data) < stlHeaderSize+4 {
		return nil, fmt.Errorf("%w: %d bytes", ErrTruncatedSTL, len(data))
	}
	return parseBinarySTL(data)
}

// ParseSTLFile parses an STL file from disk.
func ParseSTLFile(path string) (*STL, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading STL file: %w", err)
	}
	return ParseSTL(data)
}

func isBinarySTL(data []byte) bool {
	if len(data) < stlHeaderSize+4 {
		return false
	}
	count := binary.LittleEndian.Uint32(data[stlHeaderSize:])
	return uint64(len(data)) == uint64(stlHeaderSize+4)+uint64(count)*stlRecordSize
}

func parseBinarySTL(data []byte) (*STL, error) {
	count := binary.LittleEndian.Uint32(data[stlHeaderSize:])
	if count == 0 {
		return nil, ErrEmptySTL
	}

	need := uint64(stlHeaderSize+4) + uint64(count)*stlRecordSize
	if uint64(len(data)) < need {
		return nil, fmt.Errorf("%w: header declares %d triangles, have %d bytes", ErrTruncatedSTL, count, len(data))
	}

	stl := &STL{
		Name:      strings.TrimRight(string(data[:stlHeaderSize]), "\x00 "),
		Binary:    true,
		Triangles: make([]STLTriangle, count),
	}

	off := stlHeaderSize + 4
	for i := range stl.Triangles {
		tri := &stl.Triangles[i]
		tri.Normal = readVec3(data[off:])
		for v := 0; v < 3; v++ {
			tri.Vertices[v] = readVec3(data[off+12+v*12:])
		}
		tri.Attribute = binary.LittleEndian.Uint16(data[off+48:])
		off += stlRecordSize
	}

	return stl, nil
}

func readVec3(b []byte) [3]float32 {
	return [3]float32{
		math.Float32frombits(binary.LittleEndian.Uint32(b[0:])),
		math.Float32frombits(binary.LittleEndian.Uint32(b[4:])),
		math.Float32frombits(binary.LittleEndian.Uint32(b[8:])),
	}
}

// stlTokens walks whitespace-separated ASCII STL tokens.
type stlTokens struct {
	fields []string
	pos    int
}

func (t *stlTokens) next() (string, bool) {
	if t.pos >= len(t.fields) {
		return "", false
	}
	tok := t.fields[t.pos]
	t.pos++
	return tok, true
}

func (t *stlTokens) expect(words ...string) error {
	for _, w := range words {
		tok, ok := t.next()
		if !ok {
			return fmt.Errorf("%w: expected %q, got end of file", ErrTruncatedSTL, w)
		}
		if !strings.EqualFold(tok, w) {
			return fmt.Errorf("%w: expected %q, got %q", ErrInvalidSTL, w, tok)
		}
	}
	return nil
}

func (t *stlTokens) vec3() ([3]float32, error) {
	var v [3]float32
	for i := range v {
		tok, ok := t.next()
		if !ok {
			return v, fmt.Errorf("%w: reading coordinate", ErrTruncatedSTL)
		}
		f, err := strconv.ParseFloat(tok, 32)
		if err != nil {
			return v, fmt.Errorf("%w: bad number %q", ErrInvalidSTL, tok)
		}
		v[i] = float32(f)
	}
	return v, nil
}

func parseASCIISTL(data []byte) (*STL, error) {
	toks := &stlTokens{fields: strings.Fields(string(data))}
	if err := toks.expect("solid"); err != nil {
		return nil, err
	}

	stl := &STL{}

	// Solid name runs until the first facet.
	var name []string
	for {
		tok, ok := toks.next()
		if !ok {
			return nil, fmt.Errorf("%w: missing endsolid", ErrTruncatedSTL)
		}
		if strings.EqualFold(tok, "facet") || strings.EqualFold(tok, "endsolid") {
			toks.pos--
			break
		}
		name = append(name, tok)
	}
	stl.Name = strings.Join(name, " ")

	for {
		tok, ok := toks.next()
		if !ok {
			return nil, fmt.Errorf("%w: missing endsolid", ErrTruncatedSTL)
		}
		if strings.EqualFold(tok, "endsolid") {
			break
		}
		if !strings.EqualFold(tok, "facet") {
			return nil, fmt.Errorf("%w: expected \"facet\", got %q", ErrInvalidSTL, tok)
		}

		tri, err := parseASCIIFacet(toks)
		if err != nil {
			return nil, fmt.Errorf("facet %d: %w", len(stl.Triangles), err)
		}
		stl.Triangles = append(stl.Triangles, tri)
	}

	if len(stl.Triangles) == 0 {
		return nil, ErrEmptySTL
	}
	return stl, nil
}

func parseASCIIFacet(toks *stlTokens) (STLTriangle, error) {
	var tri STLTriangle
	var err error

	if err = toks.expect("normal"); err != nil {
		return tri, err
	}
	if tri.Normal, err = toks.vec3(); err != nil {
		return tri, err
	}
	if err = toks.expect("outer", "loop"); err != nil {
		return tri, err
	}
	for i := 0; i < 3; i++ {
		if err = toks.expect("vertex"); err != nil {
			return tri, err
		}
		if tri.Vertices[i], err = toks.vec3(); err != nil {
			return tri, err
		}
	}
	if err = toks.expect("endloop", "endfacet"); err != nil {
		return tri, err
	}
	return tri, nil
}
