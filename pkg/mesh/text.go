package mesh

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// numberPattern matches one decimal number with optional sign and exponent.
var numberPattern = regexp.MustCompile(`[-+]?(?:\d+(?:\.\d*)?|\.\d+)(?:[eE][-+]?\d+)?`)

// textRecord is px py pz nx ny nz u v w.
const textRecord = 9

// parseText decodes a version 1 mesh. Only "version 1.00" stores positions
// at double scale.
func parseText(data []byte, header string) (*Mesh, error) {
	scale := float32(1)
	if header == "version 1.00" {
		scale = 0.5
	}

	lines := bytes.SplitN(data, []byte("\n"), 3)
	var body []byte
	if len(lines) == 3 {
		body = lines[2]
	}

	tokens := numberPattern.FindAll(body, -1)
	records := len(tokens) / textRecord

	m := &Mesh{
		Vertices: make([]Vertex, 0, records),
		Faces:    make([]Face, 0, records/3),
	}
	var vals [textRecord]float32
	for i := 0; i < records; i++ {
		for j := range vals {
			tok := i*textRecord + j
			f, err := strconv.ParseFloat(string(tokens[tok]), 32)
			// Out of range values saturate to +/-Inf.
			if err != nil && !errors.Is(err, strconv.ErrRange) {
				return nil, fmt.Errorf("token %d: %w", tok, err)
			}
			vals[j] = float32(f)
		}
		m.Vertices = append(m.Vertices, Vertex{
			Position: [3]float32{vals[0] * scale, vals[1] * scale, vals[2] * scale},
			UV:       [2]float32{vals[6], 1 - vals[7]},
		})
		if (i+1)%3 == 0 {
			n := uint32(i)
			m.Faces = append(m.Faces, Face{n - 2, n - 1, n})
		}
	}
	return m, nil
}
