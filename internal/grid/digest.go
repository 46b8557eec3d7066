package grid

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
)

// DomainGrid is the hash domain for grid digests.
// The version suffix allows the encoding to change later.
const DomainGrid = "fvaqc/grid/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Digest identifies a grid by its geometry and values. Nodata cells hash
// the same regardless of the sentinel in use, so re-encoding a grid with a
// different sentinel does not change its digest.
func Digest(g *Grid) string {
	buf := make([]byte, 0, 40+8*len(g.Values))
	buf = binary.BigEndian.AppendUint64(buf, uint64(g.Rows))
	buf = binary.BigEndian.AppendUint64(buf, uint64(g.Cols))
	buf = binary.BigEndian.AppendUint64(buf, math.Float64bits(g.Transform.OriginX))
	buf = binary.BigEndian.AppendUint64(buf, math.Float64bits(g.Transform.OriginY))
	buf = binary.BigEndian.AppendUint64(buf, math.Float64bits(g.Transform.CellSize))
	nodata := math.Float64bits(math.NaN())
	for _, v := range g.Values {
		if g.isNoData(v) {
			buf = binary.BigEndian.AppendUint64(buf, nodata)
			continue
		}
		buf = binary.BigEndian.AppendUint64(buf, math.Float64bits(v))
	}
	return hashWithDomain(DomainGrid, buf)
}
