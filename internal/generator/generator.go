package generator

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"math"
	mrand "math/rand/v2"
	"slices"

	"github.com/roach88/streamfeed/internal/dtype"
	"github.com/roach88/streamfeed/internal/plan"
	"github.com/roach88/streamfeed/internal/stream"
)

// Chunk is one generated buffer together with the raw values it encodes.
type Chunk struct {
	Buffer stream.Buffer
	Values []float64
}

// Generator draws plan content for one element type.
type Generator struct {
	cfg *plan.Config
	typ dtype.Type
	rng *mrand.Rand
}

// New creates a generator. A nil rng is replaced by NewRand(cfg.Seed).
func New(cfg *plan.Config, typ dtype.Type, rng *mrand.Rand) (*Generator, error) {
	if !typ.Valid() {
		return nil, fmt.Errorf("%w: %s", dtype.ErrUnsupportedType, typ)
	}
	if rng == nil {
		rng = NewRand(cfg.Seed)
	}
	return &Generator{cfg: cfg, typ: typ, rng: rng}, nil
}

// NewRand returns a PCG source seeded with seed, or with a crypto-random
// value when seed is nil.
func NewRand(seed *uint64) *mrand.Rand {
	var s uint64
	if seed != nil {
		s = *seed
	} else {
		var b [8]byte
		_, _ = rand.Read(b[:])
		s = binary.LittleEndian.Uint64(b[:])
	}
	return mrand.New(mrand.NewPCG(s, s^0x9e3779b97f4a7c15))
}

// between draws uniformly from the closed interval [lo, hi].
func (g *Generator) between(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + g.rng.IntN(hi-lo+1)
}

// Buffers generates the buffer batch.
func (g *Generator) Buffers() ([]Chunk, error) {
	size := g.typ.Size()
	lo := g.cfg.BufferSize.Min / size
	hi := g.cfg.BufferSize.Max / size
	bm := g.cfg.BufferMultiple
	tm := g.cfg.TotalMultiple

	wlo, whi, ok := Window(lo, hi, bm)
	if !ok {
		wlo, whi = lo, hi
	}

	vlo, vhi := g.cfg.ValueRange(g.typ)

	count := g.between(g.cfg.Buffers.Min, g.cfg.Buffers.Max)
	chunks := make([]Chunk, 0, count)
	total := 0
	for i := 0; i < count; i++ {
		n := RoundUp(g.between(lo, hi), bm)
		n = min(max(n, wlo), whi)

		if i == count-1 {
			n += Padding(total+n, bm, tm)
		}
		total += n

		chunk, err := g.chunk(n, vlo, vhi)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}

func (g *Generator) chunk(n int, lo, hi float64) (Chunk, error) {
	values := make([]float64, n)
	for i := range values {
		values[i] = g.value(lo, hi)
	}
	data, err := g.typ.EncodeAll(values)
	if err != nil {
		return Chunk{}, err
	}
	return Chunk{Buffer: stream.Buffer{Type: g.typ, Data: data}, Values: values}, nil
}

// value draws one sample. Integer types draw integers so the recorded value
// is exactly what the element decodes to; float32 rounds to single precision
// and stays inside [lo, hi].
func (g *Generator) value(lo, hi float64) float64 {
	if !g.typ.Float() {
		ilo, ihi := int64(math.Ceil(lo)), int64(math.Floor(hi))
		if ihi <= ilo {
			return float64(ilo)
		}
		return float64(ilo + g.rng.Int64N(ihi-ilo+1))
	}

	f := float32(lo + g.rng.Float64()*(hi-lo))
	if float64(f) > hi {
		f = math.Nextafter32(f, float32(math.Inf(-1)))
	}
	if float64(f) < lo {
		f = math.Nextafter32(f, float32(math.Inf(1)))
	}
	return float64(f)
}

// RoundUp rounds n up to a multiple of m.
func RoundUp(n, m int) int {
	if m <= 1 {
		return n
	}
	return ((n + m - 1) / m) * m
}

// Window returns the multiples of m inside [lo, hi]. ok is false when there
// are none.
func Window(lo, hi, m int) (wlo, whi int, ok bool) {
	if m <= 1 {
		return lo, hi, lo <= hi
	}
	wlo = RoundUp(lo, m)
	whi = (hi / m) * m
	return wlo, whi, wlo <= whi
}

// Padding returns how many elements to add to the last buffer so total
// becomes a multiple of tm. Steps of bm are used when they can reach the
// target, otherwise the plain shortfall.
func Padding(total, bm, tm int) int {
	if tm <= 1 || total%tm == 0 {
		return 0
	}
	if bm > 1 && total%bm == 0 && total%gcd(bm, tm) == 0 {
		pad := 0
		for (total+pad)%tm != 0 {
			pad += bm
		}
		return pad
	}
	return tm - total%tm
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// Label is a generated annotation at an absolute stream index.
type Label struct {
	Index uint64
	Data  string
	ID    string
}

// LabelIndexes draws label positions in [0, total). Duplicate draws are
// dropped rather than redrawn, so fewer indexes than drawn may survive. The
// result is sorted ascending.
func (g *Generator) LabelIndexes(total uint64) []uint64 {
	if total == 0 {
		return nil
	}
	count := g.between(g.cfg.Labels.Min, g.cfg.Labels.Max)
	seen := make(map[uint64]struct{}, count)
	indexes := make([]uint64, 0, count)
	for i := 0; i < count; i++ {
		idx := g.rng.Uint64N(total)
		if _, dup := seen[idx]; dup {
			continue
		}
		seen[idx] = struct{}{}
		indexes = append(indexes, idx)
	}
	slices.Sort(indexes)
	return indexes
}

// Labels generates labels over a stream of total elements.
func (g *Generator) Labels(total uint64) []Label {
	indexes := g.LabelIndexes(total)
	labels := make([]Label, len(indexes))
	for i, idx := range indexes {
		labels[i] = Label{
			Index: idx,
			Data:  g.String(g.between(g.cfg.LabelSize.Min, g.cfg.LabelSize.Max)),
			ID:    stream.LabelID(idx),
		}
	}
	return labels
}

// Locate translates an absolute index into a packet ordinal and the index
// relative to that packet's payload. ok is false when index lies past the
// last packet.
func Locate(index uint64, lengths []int) (packet int, rel uint64, ok bool) {
	rel = index
	for i, n := range lengths {
		if rel < uint64(n) {
			return i, rel, true
		}
		rel -= uint64(n)
	}
	return len(lengths), rel, false
}

// Messages generates the message batch.
func (g *Generator) Messages() []string {
	count := g.between(g.cfg.Messages.Min, g.cfg.Messages.Max)
	out := make([]string, count)
	for i := range out {
		out[i] = g.String(g.between(g.cfg.MessageSize.Min, g.cfg.MessageSize.Max))
	}
	return out
}

const alphanumerics = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// String returns a random alphanumeric string of length n.
func (g *Generator) String(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = alphanumerics[g.rng.IntN(len(alphanumerics))]
	}
	return string(b)
}
