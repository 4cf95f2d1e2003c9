package ibl

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
)

const MagicNumber = 0x78b85412

type Version uint32

const Version1 = Version(1_000_000)

type Compression uint32

const (
	CompressionNone = Compression(iota)
	CompressionLZ4Fast
	CompressionLZ4
)

var (
	ErrCorrupt   = errors.New("ibl: corrupt cache data")
	ErrCacheMiss = errors.New("ibl: cache miss")
)

// Limits applied when decoding, so a damaged header cannot ask for an
// absurd allocation. maxBundleFloats bounds the whole payload (2 GiB).
const (
	maxSize         = 16384
	maxLevels       = 16
	maxBundleFloats = 512 << 20
	readChunkFloats = 64 << 10
)

type header struct {
	Check       uint32
	Version     Version
	Compression Compression
}

type cubeHeader struct {
	Size   uint32
	Levels uint32
}

// Encode writes the bundle. The header is never compressed; everything after
// it is an lz4 frame unless compression is CompressionNone.
func Encode(w io.Writer, b *Bundle, compression Compression) error {
	h := header{Check: MagicNumber, Version: Version1, Compression: compression}
	if err := binary.Write(w, binary.LittleEndian, h); err != nil {
		return fmt.Errorf("ibl: write header: %w", err)
	}

	bw := bufio.NewWriter(w)
	var payload io.Writer = bw
	var zw *lz4.Writer
	switch compression {
	case CompressionNone:
	case CompressionLZ4Fast, CompressionLZ4:
		zw = lz4.NewWriter(bw)
		level := lz4.Fast
		if compression == CompressionLZ4 {
			level = lz4.Level9
		}
		if err := zw.Apply(lz4.CompressionLevelOption(level)); err != nil {
			return fmt.Errorf("ibl: configure lz4: %w", err)
		}
		payload = zw
	default:
		return fmt.Errorf("ibl: unknown compression %d", compression)
	}

	for _, env := range []*CubeEnv{b.Cubemap, b.Irradiance, b.Prefilter} {
		if err := writeCube(payload, env); err != nil {
			return err
		}
	}
	if err := binary.Write(payload, binary.LittleEndian, uint32(b.BRDF.Size)); err != nil {
		return fmt.Errorf("ibl: write brdf: %w", err)
	}
	if err := binary.Write(payload, binary.LittleEndian, b.BRDF.Data); err != nil {
		return fmt.Errorf("ibl: write brdf: %w", err)
	}

	if zw != nil {
		if err := zw.Close(); err != nil {
			return fmt.Errorf("ibl: close lz4: %w", err)
		}
	}
	return bw.Flush()
}

func writeCube(w io.Writer, env *CubeEnv) error {
	if env == nil {
		return errors.New("ibl: bundle is missing a cubemap")
	}
	ch := cubeHeader{Size: uint32(env.BaseSize), Levels: uint32(env.Levels)}
	if err := binary.Write(w, binary.LittleEndian, ch); err != nil {
		return fmt.Errorf("ibl: write cube header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, env.All()); err != nil {
		return fmt.Errorf("ibl: write cube data: %w", err)
	}
	return nil
}

// Decode reads a bundle written by Encode. Structural problems are reported
// as ErrCorrupt.
func Decode(r io.Reader) (*Bundle, error) {
	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrCorrupt, err)
	}
	if h.Check != MagicNumber {
		return nil, fmt.Errorf("%w: expected magic number 0x%08x but was 0x%08x", ErrCorrupt, MagicNumber, h.Check)
	}
	if h.Version != Version1 {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, h.Version)
	}

	var payload io.Reader = bufio.NewReader(r)
	switch h.Compression {
	case CompressionNone:
	case CompressionLZ4Fast, CompressionLZ4:
		payload = lz4.NewReader(payload)
	default:
		return nil, fmt.Errorf("%w: unknown compression %d", ErrCorrupt, h.Compression)
	}

	d := &decoder{r: payload, budget: maxBundleFloats}
	b := &Bundle{}
	var err error
	if b.Cubemap, err = d.cube(); err != nil {
		return nil, err
	}
	if b.Irradiance, err = d.cube(); err != nil {
		return nil, err
	}
	if b.Prefilter, err = d.cube(); err != nil {
		return nil, err
	}

	var brdfSize uint32
	if err := binary.Read(payload, binary.LittleEndian, &brdfSize); err != nil {
		return nil, fmt.Errorf("%w: brdf size: %v", ErrCorrupt, err)
	}
	if brdfSize == 0 || brdfSize > maxSize {
		return nil, fmt.Errorf("%w: brdf size %d", ErrCorrupt, brdfSize)
	}
	b.BRDF.Size = int(brdfSize)
	if b.BRDF.Data, err = d.floats(int(brdfSize)*int(brdfSize)*2, "brdf data"); err != nil {
		return nil, err
	}
	return b, nil
}

// decoder reads float payloads against a shared budget. Data is read in
// chunks so a short stream fails before the declared size is allocated.
type decoder struct {
	r      io.Reader
	budget int
}

func (d *decoder) floats(n int, what string) ([]float32, error) {
	if n > d.budget {
		return nil, fmt.Errorf("%w: %s needs %d floats, %d left in budget", ErrCorrupt, what, n, d.budget)
	}
	d.budget -= n

	out := make([]float32, 0, min(n, readChunkFloats))
	chunk := make([]float32, min(n, readChunkFloats))
	for len(out) < n {
		part := chunk[:min(n-len(out), len(chunk))]
		if err := binary.Read(d.r, binary.LittleEndian, part); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, what, err)
		}
		out = append(out, part...)
	}
	return out, nil
}

func (d *decoder) cube() (*CubeEnv, error) {
	var ch cubeHeader
	if err := binary.Read(d.r, binary.LittleEndian, &ch); err != nil {
		return nil, fmt.Errorf("%w: cube header: %v", ErrCorrupt, err)
	}
	if ch.Size == 0 || ch.Size > maxSize || ch.Levels == 0 || ch.Levels > maxLevels {
		return nil, fmt.Errorf("%w: cube size %d levels %d", ErrCorrupt, ch.Size, ch.Levels)
	}
	data, err := d.floats(CubePixels(int(ch.Size), int(ch.Levels))*Channels, "cube data")
	if err != nil {
		return nil, err
	}
	return NewCubeEnv(data, int(ch.Size), int(ch.Levels))
}
