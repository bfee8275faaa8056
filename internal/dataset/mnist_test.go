package dataset

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tempo-ml/tempo/internal/backend/cpu"
	"github.com/tempo-ml/tempo/internal/tensor"
)

func writeIDX(t *testing.T, path string, magic uint32, dims []uint32, payload []byte, compress bool) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.BigEndian, magic))
	for _, d := range dims {
		require.NoError(t, binary.Write(&buf, binary.BigEndian, d))
	}
	buf.Write(payload)

	data := buf.Bytes()
	if compress {
		var gz bytes.Buffer
		zw := gzip.NewWriter(&gz)
		_, err := zw.Write(data)
		require.NoError(t, err)
		require.NoError(t, zw.Close())
		data = gz.Bytes()
		path += ".gz"
	}
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func writeFixture(t *testing.T, dir string, samples int, compress bool) {
	t.Helper()
	pixels := make([]byte, samples*ImageRows*ImageCols)
	labels := make([]byte, samples)
	for i := 0; i < samples; i++ {
		labels[i] = byte(i % NumClasses)
		pixels[i*ImageRows*ImageCols] = byte(i + 1)
	}
	writeIDX(t, filepath.Join(dir, "train-images-idx3-ubyte"), 2051,
		[]uint32{uint32(samples), ImageRows, ImageCols}, pixels, compress)
	writeIDX(t, filepath.Join(dir, "train-labels-idx1-ubyte"), 2049,
		[]uint32{uint32(samples)}, labels, compress)
}

func TestLoadMNIST(t *testing.T) {
	for _, compress := range []bool{false, true} {
		name := "plain"
		if compress {
			name = "gzip"
		}
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			writeFixture(t, dir, 12, compress)

			d, err := LoadMNIST(dir, true, 0)
			require.NoError(t, err)
			assert.Equal(t, 12, d.NumSamples())
			assert.Equal(t, byte(3), d.Labels[3])
			assert.Equal(t, byte(5), d.Images[4][0])
		})
	}
}

func TestLoadMNISTMaxSamples(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, 10, false)

	d, err := LoadMNIST(dir, true, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, d.NumSamples())
}

func TestLoadMNISTBadMagic(t *testing.T) {
	dir := t.TempDir()
	writeIDX(t, filepath.Join(dir, "train-images-idx3-ubyte"), 1234,
		[]uint32{1, ImageRows, ImageCols}, make([]byte, ImageRows*ImageCols), false)
	writeIDX(t, filepath.Join(dir, "train-labels-idx1-ubyte"), 2049,
		[]uint32{1}, []byte{0}, false)

	_, err := LoadMNIST(dir, true, 0)
	assert.Error(t, err)
}

func TestSplit(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, 10, false)
	d, err := LoadMNIST(dir, true, 0)
	require.NoError(t, err)

	train, val := d.Split(0.2)
	assert.Equal(t, 8, train.NumSamples())
	assert.Equal(t, 2, val.NumSamples())
}

func TestBatches(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(3))
	d := Synthetic(10, rng)

	batches := Batches(d, 4, nil, backend)
	require.Len(t, batches, 2, "remainder is dropped")

	b := batches[0]
	assert.True(t, b.Images.Shape().Equal(tensor.Shape{4, 1, ImageRows, ImageCols}))
	assert.True(t, b.Labels.Shape().Equal(tensor.Shape{4}))

	// Unshuffled batches keep dataset order and normalize to [0, 1].
	assert.Equal(t, int64(0), b.Labels.At(0))
	assert.Equal(t, int64(1), b.Labels.At(1))
	for _, px := range b.Images.Data() {
		assert.GreaterOrEqual(t, px, float32(0))
		assert.LessOrEqual(t, px, float32(1))
	}
}

func TestSyntheticSeparable(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	d := Synthetic(NumClasses, rng)

	// Each class lights a different band, so the images differ.
	for i := 1; i < NumClasses; i++ {
		assert.NotEqual(t, d.Images[0], d.Images[i])
	}
}
