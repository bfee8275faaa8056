// Package dataset loads the datasets the examples train on.
package dataset

import (
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/tempo-ml/tempo/internal/tensor"
)

// MNIST image geometry.
const (
	ImageRows  = 28
	ImageCols  = 28
	NumClasses = 10
)

// MNIST holds a loaded split of the dataset: raw pixel bytes plus
// class labels.
type MNIST struct {
	Images [][]byte // each ImageRows*ImageCols bytes
	Labels []byte
}

// LoadMNIST reads an IDX image/label pair from dir. train selects the
// 60K training split, otherwise the 10K test split. maxSamples limits
// the number of samples loaded; 0 means all. Both plain and gzipped
// files are accepted.
func LoadMNIST(dir string, train bool, maxSamples int) (*MNIST, error) {
	prefix := "t10k"
	if train {
		prefix = "train"
	}

	images, err := readIDXImages(filepath.Join(dir, prefix+"-images-idx3-ubyte"))
	if err != nil {
		return nil, fmt.Errorf("load images: %w", err)
	}
	labels, err := readIDXLabels(filepath.Join(dir, prefix+"-labels-idx1-ubyte"))
	if err != nil {
		return nil, fmt.Errorf("load labels: %w", err)
	}
	if len(images) != len(labels) {
		return nil, fmt.Errorf("mnist: %d images but %d labels", len(images), len(labels))
	}

	if maxSamples > 0 && maxSamples < len(images) {
		images = images[:maxSamples]
		labels = labels[:maxSamples]
	}
	return &MNIST{Images: images, Labels: labels}, nil
}

// NumSamples returns the number of loaded samples.
func (d *MNIST) NumSamples() int { return len(d.Images) }

// Split partitions the data into train and validation sets, the last
// valFraction going to validation.
func (d *MNIST) Split(valFraction float64) (train, val *MNIST) {
	cut := len(d.Images) - int(float64(len(d.Images))*valFraction)
	train = &MNIST{Images: d.Images[:cut], Labels: d.Labels[:cut]}
	val = &MNIST{Images: d.Images[cut:], Labels: d.Labels[cut:]}
	return train, val
}

// Batch is one training batch: normalized images and int64 class
// labels.
type Batch[B tensor.Backend] struct {
	Images *tensor.Tensor[float32, B] // [batch, 1, 28, 28], pixels in [0, 1]
	Labels *tensor.Tensor[int64, B]   // [batch]
}

// Batches splits the dataset into batches of the given size, dropping
// the remainder. A non-nil rng shuffles sample order first.
func Batches[B tensor.Backend](d *MNIST, batchSize int, rng *rand.Rand, backend B) []*Batch[B] {
	if batchSize <= 0 {
		panic(fmt.Sprintf("dataset: invalid batch size %d", batchSize))
	}

	order := make([]int, len(d.Images))
	for i := range order {
		order[i] = i
	}
	if rng != nil {
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	}

	pixels := ImageRows * ImageCols
	var batches []*Batch[B]
	for start := 0; start+batchSize <= len(order); start += batchSize {
		images := make([]float32, batchSize*pixels)
		labels := make([]int64, batchSize)
		for b, idx := range order[start : start+batchSize] {
			labels[b] = int64(d.Labels[idx])
			for p, px := range d.Images[idx] {
				images[b*pixels+p] = float32(px) / 255
			}
		}

		imgT, err := tensor.FromSlice(images, tensor.Shape{batchSize, 1, ImageRows, ImageCols}, backend)
		if err != nil {
			panic(err)
		}
		lblT, err := tensor.FromSlice(labels, tensor.Shape{batchSize}, backend)
		if err != nil {
			panic(err)
		}
		batches = append(batches, &Batch[B]{Images: imgT, Labels: lblT})
	}
	return batches
}

// Synthetic generates a deterministic fake dataset for tests and for
// running examples without the MNIST files: each class is a distinct
// bright stripe, so even a small model separates them.
func Synthetic(samples int, rng *rand.Rand) *MNIST {
	d := &MNIST{
		Images: make([][]byte, samples),
		Labels: make([]byte, samples),
	}
	for i := range d.Images {
		label := byte(i % NumClasses)
		img := make([]byte, ImageRows*ImageCols)
		// A horizontal band whose position encodes the class.
		rowStart := int(label) * 2
		for r := rowStart; r < rowStart+3 && r < ImageRows; r++ {
			for c := 0; c < ImageCols; c++ {
				img[r*ImageCols+c] = 200 + byte(rng.Intn(55))
			}
		}
		d.Images[i] = img
		d.Labels[i] = label
	}
	return d
}

// openMaybeGzip opens path, falling back to path+".gz" with on-the-fly
// decompression.
func openMaybeGzip(path string) (io.ReadCloser, error) {
	if f, err := os.Open(path); err == nil {
		return f, nil
	}
	f, err := os.Open(path + ".gz")
	if err != nil {
		if strings.HasSuffix(path, ".gz") {
			return nil, err
		}
		return nil, fmt.Errorf("open %s (or .gz): %w", path, err)
	}
	zr, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &gzipFile{zr: zr, f: f}, nil
}

type gzipFile struct {
	zr *gzip.Reader
	f  *os.File
}

func (g *gzipFile) Read(p []byte) (int, error) { return g.zr.Read(p) }

func (g *gzipFile) Close() error {
	zerr := g.zr.Close()
	ferr := g.f.Close()
	if zerr != nil {
		return zerr
	}
	return ferr
}

// readIDXImages reads an IDX image file: magic 2051, then counts and
// raw unsigned-byte pixels.
func readIDXImages(path string) ([][]byte, error) {
	file, err := openMaybeGzip(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var magic uint32
	if err := binary.Read(file, binary.BigEndian, &magic); err != nil {
		return nil, fmt.Errorf("read magic: %w", err)
	}
	if magic != 2051 {
		return nil, fmt.Errorf("invalid image magic: got %d, want 2051", magic)
	}

	var numImages, numRows, numCols uint32
	if err := binary.Read(file, binary.BigEndian, &numImages); err != nil {
		return nil, err
	}
	if err := binary.Read(file, binary.BigEndian, &numRows); err != nil {
		return nil, err
	}
	if err := binary.Read(file, binary.BigEndian, &numCols); err != nil {
		return nil, err
	}
	if numRows != ImageRows || numCols != ImageCols {
		return nil, fmt.Errorf("unexpected image size %dx%d", numRows, numCols)
	}

	size := int(numRows * numCols)
	images := make([][]byte, numImages)
	for i := range images {
		images[i] = make([]byte, size)
		if _, err := io.ReadFull(file, images[i]); err != nil {
			return nil, fmt.Errorf("read image %d: %w", i, err)
		}
	}
	return images, nil
}

// readIDXLabels reads an IDX label file: magic 2049, then raw bytes.
func readIDXLabels(path string) ([]byte, error) {
	file, err := openMaybeGzip(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var magic uint32
	if err := binary.Read(file, binary.BigEndian, &magic); err != nil {
		return nil, fmt.Errorf("read magic: %w", err)
	}
	if magic != 2049 {
		return nil, fmt.Errorf("invalid label magic: got %d, want 2049", magic)
	}

	var numLabels uint32
	if err := binary.Read(file, binary.BigEndian, &numLabels); err != nil {
		return nil, err
	}

	labels := make([]byte, numLabels)
	if _, err := io.ReadFull(file, labels); err != nil {
		return nil, fmt.Errorf("read labels: %w", err)
	}
	return labels, nil
}
