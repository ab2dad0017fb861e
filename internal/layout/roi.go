package layout

import (
	"github.com/robert-malhotra/go-ics/internal/icserr"
)

// ROI selects a strided region: for each axis the first pixel, the extent
// in source pixels and the sampling step. Nil slices select the whole
// axis with step 1.
type ROI struct {
	Offset   []int
	Size     []int
	Sampling []int
}

// normalize fills defaults and checks the region against shape.
func (r ROI) normalize(shape []int) (offset, size, sampling []int, err error) {
	n := len(shape)
	offset, size, sampling = r.Offset, r.Size, r.Sampling
	if offset == nil {
		offset = make([]int, n)
	}
	if size == nil {
		size = make([]int, n)
		for i, s := range shape {
			size[i] = s
			if i < len(offset) {
				size[i] -= offset[i]
			}
		}
	}
	if sampling == nil {
		sampling = make([]int, n)
		for i := range sampling {
			sampling[i] = 1
		}
	}
	if len(offset) != n || len(size) != n || len(sampling) != n {
		return nil, nil, nil, icserr.New(icserr.ErrShapeMismatch, "roi",
			"region has %d/%d/%d entries for %d dimensions", len(offset), len(size), len(sampling), n)
	}
	for i := range shape {
		if offset[i] < 0 || size[i] < 1 || sampling[i] < 1 || offset[i]+size[i] > shape[i] {
			return nil, nil, nil, icserr.New(icserr.ErrShapeMismatch, "roi",
				"axis %d: offset %d size %d sampling %d outside size %d", i, offset[i], size[i], sampling[i], shape[i])
		}
	}
	return offset, size, sampling, nil
}

// ExtractROI copies the region r out of a decoded block of desc with
// pixels of elemSize bytes. It returns the region's pixels, first axis
// fastest, and its descriptor with origins and scales adjusted.
func ExtractROI(data []byte, desc Descriptor, elemSize int, r ROI) ([]byte, Descriptor, error) {
	shape := desc.Shape()
	ndims := len(shape)
	if ndims == 0 {
		return nil, Descriptor{}, icserr.New(icserr.ErrShapeMismatch, "roi", "cannot extract a region from a 0-dimensional image")
	}
	if len(data) < desc.NumElements()*elemSize {
		return nil, Descriptor{}, icserr.New(icserr.ErrShapeMismatch, "roi", "block has %d bytes, layout needs %d",
			len(data), desc.NumElements()*elemSize)
	}
	offset, size, sampling, err := r.normalize(shape)
	if err != nil {
		return nil, Descriptor{}, err
	}

	out := desc.Clone()
	count := make([]int, ndims)
	for i := range count {
		count[i] = (size[i] + sampling[i] - 1) / sampling[i]
		a := &out.Axes[i]
		a.Origin += float64(offset[i]) * a.Scale
		a.Scale *= float64(sampling[i])
		a.Size = count[i]
	}

	srcStrides := desc.Strides(elemSize)
	dstStrides := out.Strides(elemSize)
	result := make([]byte, out.NumElements()*elemSize)

	extractRecursive(data, result, offset, count, sampling, srcStrides, dstStrides, elemSize, 0, 0, ndims-1)
	return result, out, nil
}

// extractRecursive walks from the slowest axis down to axis 0.
func extractRecursive(
	src, dst []byte,
	offset, count, sampling []int,
	srcStrides, dstStrides []int,
	elemSize int,
	srcOffset, dstOffset int,
	dim int,
) {
	if dim == 0 {
		start := srcOffset + offset[0]*srcStrides[0]
		if sampling[0] == 1 {
			// contiguous run
			n := count[0] * elemSize
			copy(dst[dstOffset:dstOffset+n], src[start:start+n])
			return
		}
		step := sampling[0] * srcStrides[0]
		for i := 0; i < count[0]; i++ {
			s := start + i*step
			copy(dst[dstOffset+i*elemSize:dstOffset+(i+1)*elemSize], src[s:s+elemSize])
		}
		return
	}

	for i := 0; i < count[dim]; i++ {
		extractRecursive(
			src, dst,
			offset, count, sampling,
			srcStrides, dstStrides,
			elemSize,
			srcOffset+(offset[dim]+i*sampling[dim])*srcStrides[dim],
			dstOffset+i*dstStrides[dim],
			dim-1,
		)
	}
}
