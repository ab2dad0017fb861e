// Package layout derives the binary layout of an ICS pixel block from the
// header model, and writes it back.
//
// An ICS image is a dense N-dimensional array. The first axis varies
// fastest in the stored byte stream, so the byte stride of axis i is the
// element size times the product of the sizes of the axes before it. The
// layout.order and layout.sizes keys carry an extra leading "bits" entry
// whose size is the pixel bit width; it is not an axis of the array.
//
// # Resolving
//
// [Resolve] checks the mandatory keys and cross-key consistency and
// returns a [Resolved] layout: container version, [Descriptor], pixel
// format, compression method and where the data block lives:
//
//	r, err := layout.Resolve(model, headerEnd)
//	n := r.Desc.ByteLen(r.Format)
//
// Version 1.0 files keep the data in a sibling ".ids" file and ignore any
// source keys. Version 2.0 files keep it after the header's "end" line
// unless source.file or source.offset point elsewhere.
//
// # Writing
//
// [Apply] is the inverse of Resolve: it stores the layout and
// representation keys describing a descriptor and format into a model.
//
// # Regions of Interest
//
// [ExtractROI] copies a strided sub-region out of a decoded block. It
// recurses from the slowest axis down to axis 0, where runs of
// consecutive pixels are copied in one step.
package layout
