package partwire

// DefaultMaxDepth bounds recursion when Options.MaxDepth is zero.
const DefaultMaxDepth = 1000

type Options struct {
	// SortMapKeys writes map entries ordered by their encoded key bytes
	// instead of Go's map iteration order.
	SortMapKeys bool

	// UnsafePrimitives writes slices and arrays of fixed-width numbers as one
	// memory block. The bytes are identical to per-element encoding.
	UnsafePrimitives bool

	// UnsafeStrings makes decoded strings alias the input buffer; the caller
	// must keep the buffer alive and unmodified.
	UnsafeStrings bool

	// MaxDepth limits value nesting. Zero means DefaultMaxDepth.
	MaxDepth int
}

func (o Options) maxDepth() int {
	if o.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return o.MaxDepth
}
