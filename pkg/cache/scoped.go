package cache

// ScopedKeyer wraps a Keyer with a prefix so several deployments can share
// one Redis or MongoDB instance without seeing each other's entries.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ResultKey generates a prefixed key for solved arrangements.
func (k *ScopedKeyer) ResultKey(docHash string, opts ResultKeyOpts) string {
	return k.prefix + k.inner.ResultKey(docHash, opts)
}

// PreviewKey generates a prefixed key for rendered previews.
func (k *ScopedKeyer) PreviewKey(resultHash string, opts PreviewKeyOpts) string {
	return k.prefix + k.inner.PreviewKey(resultHash, opts)
}

// GraphKey generates a prefixed key for overlap graphs.
func (k *ScopedKeyer) GraphKey(docHash string) string {
	return k.prefix + k.inner.GraphKey(docHash)
}
