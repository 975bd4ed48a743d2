package cache

// ScopedKeyer prefixes every key of an inner Keyer, so that several
// deployments or users can share one backend without colliding.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "folio:staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means the
// default keyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// LayoutKey implements Keyer.
func (k *ScopedKeyer) LayoutKey(manifestHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(manifestHash, opts)
}

// RenderKey implements Keyer.
func (k *ScopedKeyer) RenderKey(layoutHash string, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(layoutHash, opts)
}
