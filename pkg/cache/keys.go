package cache

// Keyer builds cache keys.
type Keyer interface {
	// LayoutKey identifies a computed layout of the manifest whose content
	// hash is manifestHash.
	LayoutKey(manifestHash string, opts LayoutKeyOpts) string

	// RenderKey identifies a rendering of the layout whose content hash is
	// layoutHash.
	RenderKey(layoutHash string, opts RenderKeyOpts) string
}

// LayoutKeyOpts are the options that change a layout.
type LayoutKeyOpts struct {
	Mode   string  `json:"mode"`
	Paged  bool    `json:"paged"`
	Margin float64 `json:"margin"`
}

// RenderKeyOpts are the options that change a rendering.
type RenderKeyOpts struct {
	Format string  `json:"format"`
	Scale  float64 `json:"scale"`
	Labels bool    `json:"labels"`
}

// DefaultKeyer hashes options into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(manifestHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", manifestHash, opts)
}

// RenderKey implements Keyer.
func (DefaultKeyer) RenderKey(layoutHash string, opts RenderKeyOpts) string {
	return hashKey("render", layoutHash, opts)
}
