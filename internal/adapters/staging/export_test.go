package staging

// SetBeforeSwap installs a hook that runs between the metadata write and
// the directory swap.
func (p *Promoter) SetBeforeSwap(fn func() error) {
	p.beforeSwap = fn
}
