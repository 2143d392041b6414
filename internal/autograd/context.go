package autograd

// Context owns the gradient-tracking switch for a family of tensors. Every
// tensor is created through a Context and consults it when an operation runs:
// with tracking off, operations still compute values but record no graph
// edges, so nothing done in that window is differentiated.
//
// A Context and the graphs built under it are not safe for concurrent use;
// give each goroutine its own Context. Separate contexts share nothing.
type Context struct {
	enabled bool
}

// NewContext creates a context with gradient tracking enabled.
func NewContext() *Context {
	return &Context{enabled: true}
}

// GradEnabled reports whether operations currently record graph edges.
func (c *Context) GradEnabled() bool {
	return c.enabled
}

// SetGradEnabled switches gradient tracking on or off.
func (c *Context) SetGradEnabled(v bool) {
	c.enabled = v
}

// NoGrad runs fn with gradient tracking disabled and restores the previous
// state afterwards, also on panic. Scopes nest: a NoGrad inside a NoGrad
// leaves tracking off until the outermost scope exits.
func (c *Context) NoGrad(fn func()) {
	prev := c.enabled
	c.enabled = false
	defer func() {
		c.enabled = prev
	}()
	fn()
}
