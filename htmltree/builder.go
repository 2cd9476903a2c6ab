package htmltree

// CloseFunc receives the open-element stack, root first, right before its
// top element is popped. The slice is reused by the builder and must not be
// retained after the call returns.
type CloseFunc func(stack []*Element) error

// Builder keeps the stack of live elements for a stream of tag events.
type Builder struct {
	stack   []*Element
	onClose CloseFunc
}

func NewBuilder(fn CloseFunc) *Builder {
	return &Builder{
		stack:   make([]*Element, 0, 32),
		onClose: fn,
	}
}

// Start opens a new element. An open void element on top of the stack is
// closed first since it never gets an end tag of its own.
func (b *Builder) Start(name string, attrs []Attribute) error {
	if top := b.top(); top != nil && IsVoid(top.Name) {
		if err := b.End(top.Name); err != nil {
			return err
		}
	}
	b.stack = append(b.stack, NewElement(name, attrs))

	return nil
}

// End pops elements until one named name has been popped or the stack is
// empty. The callback sees the stack before every single pop.
func (b *Builder) End(name string) error {
	for len(b.stack) > 0 {
		if b.onClose != nil {
			if err := b.onClose(b.stack); err != nil {
				return err
			}
		}
		last := len(b.stack) - 1
		e := b.stack[last]
		b.stack[last] = nil
		b.stack = b.stack[:last]
		if e.Name == name {
			break
		}
	}

	return nil
}

// Text appends data to the innermost open element.
func (b *Builder) Text(data string) {
	if top := b.top(); top != nil {
		top.Texts = append(top.Texts, data)
	}
}

// Finish flushes every element still open at the end of input.
func (b *Builder) Finish() error {
	return b.End("")
}

func (b *Builder) Depth() int {
	return len(b.stack)
}

// Reset drops all open elements without invoking the callback.
func (b *Builder) Reset() {
	for i := range b.stack {
		b.stack[i] = nil
	}
	b.stack = b.stack[:0]
}

func (b *Builder) top() *Element {
	if len(b.stack) == 0 {
		return nil
	}

	return b.stack[len(b.stack)-1]
}
