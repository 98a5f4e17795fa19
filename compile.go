package hxview

// Compile turns node into a fragment, evaluating expressions against ctx.
//
// The result is all or nothing: the first failure anywhere in the tree is
// returned as a *CompileError and no fragment is produced.
func (c *Compiler) Compile(reg Registry, node Node, ctx Context) (Fragment, error) {
	f, err := c.compile(reg, node, ctx)
	if err != nil {
		c.debugf("hxview: %s at %v", err.Reason, err.Spec)
		return Fragment{}, err
	}
	return f, nil
}

func (c *Compiler) compile(reg Registry, node Node, ctx Context) (Fragment, *CompileError) {
	switch n := node.(type) {
	case *List:
		return c.compileList(reg, n.Items, ctx)
	case *ViewRef:
		return c.compileViewRef(reg, n, ctx)
	case *Tag:
		return c.compileTag(reg, n, ctx)
	case *Text:
		return c.compileText(n, ctx)
	case *Loop:
		return c.compileLoop(reg, n, ctx)
	case *Either:
		return c.compileEither(reg, n, ctx)
	case *Map:
		return c.compileMap(n, ctx)
	case *Timestamp:
		return c.compileTimestamp(n, ctx)
	case *Code:
		return c.compileCode(n, ctx)
	case *Markdown:
		return c.compileMarkdown(n, ctx)
	}
	return Fragment{}, newError(specOf(node), ctx, ReasonViewNotSupported, nil)
}

func (c *Compiler) encode(node Node, expr Expr, ctx Context) (any, *CompileError) {
	v, err := c.encoder.Encode(expr, ctx)
	if err != nil {
		return nil, newError(specOf(node), ctx, ReasonEncode, err)
	}
	return v, nil
}

func (c *Compiler) compileList(reg Registry, items []Node, ctx Context) (Fragment, *CompileError) {
	out := make([]Fragment, 0, len(items))
	for _, item := range items {
		f, err := c.compile(reg, item, ctx)
		if err != nil {
			return Fragment{}, err
		}
		out = append(out, f)
	}
	return ListOf(out...), nil
}

func (c *Compiler) compileViewRef(reg Registry, n *ViewRef, ctx Context) (Fragment, *CompileError) {
	view, err := c.resolve(reg, n.Name, ctx, false)
	if err != nil {
		return Fragment{}, err
	}
	params, err := c.encode(n, n.Params, ctx)
	if err != nil {
		return Fragment{}, err
	}
	if n.HasCondition {
		cond, err := c.encode(n, n.Condition, ctx)
		if err != nil {
			return Fragment{}, err
		}
		if !Truthy(cond) {
			c.debugf("hxview: view %v skipped", n.Name)
			return emptyElement(), nil
		}
	}
	// Loop bindings of the caller are not visible inside the view: it sees
	// the settings and its params only.
	return c.compile(reg, view, c.settings.With(asMap(params)))
}

func (c *Compiler) compileTag(reg Registry, n *Tag, ctx Context) (Fragment, *CompileError) {
	attrs, err := c.compileAttrs(n, ctx)
	if err != nil {
		return Fragment{}, err
	}
	var children []Fragment
	if n.Children != nil {
		f, err := c.compile(reg, n.Children, ctx)
		if err != nil {
			return Fragment{}, err
		}
		if f.Kind == ListFragment {
			children = f.Children
		} else {
			children = []Fragment{f}
		}
	}
	return Element(n.Tag, attrs, children...), nil
}

// compileAttrs evaluates plain attributes now and binds event attributes
// for evaluation when the event fires. Event keys of a literal attribute map
// are split off first; the rest is encoded as one value, so the encoder
// decides whether it is an expression.
func (c *Compiler) compileAttrs(n *Tag, ctx Context) (Attrs, *CompileError) {
	if n.Attrs == nil {
		return Attrs{}, nil
	}

	out := Attrs{}
	spec := n.Attrs
	if raw, ok := n.Attrs.(map[string]any); ok {
		plain := make(map[string]any, len(raw))
		for k, v := range raw {
			if IsEventAttr(k) {
				out[k] = c.bind(k, v, ctx)
			} else {
				plain[k] = v
			}
		}
		spec = plain
	}

	v, err := c.encode(n, spec, ctx)
	if err != nil {
		return nil, err
	}
	for k, val := range asMap(v) {
		if IsEventAttr(k) {
			out[k] = c.bind(k, val, ctx)
		} else {
			out[k] = val
		}
	}
	return out, nil
}

func (c *Compiler) compileText(n *Text, ctx Context) (Fragment, *CompileError) {
	v, err := c.encode(n, n.Text, ctx)
	if err != nil {
		return Fragment{}, err
	}
	return TextLeaf(textOf(v)), nil
}

func (c *Compiler) compileLoop(reg Registry, n *Loop, ctx Context) (Fragment, *CompileError) {
	itemView, err := c.resolve(reg, n.With, ctx, false)
	if err != nil {
		return Fragment{}, err
	}
	v, err := c.encode(n, n.Loop, ctx)
	if err != nil {
		return Fragment{}, err
	}
	items := sequence(v)
	if len(items) == 0 {
		return ListOf(), nil
	}
	shared, err := c.encode(n, n.Context, ctx)
	if err != nil {
		return Fragment{}, err
	}

	out := make([]Fragment, 0, len(items))
	for i, item := range items {
		itemCtx := c.settings.With(map[string]any{
			"item":    item,
			"context": shared,
			"index":   i,
		})
		f, err := c.compile(reg, itemView, itemCtx)
		if err != nil {
			return Fragment{}, err
		}
		out = append(out, f)
	}
	return ListOf(out...), nil
}

// compileEither compiles Then for a truthy condition and Else otherwise. A
// missing branch renders the empty element, as a false ViewRef does.
func (c *Compiler) compileEither(reg Registry, n *Either, ctx Context) (Fragment, *CompileError) {
	cond, err := c.encode(n, n.Cond, ctx)
	if err != nil {
		return Fragment{}, err
	}
	branch := n.Else
	if Truthy(cond) {
		branch = n.Then
	}
	if branch == nil {
		return emptyElement(), nil
	}
	return c.compile(reg, branch, ctx)
}

func (c *Compiler) compileTimestamp(n *Timestamp, ctx Context) (Fragment, *CompileError) {
	v, err := c.encode(n, n.Expr, ctx)
	if err != nil {
		return Fragment{}, err
	}
	return TextLeaf(textOf(v)), nil
}
