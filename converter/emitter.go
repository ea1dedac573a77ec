package converter

// blockState tracks whether an it-block is open. Blocks do not nest, so the
// indent is 0 outside and 1 inside.
type blockState int

const (
	stateOutside blockState = iota
	stateInsideBlock
)

func (s blockState) indent() int {
	if s == stateInsideBlock {
		return 1
	}
	return 0
}

// emitter walks tokens in order and writes Cypress code.
type emitter struct {
	w     codeWriter
	state blockState
}

func (e *emitter) emit(tok Token) {
	switch tok.Command {
	case CommandIt:
		if e.state == stateInsideBlock {
			e.closeBlock()
			e.w.Blank()
		}
		e.w.Linef("%s", CommandIt.Emit([]string{describe(tok.Args)}))
		e.enter(stateInsideBlock)
	case CommandEnd:
		// end without an open block is ignored.
		if e.state == stateInsideBlock {
			e.closeBlock()
			e.w.Blank()
		}
	case CommandUnknown:
		e.w.Linef("// Unknown command: %s", tok.Line)
	default:
		e.w.Linef("%s", tok.Command.Emit(wrapAll(tok.Args)))
	}
}

// finish closes a block left open at end of input. No separator follows.
func (e *emitter) finish() {
	if e.state == stateInsideBlock {
		e.closeBlock()
	}
}

func (e *emitter) closeBlock() {
	e.enter(stateOutside)
	e.w.Linef("%s", CommandEnd.Emit(nil))
}

func (e *emitter) enter(s blockState) {
	e.state = s
	e.w.SetIndent(s.indent())
}

// describe wraps the block description. it() with no argument gets an empty
// string literal.
func describe(a []string) string {
	if len(a) == 0 {
		return WrapValue("")
	}
	return WrapValue(a[0])
}
