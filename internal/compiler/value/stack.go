package value

import "fmt"

// Frame is one immutable lexical scope: a mapping from name to value. The
// bottom-most frame of every Stack holds the built-in registry.
//
// Unpacked marks an "unpacked frame": one pushed for an object-valued "@"
// whose own fields were spread into the frame alongside "@", as opposed to a
// frame that only binds "@" (pushed for a non-object context, e.g. an array
// item in a pipeline stage) or one built from an arbitrary name->value
// mapping (e.g. reduce's accumulator pair). Only Unpacked frames count
// against the "$" root-escape depth: a plain "@"-only frame introduces no
// field names to collide with, so it is transparent to "$" and is skipped
// without consuming a level.
type Frame struct {
	vars     map[string]Value
	Unpacked bool
}

// NewFrame builds a frame from a ready-made variable mapping. Such frames
// are never "$"-escape checkpoints: they bind whatever names the caller
// chose, not an object's own fields.
func NewFrame(vars map[string]Value) *Frame {
	if vars == nil {
		vars = map[string]Value{}
	}
	return &Frame{vars: vars}
}

// Lookup returns the value bound to name in this frame alone.
func (f *Frame) Lookup(name string) (Value, bool) {
	v, ok := f.vars[name]
	return v, ok
}

// Stack is an ordered sequence of frames, innermost last. Every reference
// resolution walks frames from innermost to outermost; the first definition
// found wins. Stacks are append-only during descent: Push
// returns a new Stack with its own copy of the parent's frames, so sibling branches
// of evaluation never observe each other's pushed frames.
type Stack struct {
	frames []*Frame
}

// NewStack builds a stack whose only frame is the given built-in frame.
func NewStack(builtins *Frame) *Stack {
	return &Stack{frames: []*Frame{builtins}}
}

// Push returns a new Stack with frame appended as the new innermost scope.
func (s *Stack) Push(frame *Frame) *Stack {
	next := make([]*Frame, len(s.frames)+1)
	copy(next, s.frames)
	next[len(s.frames)] = frame
	return &Stack{frames: next}
}

// Depth returns the number of frames on the stack.
func (s *Stack) Depth() int {
	return len(s.frames)
}

// Lookup resolves name by walking frames from innermost to outermost.
func (s *Stack) Lookup(name string) (Value, error) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if v, ok := s.frames[i].Lookup(name); ok {
			return v, nil
		}
	}
	return nil, fmt.Errorf("undefined reference: %s", name)
}

// LookupEscaped resolves name after skipping past skip Unpacked frames,
// implementing the "$" root-escape mechanism: skip==1 escapes the innermost
// unpacked-struct frame (the one pushed for the nearest object-valued "@"),
// so a name it bound no longer shadows an
// outer definition of the same name; each additional repeated "$."
// escalates skip by one more. Plain "@"-only frames (pushed for a
// non-object context, e.g. an array item) carry no field bindings of their
// own and are transparent: they are skipped without consuming a level.
func (s *Stack) LookupEscaped(skip int, name string) (Value, error) {
	unpackedSeen := 0
	start := -2 // sentinel: "never found enough unpacked frames"
	for i := len(s.frames) - 1; i >= 0; i-- {
		if s.frames[i].Unpacked {
			unpackedSeen++
			if unpackedSeen == skip {
				start = i - 1
				break
			}
		}
	}
	if start == -2 {
		return nil, fmt.Errorf("$ escapes past the root scope")
	}
	for i := start; i >= 0; i-- {
		if v, ok := s.frames[i].Lookup(name); ok {
			return v, nil
		}
	}
	return nil, fmt.Errorf("undefined reference: %s", name)
}

// PushContext pushes the standard frame used by every context-binding
// construct (map/filter/pipelines/apply/...): "@" is bound to item, and if
// item is an object, its own fields are additionally bound as bare
// identifiers in the same frame.
func (s *Stack) PushContext(item Value) *Stack {
	vars := map[string]Value{"@": item}
	obj, unpacked := item.(Object)
	if unpacked {
		for k, v := range obj {
			vars[k] = v
		}
	}
	return s.Push(&Frame{vars: vars, Unpacked: unpacked})
}
