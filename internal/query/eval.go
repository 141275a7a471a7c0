package query

import (
	"github.com/Adithya-Monish-Kumar-K/Corpus-Retrieval-Pipeline/internal/indexfile"
	pkgerrors "github.com/Adithya-Monish-Kumar-K/Corpus-Retrieval-Pipeline/pkg/errors"
)

// intersect returns A ∩ B for sorted, duplicate-free inputs.
func intersect(a, b []uint32) []uint32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	out := make([]uint32, 0, n)
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			out = append(out, a[i])
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return out
}

// union returns A ∪ B for sorted, duplicate-free inputs.
func union(a, b []uint32) []uint32 {
	out := make([]uint32, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			out = append(out, a[i])
			i++
			j++
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		default:
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}

// difference returns universe \ A for sorted, duplicate-free inputs.
func difference(universe, a []uint32) []uint32 {
	capHint := 0
	if len(universe) > len(a) {
		capHint = len(universe) - len(a)
	}
	out := make([]uint32, 0, capHint)
	i, j := 0, 0
	for i < len(universe) && j < len(a) {
		switch {
		case universe[i] == a[j]:
			i++
			j++
		case universe[i] < a[j]:
			out = append(out, universe[i])
			i++
		default:
			j++
		}
	}
	out = append(out, universe[i:]...)
	return out
}

// Universe returns the ordered docId sequence [0, docsCount).
func Universe(docsCount uint32) []uint32 {
	u := make([]uint32, docsCount)
	for i := range u {
		u[i] = uint32(i)
	}
	return u
}

// evalRPN evaluates a compiled query over the index. Every intermediate
// value is a sorted docId vector, so all three operators are linear merges.
func evalRPN(idx *indexfile.Index, universe []uint32, rpn []Token) ([]uint32, error) {
	var stack [][]uint32

	for _, tk := range rpn {
		switch tk.Kind {
		case TokTerm:
			postings, err := idx.PostingsForTerm(tk.Text)
			if err != nil {
				return nil, err
			}
			stack = append(stack, postings)

		case TokNot:
			if len(stack) == 0 {
				return nil, pkgerrors.New(pkgerrors.ErrParse, "NOT without operand")
			}
			a := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			stack = append(stack, difference(universe, a))

		case TokAnd, TokOr:
			if len(stack) < 2 {
				return nil, pkgerrors.New(pkgerrors.ErrParse, "binary operator without 2 operands")
			}
			b := stack[len(stack)-1]
			a := stack[len(stack)-2]
			stack = stack[:len(stack)-2]
			if tk.Kind == TokAnd {
				stack = append(stack, intersect(a, b))
			} else {
				stack = append(stack, union(a, b))
			}

		default:
			return nil, pkgerrors.New(pkgerrors.ErrParse, "unexpected token in RPN")
		}
	}

	if len(stack) != 1 {
		return nil, pkgerrors.New(pkgerrors.ErrParse, "bad expression")
	}
	return stack[0], nil
}

// Engine evaluates query lines against one loaded index. The index and the
// universe are immutable after construction, so an Engine is safe for
// concurrent use.
type Engine struct {
	idx      *indexfile.Index
	universe []uint32
}

func NewEngine(idx *indexfile.Index) *Engine {
	return &Engine{
		idx:      idx,
		universe: Universe(idx.Meta.DocsCount),
	}
}

// Evaluate runs one query line through lex → implicit AND → RPN → merge
// evaluation. A line with no terms yields an empty result and no error.
func (e *Engine) Evaluate(line string) ([]uint32, error) {
	toks := insertImplicitAnd(Lex(line))

	hasTerm := false
	for _, t := range toks {
		if t.Kind == TokTerm {
			hasTerm = true
			break
		}
	}
	if !hasTerm {
		return nil, nil
	}

	rpn, err := toRPN(toks)
	if err != nil {
		return nil, err
	}
	return evalRPN(e.idx, e.universe, rpn)
}

// DocsCount exposes the corpus size of the loaded index.
func (e *Engine) DocsCount() uint32 {
	return e.idx.Meta.DocsCount
}

// Doc returns the forward entry for docId.
func (e *Engine) Doc(docID uint32) indexfile.DocInfo {
	return e.idx.Docs[docID]
}

// NumDocs returns the number of forward entries.
func (e *Engine) NumDocs() int {
	return len(e.idx.Docs)
}
