package query

import (
	pkgerrors "github.com/Adithya-Monish-Kumar-K/Corpus-Retrieval-Pipeline/pkg/errors"
)

// insertImplicitAnd inserts an AND between any adjacent pair where the left
// side ends an operand (term or ')') and the right side starts one (term,
// '(' or '!').
func insertImplicitAnd(in []Token) []Token {
	out := make([]Token, 0, len(in)*2)
	for _, cur := range in {
		if len(out) > 0 {
			prev := out[len(out)-1].Kind
			operandEnd := prev == TokTerm || prev == TokRParen
			operandStart := cur.Kind == TokTerm || cur.Kind == TokLParen || cur.Kind == TokNot
			if operandEnd && operandStart {
				out = append(out, Token{Kind: TokAnd})
			}
		}
		out = append(out, cur)
	}
	return out
}

// Precedence: NOT binds tightest and is right-associative; AND over OR, both
// left-associative.
func precedence(k TokenKind) int {
	switch k {
	case TokNot:
		return 3
	case TokAnd:
		return 2
	case TokOr:
		return 1
	default:
		return 0
	}
}

func isRightAssoc(k TokenKind) bool {
	return k == TokNot
}

// toRPN compiles the token stream to reverse Polish notation with the
// shunting-yard algorithm. Unmatched parentheses are parse errors.
func toRPN(toks []Token) ([]Token, error) {
	rpn := make([]Token, 0, len(toks))
	var opstack []Token
	par := 0

	for _, tk := range toks {
		switch tk.Kind {
		case TokTerm:
			rpn = append(rpn, tk)

		case TokLParen:
			opstack = append(opstack, tk)
			par++

		case TokRParen:
			par--
			if par < 0 {
				return nil, pkgerrors.New(pkgerrors.ErrParse, "unmatched ')'")
			}
			for len(opstack) > 0 && opstack[len(opstack)-1].Kind != TokLParen {
				rpn = append(rpn, opstack[len(opstack)-1])
				opstack = opstack[:len(opstack)-1]
			}
			if len(opstack) == 0 {
				return nil, pkgerrors.New(pkgerrors.ErrParse, "unmatched ')'")
			}
			opstack = opstack[:len(opstack)-1]

		case TokNot, TokAnd, TokOr:
			p := precedence(tk.Kind)
			for len(opstack) > 0 {
				top := opstack[len(opstack)-1]
				if top.Kind == TokLParen {
					break
				}
				p2 := precedence(top.Kind)
				if p2 > p || (p2 == p && !isRightAssoc(tk.Kind)) {
					rpn = append(rpn, top)
					opstack = opstack[:len(opstack)-1]
					continue
				}
				break
			}
			opstack = append(opstack, tk)
		}
	}

	if par != 0 {
		return nil, pkgerrors.New(pkgerrors.ErrParse, "unmatched '('")
	}
	for len(opstack) > 0 {
		top := opstack[len(opstack)-1]
		if top.Kind == TokLParen {
			return nil, pkgerrors.New(pkgerrors.ErrParse, "unmatched '('")
		}
		rpn = append(rpn, top)
		opstack = opstack[:len(opstack)-1]
	}
	return rpn, nil
}
