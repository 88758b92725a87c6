package compiler

import "lox/internal/token"

type Precedence int

const (
	NONE       Precedence = iota
	ASSIGNMENT            // =
	OR                    // or
	AND                   // and
	EQUALITY              // == !=
	COMPARISON            // < > <= >=
	TERM                  // + -
	FACTOR                // * /
	UNARY                 // ! -
	CALL                  // . ()
	PRIMARY
)

// action names a parse behavior; the compiler dispatches on it with a switch.
type action uint8

const (
	actNone action = iota
	actGrouping
	actUnary
	actBinary
	actNumber
	actString
	actLiteral
)

type parseRule struct {
	prefix     action
	infix      action
	precedence Precedence
}

// Token kinds missing from the table have no prefix, no infix and NONE
// precedence.
var rules = map[token.Type]parseRule{
	token.LPAREN: {actGrouping, actNone, NONE},
	token.MINUS:  {actUnary, actBinary, TERM},
	token.PLUS:   {actNone, actBinary, TERM},
	token.SLASH:  {actNone, actBinary, FACTOR},
	token.STAR:   {actNone, actBinary, FACTOR},
	token.BANG:   {actUnary, actNone, NONE},
	token.NE:     {actNone, actBinary, EQUALITY},
	token.EQ:     {actNone, actBinary, EQUALITY},
	token.GT:     {actNone, actBinary, COMPARISON},
	token.GE:     {actNone, actBinary, COMPARISON},
	token.LT:     {actNone, actBinary, COMPARISON},
	token.LE:     {actNone, actBinary, COMPARISON},
	token.STRING: {actString, actNone, NONE},
	token.NUMBER: {actNumber, actNone, NONE},
	token.FALSE:  {actLiteral, actNone, NONE},
	token.TRUE:   {actLiteral, actNone, NONE},
	token.NIL:    {actLiteral, actNone, NONE},
}

func getRule(t token.Type) parseRule {
	return rules[t]
}
