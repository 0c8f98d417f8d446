// Package arith implements best-effort symbolic reasoning over ir
// expressions: substitution through a definition map and a sound,
// incomplete equality prover based on canonical expression forms.
package arith

import (
	"fmt"
	"math/big"
	"sort"
	"strings"
)

type (
	// canonical is an expression in canonical form. Two expressions that
	// compare equal are equal for every assignment of their symbols.
	canonical interface {
		fmt.Stringer
		compare(other canonical) bool
		simplify() canonical
	}

	// evaluable is a canonical that may fold to a constant. integer
	// returns nil when the expression still contains symbols.
	evaluable interface {
		integer() *big.Int
	}

	num struct {
		val *big.Int
	}

	sym struct {
		name string
	}

	// nary is an operator applied to canonical arguments. Arguments of
	// commutative operators are kept sorted by their string form so that
	// argument order never defeats a comparison.
	nary struct {
		op          string
		commutative bool
		args        []canonical
		str         string
	}
)

const (
	opAdd = "+"
	opMul = "*"
	opNeg = "neg"
	opDiv = "div"
	opMax = "max"
)

func newNum(val *big.Int) num {
	return num{val: val}
}

func newInt(v int64) num {
	return num{val: big.NewInt(v)}
}

func newSym(name string) sym {
	return sym{name: name}
}

func newNary(op string, commutative bool, args ...canonical) nary {
	strs := make([]string, len(args))
	for i, arg := range args {
		strs[i] = arg.String()
	}
	if commutative {
		sort.Slice(args, func(i, j int) bool {
			return args[i].String() < args[j].String()
		})
		sort.Strings(strs)
	}
	return nary{
		op:          op,
		commutative: commutative,
		args:        args,
		str:         fmt.Sprintf("(%s %s)", op, strings.Join(strs, " ")),
	}
}

func (n num) String() string {
	return n.val.String()
}

func (n num) compare(other canonical) bool {
	otherT, ok := other.(num)
	return ok && n.val.Cmp(otherT.val) == 0
}

func (n num) simplify() canonical { return n }

func (n num) integer() *big.Int { return n.val }

func (s sym) String() string { return s.name }

func (s sym) compare(other canonical) bool {
	otherT, ok := other.(sym)
	return ok && s.name == otherT.name
}

func (s sym) simplify() canonical { return s }

func (e nary) String() string { return e.str }

func (e nary) compare(other canonical) bool {
	otherT, ok := other.(nary)
	if !ok || e.op != otherT.op || len(e.args) != len(otherT.args) {
		return false
	}
	for i, arg := range e.args {
		if !arg.compare(otherT.args[i]) {
			return false
		}
	}
	return true
}

func toInt(c canonical) *big.Int {
	eval, ok := c.(evaluable)
	if !ok {
		return nil
	}
	return eval.integer()
}

func (e nary) integer() *big.Int {
	switch e.op {
	case opAdd:
		r := new(big.Int)
		for _, arg := range e.args {
			argI := toInt(arg)
			if argI == nil {
				return nil
			}
			r.Add(r, argI)
		}
		return r
	case opMul:
		r := big.NewInt(1)
		for _, arg := range e.args {
			argI := toInt(arg)
			if argI == nil {
				return nil
			}
			r.Mul(r, argI)
		}
		return r
	case opNeg:
		argI := toInt(e.args[0])
		if argI == nil {
			return nil
		}
		return new(big.Int).Neg(argI)
	case opMax:
		xI, yI := toInt(e.args[0]), toInt(e.args[1])
		if xI == nil || yI == nil {
			return nil
		}
		if xI.Cmp(yI) >= 0 {
			return xI
		}
		return yI
	default:
		return nil
	}
}

func (e nary) simplify() canonical {
	args := make([]canonical, len(e.args))
	for i, arg := range e.args {
		args[i] = arg.simplify()
	}
	switch e.op {
	case opAdd:
		return simplifySum(args)
	case opMul:
		return simplifyProduct(args)
	case opNeg:
		if argI := toInt(args[0]); argI != nil {
			return newNum(new(big.Int).Neg(argI))
		}
	case opMax:
		if i := (nary{op: opMax, args: args}).integer(); i != nil {
			return newNum(i)
		}
		if args[0].compare(args[1]) {
			return args[0]
		}
	}
	return newNary(e.op, e.commutative, args...)
}

// simplifySum flattens nested sums and folds every constant term into one.
func simplifySum(args []canonical) canonical {
	total := new(big.Int)
	var rest []canonical
	for _, arg := range flatten(opAdd, args) {
		if argI := toInt(arg); argI != nil {
			total.Add(total, argI)
			continue
		}
		rest = append(rest, arg)
	}
	if len(rest) == 0 {
		return newNum(total)
	}
	if total.Sign() != 0 {
		rest = append(rest, newNum(total))
	}
	if len(rest) == 1 {
		return rest[0]
	}
	return newNary(opAdd, true, rest...)
}

// simplifyProduct flattens nested products and folds constant factors.
// A zero factor collapses the whole product: shapes and strides are
// integers, so the remaining factors are finite.
func simplifyProduct(args []canonical) canonical {
	total := big.NewInt(1)
	var rest []canonical
	for _, arg := range flatten(opMul, args) {
		if argI := toInt(arg); argI != nil {
			total.Mul(total, argI)
			continue
		}
		rest = append(rest, arg)
	}
	if total.Sign() == 0 || len(rest) == 0 {
		return newNum(total)
	}
	if total.Cmp(big.NewInt(1)) != 0 {
		rest = append(rest, newNum(total))
	}
	if len(rest) == 1 {
		return rest[0]
	}
	return newNary(opMul, true, rest...)
}

func flatten(op string, args []canonical) []canonical {
	var flat []canonical
	for _, arg := range args {
		argT, ok := arg.(nary)
		if ok && argT.op == op {
			flat = append(flat, argT.args...)
			continue
		}
		flat = append(flat, arg)
	}
	return flat
}
