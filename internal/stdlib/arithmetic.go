// Copyright 2018 The CUE Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package stdlib

import (
	"strings"

	"github.com/cockroachdb/apd/v3"

	"github.com/chrsbats/slip/internal/value"
	slerr "github.com/chrsbats/slip/slip/errors"
	"github.com/chrsbats/slip/slip/token"
)

func registerArithmetic(g *value.Scope) {
	native(g, "add", 2, binaryOp(func(ctx *apd.Context, z, x, y *apd.Decimal) (apd.Condition, error) { return ctx.Add(z, x, y) }))
	native(g, "sub", 2, binaryOp(func(ctx *apd.Context, z, x, y *apd.Decimal) (apd.Condition, error) { return ctx.Sub(z, x, y) }))
	native(g, "mul", 2, binaryOp(func(ctx *apd.Context, z, x, y *apd.Decimal) (apd.Condition, error) { return ctx.Mul(z, x, y) }))
	native(g, "div", 2, divOp)
	native(g, "mod", 2, binaryOp(func(ctx *apd.Context, z, x, y *apd.Decimal) (apd.Condition, error) { return ctx.Rem(z, x, y) }))
	native(g, "pow", 2, binaryOp(func(ctx *apd.Context, z, x, y *apd.Decimal) (apd.Condition, error) { return ctx.Pow(z, x, y) }))

	native(g, "eq", 2, cmpOp(func(c int) bool { return c == 0 }))
	native(g, "neq", 2, cmpOp(func(c int) bool { return c != 0 }))
	native(g, "gt", 2, cmpOp(func(c int) bool { return c > 0 }))
	native(g, "gte", 2, cmpOp(func(c int) bool { return c >= 0 }))
	native(g, "lt", 2, cmpOp(func(c int) bool { return c < 0 }))
	native(g, "lte", 2, cmpOp(func(c int) bool { return c <= 0 }))
	native(g, "not", 1, func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, slerr.TypeErrorf(token.NoPos, "not expects 1 argument, got %d", len(args))
		}
		return value.Boolean(!value.Truthy(args[0])), nil
	})

	for name, sym := range map[string]string{
		"add": "+", "sub": "-", "mul": "*", "div": "/",
		"eq": "=", "neq": "!=", "gt": ">", "gte": ">=", "lt": "<", "lte": "<=",
	} {
		alias(g, name, sym)
	}
	alias(g, "not", "logical-not")
}

func asDecimal(v value.Value) (*apd.Decimal, bool) {
	switch x := v.(type) {
	case value.Int:
		d := x.V
		return &d, true
	case value.Float:
		d := x.V
		return &d, true
	}
	return nil, false
}

func isFloatKind(v value.Value) bool {
	_, ok := v.(value.Float)
	return ok
}

func binaryOp(op func(ctx *apd.Context, z, x, y *apd.Decimal) (apd.Condition, error)) func([]value.Value, map[string]value.Value) (value.Value, error) {
	return func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		if len(args) != 2 {
			return nil, slerr.TypeErrorf(token.NoPos, "expected 2 arguments, got %d", len(args))
		}
		x, xok := asDecimal(args[0])
		y, yok := asDecimal(args[1])
		if !xok || !yok {
			return nil, slerr.TypeErrorf(token.NoPos, "arithmetic requires numbers, got %s and %s", args[0].Kind(), args[1].Kind())
		}
		var z apd.Decimal
		if _, err := op(value.APDContext(), &z, x, y); err != nil {
			return nil, slerr.RuntimeErrorf(token.NoPos, "arithmetic error: %v", err)
		}
		if isFloatKind(args[0]) || isFloatKind(args[1]) {
			return value.Float{V: z}, nil
		}
		return value.Int{V: z}, nil
	}
}

func divOp(args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if len(args) != 2 {
		return nil, slerr.TypeErrorf(token.NoPos, "div expects 2 arguments, got %d", len(args))
	}
	x, xok := asDecimal(args[0])
	y, yok := asDecimal(args[1])
	if !xok || !yok {
		return nil, slerr.TypeErrorf(token.NoPos, "div requires numbers, got %s and %s", args[0].Kind(), args[1].Kind())
	}
	if y.IsZero() {
		return nil, slerr.RuntimeErrorf(token.NoPos, "division by zero")
	}
	var z apd.Decimal
	if _, err := value.APDContext().Quo(&z, x, y); err != nil {
		return nil, slerr.RuntimeErrorf(token.NoPos, "division error: %v", err)
	}
	if isFloatKind(args[0]) || isFloatKind(args[1]) {
		return value.Float{V: z}, nil
	}
	return value.Int{V: z}, nil
}

func cmpOp(pred func(int) bool) func([]value.Value, map[string]value.Value) (value.Value, error) {
	return func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		if len(args) != 2 {
			return nil, slerr.TypeErrorf(token.NoPos, "expected 2 arguments, got %d", len(args))
		}
		a, b := args[0], args[1]
		if x, xok := asDecimal(a); xok {
			if y, yok := asDecimal(b); yok {
				return value.Boolean(pred(x.Cmp(y))), nil
			}
		}
		if sa, ok := a.(value.String); ok {
			if sb, ok := b.(value.String); ok {
				return value.Boolean(pred(strings.Compare(string(sa), string(sb)))), nil
			}
		}
		// non-numeric, non-string operands only support eq/neq, via
		// canonical-form equality (spec §3: Equal).
		if value.Equal(a, b) {
			return value.Boolean(pred(0)), nil
		}
		if pred(-1) == pred(1) {
			// symmetric under sign flip: this is eq or neq, and a != b.
			return value.Boolean(pred(1)), nil
		}
		return nil, slerr.TypeErrorf(token.NoPos, "cannot order %s and %s", a.Kind(), b.Kind())
	}
}
