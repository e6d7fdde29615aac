package values

import (
	"errors"
	"math"
	"math/big"
)

// Sentinel errors surfaced by arithmetic/comparison ops; the VM wraps these
// into the runtime error kinds of §7 (division-by-zero has no single named
// kind in §7's list, so it is reported as a *typeError* on the enclosing
// opcode).
var (
	ErrDivisionByZero  = errors.New("division by zero")
	ErrInvalidOperands = errors.New("invalid operand types")
)

func bothNumeric(a, b *Value) bool { return a.IsNumeric() && b.IsNumeric() }

// promote widens two numeric values to a common representation: bigint if
// either is bigint, else float if either is float, else int.
func promote(a, b *Value) (aBig, bBig *big.Int, aF, bF float64, aI, bI int64, kind byte) {
	if a.Type == TypeBigInt || b.Type == TypeBigInt {
		return toBigInt(a), toBigInt(b), 0, 0, 0, 0, 'b'
	}
	if a.Type == TypeFloat || b.Type == TypeFloat {
		return nil, nil, toFloat(a), toFloat(b), 0, 0, 'f'
	}
	return nil, nil, 0, 0, a.Int(), b.Int(), 'i'
}

func toBigInt(v *Value) *big.Int {
	switch v.Type {
	case TypeBigInt:
		return v.BigInt()
	case TypeInt:
		return big.NewInt(v.Int())
	case TypeFloat:
		bi, _ := big.NewFloat(v.Float()).Int(nil)
		return bi
	default:
		return big.NewInt(0)
	}
}

func toFloat(v *Value) float64 {
	switch v.Type {
	case TypeFloat:
		return v.Float()
	case TypeInt:
		return float64(v.Int())
	case TypeBigInt:
		f, _ := new(big.Float).SetInt(v.BigInt()).Float64()
		return f
	default:
		return 0
	}
}

// Add implements `add`, including string concatenation when either operand
// is a string (§4.H groups this opcode with arithmetic, not a separate
// concat op, unlike the teacher's PHP VM).
func Add(a, b *Value) (*Value, error) {
	if a.Type == TypeString || b.Type == TypeString {
		return NewString(a.String() + b.String()), nil
	}
	if a.IsList() && b.IsList() {
		out := append(append([]*Value{}, *a.ListItems()...), *b.ListItems()...)
		return NewList(out), nil
	}
	if !bothNumeric(a, b) {
		return nil, ErrInvalidOperands
	}
	aBig, bBig, aF, bF, aI, bI, kind := promote(a, b)
	switch kind {
	case 'b':
		return NewBigInt(new(big.Int).Add(aBig, bBig)), nil
	case 'f':
		return NewFloat(aF + bF), nil
	default:
		return NewInt(aI + bI), nil
	}
}

func Subtract(a, b *Value) (*Value, error) {
	if !bothNumeric(a, b) {
		return nil, ErrInvalidOperands
	}
	aBig, bBig, aF, bF, aI, bI, kind := promote(a, b)
	switch kind {
	case 'b':
		return NewBigInt(new(big.Int).Sub(aBig, bBig)), nil
	case 'f':
		return NewFloat(aF - bF), nil
	default:
		return NewInt(aI - bI), nil
	}
}

func Multiply(a, b *Value) (*Value, error) {
	if !bothNumeric(a, b) {
		return nil, ErrInvalidOperands
	}
	aBig, bBig, aF, bF, aI, bI, kind := promote(a, b)
	switch kind {
	case 'b':
		return NewBigInt(new(big.Int).Mul(aBig, bBig)), nil
	case 'f':
		return NewFloat(aF * bF), nil
	default:
		return NewInt(aI * bI), nil
	}
}

// Devide implements `devide`: always produces a float, matching a
// dynamically-typed scripting language's usual `/` semantics; integer
// division is `truncatingDevide`.
func Devide(a, b *Value) (*Value, error) {
	if !bothNumeric(a, b) {
		return nil, ErrInvalidOperands
	}
	bf := toFloat(b)
	if bf == 0 {
		return nil, ErrDivisionByZero
	}
	return NewFloat(toFloat(a) / bf), nil
}

func TruncatingDevide(a, b *Value) (*Value, error) {
	if !bothNumeric(a, b) {
		return nil, ErrInvalidOperands
	}
	aBig, bBig, _, _, aI, bI, kind := promote(a, b)
	switch kind {
	case 'b':
		if bBig.Sign() == 0 {
			return nil, ErrDivisionByZero
		}
		return NewBigInt(new(big.Int).Quo(aBig, bBig)), nil
	case 'f':
		bf := toFloat(b)
		if bf == 0 {
			return nil, ErrDivisionByZero
		}
		return NewInt(int64(toFloat(a) / bf)), nil
	default:
		if bI == 0 {
			return nil, ErrDivisionByZero
		}
		return NewInt(aI / bI), nil
	}
}

func Modulo(a, b *Value) (*Value, error) {
	if !bothNumeric(a, b) {
		return nil, ErrInvalidOperands
	}
	aBig, bBig, aF, bF, aI, bI, kind := promote(a, b)
	switch kind {
	case 'b':
		if bBig.Sign() == 0 {
			return nil, ErrDivisionByZero
		}
		return NewBigInt(new(big.Int).Mod(aBig, bBig)), nil
	case 'f':
		if bF == 0 {
			return nil, ErrDivisionByZero
		}
		return NewFloat(math.Mod(aF, bF)), nil
	default:
		if bI == 0 {
			return nil, ErrDivisionByZero
		}
		return NewInt(aI % bI), nil
	}
}

func Negative(a *Value) (*Value, error) {
	switch a.Type {
	case TypeInt:
		return NewInt(-a.Int()), nil
	case TypeFloat:
		return NewFloat(-a.Float()), nil
	case TypeBigInt:
		return NewBigInt(new(big.Int).Neg(a.BigInt())), nil
	default:
		return nil, ErrInvalidOperands
	}
}

// Compare implements the ordering used by lesser/greater/.../spaceship.
// NullCoercion, when true, treats a null operand as numeric 0 (§9's
// "implicit null→0 in arithmetic and comparisons" policy).
func Compare(a, b *Value, nullCoercion bool) (int, error) {
	if nullCoercion {
		if a.IsNull() {
			a = NewInt(0)
		}
		if b.IsNull() {
			b = NewInt(0)
		}
	}
	if a.Type == TypeString && b.Type == TypeString {
		switch {
		case a.Str() < b.Str():
			return -1, nil
		case a.Str() > b.Str():
			return 1, nil
		default:
			return 0, nil
		}
	}
	if !bothNumeric(a, b) {
		return 0, ErrInvalidOperands
	}
	aBig, bBig, aF, bF, aI, bI, kind := promote(a, b)
	switch kind {
	case 'b':
		return aBig.Cmp(bBig), nil
	case 'f':
		switch {
		case aF < bF:
			return -1, nil
		case aF > bF:
			return 1, nil
		default:
			return 0, nil
		}
	default:
		switch {
		case aI < bI:
			return -1, nil
		case aI > bI:
			return 1, nil
		default:
			return 0, nil
		}
	}
}

// Equal implements `equal` / `notEqual`: value equality across numeric
// kinds, structural equality for lists/maps, reference equality otherwise.
func Equal(a, b *Value) bool {
	if a.IsNull() || b.IsNull() {
		return a.IsNull() && b.IsNull()
	}
	if bothNumeric(a, b) {
		cmp, err := Compare(a, b, false)
		return err == nil && cmp == 0
	}
	if a.Type != b.Type {
		return false
	}
	switch a.Type {
	case TypeBool:
		return a.Bool() == b.Bool()
	case TypeString:
		return a.Str() == b.Str()
	case TypeList:
		ai, bi := *a.ListItems(), *b.ListItems()
		if len(ai) != len(bi) {
			return false
		}
		for i := range ai {
			if !Equal(ai[i], bi[i]) {
				return false
			}
		}
		return true
	case TypeMap:
		am, bm := a.MapData(), b.MapData()
		if len(am) != len(bm) {
			return false
		}
		for k, v := range am {
			bv, ok := bm[k]
			if !ok || !Equal(v, bv) {
				return false
			}
		}
		return true
	default:
		return a.Data == b.Data
	}
}
