package contracts

import (
	"errors"
	"fmt"
	"math/big"
	"reflect"
	"strconv"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ArgumentError reports an argument that cannot be packed for a method.
// Index is -1 when the argument count itself is wrong.
type ArgumentError struct {
	Method string
	Index  int
	Name   string
	Err    error
}

func (e *ArgumentError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %v", e.Method, e.Err)
	}
	return fmt.Sprintf("%s: argument %d (%s): %v", e.Method, e.Index, e.Name, e.Err)
}

func (e *ArgumentError) Unwrap() error { return e.Err }

var (
	ErrArgCount    = errors.New("wrong number of arguments")
	ErrUnsupported = errors.New("unsupported argument type")
	ErrOutOfRange  = errors.New("value out of range")
	ErrNilArgument = errors.New("nil argument")
)

var bigIntType = reflect.TypeOf(&big.Int{})

// CoerceArgs converts command-line or JSON string arguments into the Go values the ABI
// packer expects for the method's inputs.
func CoerceArgs(method abi.Method, raw []string) ([]interface{}, error) {
	if len(raw) != len(method.Inputs) {
		return nil, &ArgumentError{
			Method: method.Name,
			Index:  -1,
			Err:    fmt.Errorf("%w: want %d, got %d", ErrArgCount, len(method.Inputs), len(raw)),
		}
	}

	args := make([]interface{}, len(raw))
	for i, arg := range raw {
		input := method.Inputs[i]
		typedArg, err := coerce(input.Type, arg)
		if err != nil {
			return nil, &ArgumentError{Method: method.Name, Index: i, Name: input.Name, Err: err}
		}
		args[i] = typedArg
	}
	return args, nil
}

func coerce(t abi.Type, arg string) (interface{}, error) {
	switch t.T {
	case abi.IntTy, abi.UintTy:
		bigIntValue, ok := new(big.Int).SetString(arg, 0)
		if !ok {
			return nil, fmt.Errorf("cannot convert %q to integer", arg)
		}
		return fitInteger(t, bigIntValue)
	case abi.BoolTy:
		return strconv.ParseBool(arg)
	case abi.StringTy:
		return arg, nil
	case abi.AddressTy:
		if !common.IsHexAddress(arg) {
			return nil, fmt.Errorf("invalid address %q", arg)
		}
		return common.HexToAddress(arg), nil
	case abi.BytesTy:
		return hexutil.Decode(arg)
	case abi.FixedBytesTy:
		b, err := hexutil.Decode(arg)
		if err != nil {
			return nil, err
		}
		if len(b) != t.Size {
			return nil, fmt.Errorf("want %d bytes, got %d", t.Size, len(b))
		}
		arr := reflect.New(t.GetType()).Elem()
		reflect.Copy(arr, reflect.ValueOf(b))
		return arr.Interface(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, t.String())
	}
}

// NormalizeArgs adapts integer arguments to the exact Go type the packer needs for each
// input (uint8 for uint8, *big.Int for uint256, ...). Other values pass through untouched.
func NormalizeArgs(method abi.Method, args []interface{}) ([]interface{}, error) {
	if len(args) != len(method.Inputs) {
		return nil, &ArgumentError{
			Method: method.Name,
			Index:  -1,
			Err:    fmt.Errorf("%w: want %d, got %d", ErrArgCount, len(method.Inputs), len(args)),
		}
	}

	out := make([]interface{}, len(args))
	for i, arg := range args {
		input := method.Inputs[i]
		if isNil(arg) {
			return nil, &ArgumentError{Method: method.Name, Index: i, Name: input.Name, Err: ErrNilArgument}
		}
		if input.Type.T != abi.IntTy && input.Type.T != abi.UintTy {
			out[i] = arg
			continue
		}
		if reflect.TypeOf(arg) == input.Type.GetType() {
			out[i] = arg
			continue
		}
		v, ok := toBigInt(arg)
		if !ok {
			out[i] = arg
			continue
		}
		fitted, err := fitInteger(input.Type, v)
		if err != nil {
			return nil, &ArgumentError{Method: method.Name, Index: i, Name: input.Name, Err: err}
		}
		out[i] = fitted
	}
	return out, nil
}

// isNil reports untyped nil and nil pointers or maps; the packer panics on them. A nil
// []byte is still a valid empty bytes value.
func isNil(v interface{}) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Ptr, reflect.Map:
		return rv.IsNil()
	}
	return false
}

func fitInteger(t abi.Type, v *big.Int) (interface{}, error) {
	target := t.GetType()
	if target == bigIntType {
		if t.T == abi.UintTy && v.Sign() < 0 {
			return nil, fmt.Errorf("%w: %s is negative", ErrOutOfRange, v)
		}
		return v, nil
	}

	if t.T == abi.UintTy {
		if v.Sign() < 0 || v.BitLen() > t.Size {
			return nil, fmt.Errorf("%w: %s does not fit %s", ErrOutOfRange, v, t.String())
		}
		return reflect.ValueOf(v.Uint64()).Convert(target).Interface(), nil
	}

	limit := new(big.Int).Lsh(big.NewInt(1), uint(t.Size-1))
	minimum := new(big.Int).Neg(limit)
	if v.Cmp(minimum) < 0 || v.Cmp(limit) >= 0 {
		return nil, fmt.Errorf("%w: %s does not fit %s", ErrOutOfRange, v, t.String())
	}
	return reflect.ValueOf(v.Int64()).Convert(target).Interface(), nil
}

func toBigInt(v interface{}) (*big.Int, bool) {
	switch n := v.(type) {
	case *big.Int:
		return n, n != nil
	case int:
		return big.NewInt(int64(n)), true
	case int8:
		return big.NewInt(int64(n)), true
	case int16:
		return big.NewInt(int64(n)), true
	case int32:
		return big.NewInt(int64(n)), true
	case int64:
		return big.NewInt(n), true
	case uint:
		return new(big.Int).SetUint64(uint64(n)), true
	case uint8:
		return new(big.Int).SetUint64(uint64(n)), true
	case uint16:
		return new(big.Int).SetUint64(uint64(n)), true
	case uint32:
		return new(big.Int).SetUint64(uint64(n)), true
	case uint64:
		return new(big.Int).SetUint64(n), true
	default:
		return nil, false
	}
}
