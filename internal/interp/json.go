package interp

import (
	"strconv"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// valueToJSON renders v as a JSON document without going through
// encoding/json: scalars are inlined as raw JSON literals, and
// arrays/records/maps are built up incrementally with sjson.SetRaw, the
// same way diag.Bag.JSON assembles its diagnostic array.
func valueToJSON(v Value) (string, error) {
	switch val := v.(type) {
	case IntValue:
		return strconv.FormatInt(val.Val, 10), nil
	case FloatValue:
		return strconv.FormatFloat(val.Val, 'g', -1, 64), nil
	case BoolValue:
		return strconv.FormatBool(val.Val), nil
	case StringValue:
		return strconv.Quote(val.Val), nil
	case CharValue:
		return strconv.Quote(string(val.Val)), nil
	case VoidValue:
		return "null", nil
	case *ArrayValue:
		doc := "[]"
		for i, elem := range val.Elems {
			raw, err := valueToJSON(elem)
			if err != nil {
				return "", err
			}
			var err2 error
			if doc, err2 = sjson.SetRaw(doc, strconv.Itoa(i), raw); err2 != nil {
				return "", err2
			}
		}
		return doc, nil
	case *RecordValue:
		doc := "{}"
		for _, name := range val.Order {
			raw, err := valueToJSON(val.Fields[name])
			if err != nil {
				return "", err
			}
			var err2 error
			if doc, err2 = sjson.SetRaw(doc, name, raw); err2 != nil {
				return "", err2
			}
		}
		return doc, nil
	case *MapValue:
		doc := "{}"
		for _, e := range naturalOrder(val) {
			key, ok := e.Key.(StringValue)
			k := key.Val
			if !ok {
				k = e.Key.String()
			}
			raw, err := valueToJSON(e.Val)
			if err != nil {
				return "", err
			}
			var err2 error
			if doc, err2 = sjson.SetRaw(doc, k, raw); err2 != nil {
				return "", err2
			}
		}
		return doc, nil
	case *VariantValue:
		if elems, ok := listToSlice(val); ok {
			doc := "[]"
			for i, elem := range elems {
				raw, err := valueToJSON(elem)
				if err != nil {
					return "", err
				}
				var err2 error
				if doc, err2 = sjson.SetRaw(doc, strconv.Itoa(i), raw); err2 != nil {
					return "", err2
				}
			}
			return doc, nil
		}
		return strconv.Quote(val.String()), nil
	default:
		return strconv.Quote(v.String()), nil
	}
}

func builtinToJSON(in *Interp, args []Value) (Value, error) {
	doc, err := valueToJSON(args[0])
	if err != nil {
		return nil, err
	}
	return StringValue{Val: doc}, nil
}

// jsonToValue walks a parsed gjson.Result into the interpreter's own Value
// tree, the inverse of valueToJSON. Untyped JSON numbers land as FloatValue
// since the source text carries no ki type annotation to disambiguate.
func jsonToValue(r gjson.Result) Value {
	switch r.Type {
	case gjson.True, gjson.False:
		return BoolValue{Val: r.Bool()}
	case gjson.Number:
		return FloatValue{Val: r.Float()}
	case gjson.String:
		return StringValue{Val: r.String()}
	case gjson.Null:
		return VoidValue{}
	case gjson.JSON:
		if r.IsArray() {
			var elems []Value
			r.ForEach(func(_, v gjson.Result) bool {
				elems = append(elems, jsonToValue(v))
				return true
			})
			return &ArrayValue{Elems: elems}
		}
		var entries []MapEntry
		r.ForEach(func(k, v gjson.Result) bool {
			entries = append(entries, MapEntry{Key: StringValue{Val: k.String()}, Val: jsonToValue(v)})
			return true
		})
		return &MapValue{Entries: entries}
	default:
		return VoidValue{}
	}
}

func builtinFromJSON(in *Interp, args []Value) (Value, error) {
	s, isStr := args[0].(StringValue)
	if !isStr {
		return nil, rtErr(ErrTypeMismatch, diagZero, "from_json: expects a string")
	}
	if !gjson.Valid(s.Val) {
		return errV(StringValue{Val: "invalid JSON"}), nil
	}
	return ok(jsonToValue(gjson.Parse(s.Val))), nil
}
