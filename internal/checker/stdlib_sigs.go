package checker

import "github.com/cwbudde/ki/internal/types"

// buildStdModule constructs the canonical type of the `std` namespace:
// spec §6 fixes the exact list of modules and operations, and §4.4 ties
// effect discipline to whether calling a given std function may perform
// I/O. Listed here once, in the teacher's table-driven style, rather than
// threading a dozen special cases through the expression checker.
func buildStdModule() types.Module {
	t := func(name string) types.Type { tp, _ := types.LookupPrimitive(name); return tp }
	listT := types.List{Elem: types.TypeParam{Name: "T"}}
	listU := types.List{Elem: types.TypeParam{Name: "U"}}
	optT := types.Option{Elem: types.TypeParam{Name: "T"}}
	optU := types.Option{Elem: types.TypeParam{Name: "U"}}
	resT := types.Result{Ok: types.TypeParam{Name: "T"}, Err: types.TypeParam{Name: "E"}}
	resU := types.Result{Ok: types.TypeParam{Name: "U"}, Err: types.TypeParam{Name: "E"}}
	fnTU := types.Func{Params: []types.Type{types.TypeParam{Name: "T"}}, Return: types.TypeParam{Name: "U"}}
	fnTBool := types.Func{Params: []types.Type{types.TypeParam{Name: "T"}}, Return: t("bool")}
	mapType := types.Named{Def: &types.Def{Name: "Map"}, Args: []types.Type{types.TypeParam{Name: "K"}, types.TypeParam{Name: "V"}}}

	pure := func(params []types.Type, ret types.Type) types.Func {
		return types.Func{Params: params, Return: ret, Effect: false}
	}
	effect := func(params []types.Type, ret types.Type) types.Func {
		return types.Func{Params: params, Return: types.IO{Elem: ret}, Effect: true}
	}

	io := types.Module{Path: "std.io", Members: map[string]types.Type{
		"print":      effect([]types.Type{t("string")}, t("void")),
		"println":    effect([]types.Type{t("string")}, t("void")),
		"eprint":     effect([]types.Type{t("string")}, t("void")),
		"eprintln":   effect([]types.Type{t("string")}, t("void")),
		"read_line":  effect(nil, t("string")),
	}}

	list := types.Module{Path: "std.list", Members: map[string]types.Type{
		"empty":     pure(nil, listT),
		"singleton": pure([]types.Type{types.TypeParam{Name: "T"}}, listT),
		"cons":      pure([]types.Type{types.TypeParam{Name: "T"}, listT}, listT),
		"map":       pure([]types.Type{listT, fnTU}, listU),
		"filter":    pure([]types.Type{listT, fnTBool}, listT),
		"fold": pure([]types.Type{listT, types.TypeParam{Name: "U"},
			types.Func{Params: []types.Type{types.TypeParam{Name: "U"}, types.TypeParam{Name: "T"}}, Return: types.TypeParam{Name: "U"}}}, types.TypeParam{Name: "U"}),
		"fold_right": pure([]types.Type{listT, types.TypeParam{Name: "U"},
			types.Func{Params: []types.Type{types.TypeParam{Name: "T"}, types.TypeParam{Name: "U"}}, Return: types.TypeParam{Name: "U"}}}, types.TypeParam{Name: "U"}),
		"head":     pure([]types.Type{listT}, optT),
		"tail":     pure([]types.Type{listT}, types.Option{Elem: listT}),
		"find":     pure([]types.Type{listT, fnTBool}, optT),
		"any":      pure([]types.Type{listT, fnTBool}, t("bool")),
		"all":      pure([]types.Type{listT, fnTBool}, t("bool")),
		"length":   pure([]types.Type{listT}, t("i32")),
		"reverse":  pure([]types.Type{listT}, listT),
		"concat":   pure([]types.Type{listT, listT}, listT),
		"flatten":  pure([]types.Type{types.List{Elem: listT}}, listT),
		"take":     pure([]types.Type{listT, t("i32")}, listT),
		"drop":     pure([]types.Type{listT, t("i32")}, listT),
		"zip":      pure([]types.Type{listT, listU}, types.List{Elem: types.Tuple{Elems: []types.Type{types.TypeParam{Name: "T"}, types.TypeParam{Name: "U"}}}}),
	}}

	option := types.Module{Path: "std.option", Members: map[string]types.Type{
		"map":       pure([]types.Type{optT, fnTU}, optU),
		"and_then":  pure([]types.Type{optT, types.Func{Params: []types.Type{types.TypeParam{Name: "T"}}, Return: optU}}, optU),
		"unwrap_or": pure([]types.Type{optT, types.TypeParam{Name: "T"}}, types.TypeParam{Name: "T"}),
		"is_some":   pure([]types.Type{optT}, t("bool")),
		"is_none":   pure([]types.Type{optT}, t("bool")),
	}}

	result := types.Module{Path: "std.result", Members: map[string]types.Type{
		"map":     pure([]types.Type{resT, fnTU}, resU),
		"map_err": pure([]types.Type{resT, types.Func{Params: []types.Type{types.TypeParam{Name: "E"}}, Return: types.TypeParam{Name: "F"}}}, types.Result{Ok: types.TypeParam{Name: "T"}, Err: types.TypeParam{Name: "F"}}),
		"and_then": pure([]types.Type{resT, types.Func{Params: []types.Type{types.TypeParam{Name: "T"}}, Return: resU}}, resU),
		"unwrap_or": pure([]types.Type{resT, types.TypeParam{Name: "T"}}, types.TypeParam{Name: "T"}),
		"is_ok":   pure([]types.Type{resT}, t("bool")),
		"is_err":  pure([]types.Type{resT}, t("bool")),
	}}

	str := t("string")
	strModule := types.Module{Path: "std.string", Members: map[string]types.Type{
		"length":       pure([]types.Type{str}, t("i32")),
		"split":        pure([]types.Type{str, str}, types.List{Elem: str}),
		"trim":         pure([]types.Type{str}, str),
		"concat":       pure([]types.Type{str, str}, str),
		"contains":     pure([]types.Type{str, str}, t("bool")),
		"starts_with":  pure([]types.Type{str, str}, t("bool")),
		"ends_with":    pure([]types.Type{str, str}, t("bool")),
		"to_upper":     pure([]types.Type{str}, str),
		"to_lower":     pure([]types.Type{str}, str),
		"replace":      pure([]types.Type{str, str, str}, str),
		"substring":    pure([]types.Type{str, t("i32"), t("i32")}, str),
		"char_at":      pure([]types.Type{str, t("i32")}, t("char")),
		"index_of":     pure([]types.Type{str, str}, types.Option{Elem: t("i32")}),
		"chars":        pure([]types.Type{str}, types.List{Elem: t("char")}),
		"parse_int":    pure([]types.Type{str}, types.Result{Ok: t("i32"), Err: str}),
	}}

	fs := types.Module{Path: "std.fs", Members: map[string]types.Type{
		"read_file":  effect([]types.Type{str}, types.Result{Ok: str, Err: str}),
		"write_file": effect([]types.Type{str, str}, types.Result{Ok: t("void"), Err: str}),
		"exists":     effect([]types.Type{str}, t("bool")),
		"remove":     effect([]types.Type{str}, types.Result{Ok: t("void"), Err: str}),
	}}

	builder := types.Named{Def: &types.Def{Name: "StringBuilder", Kind: types.ProductDef}}
	builderMod := types.Module{Path: "std.builder", Members: map[string]types.Type{
		"new":          pure(nil, builder),
		"append":       pure([]types.Type{builder, str}, builder),
		"append_char":  pure([]types.Type{builder, t("char")}, builder),
		"append_int":   pure([]types.Type{builder, t("i32")}, builder),
		"append_float": pure([]types.Type{builder, t("f64")}, builder),
		"build":        pure([]types.Type{builder}, str),
		"clear":        pure([]types.Type{builder}, builder),
		"length":       pure([]types.Type{builder}, t("i32")),
	}}

	mapMod := types.Module{Path: "std.map", Members: map[string]types.Type{
		"new":      pure(nil, mapType),
		"put":      pure([]types.Type{mapType, types.TypeParam{Name: "K"}, types.TypeParam{Name: "V"}}, mapType),
		"get":      pure([]types.Type{mapType, types.TypeParam{Name: "K"}}, types.Option{Elem: types.TypeParam{Name: "V"}}),
		"contains": pure([]types.Type{mapType, types.TypeParam{Name: "K"}}, t("bool")),
		"remove":   pure([]types.Type{mapType, types.TypeParam{Name: "K"}}, mapType),
		"keys":     pure([]types.Type{mapType}, types.List{Elem: types.TypeParam{Name: "K"}}),
		"values":   pure([]types.Type{mapType}, types.List{Elem: types.TypeParam{Name: "V"}}),
		"entries":  pure([]types.Type{mapType}, types.List{Elem: types.Tuple{Elems: []types.Type{types.TypeParam{Name: "K"}, types.TypeParam{Name: "V"}}}}),
		"size":     pure([]types.Type{mapType}, t("i32")),
		"is_empty": pure([]types.Type{mapType}, t("bool")),
	}}

	char := types.Module{Path: "std.char", Members: map[string]types.Type{
		"from_i32": pure([]types.Type{t("i32")}, t("char")),
		"to_i32":   pure([]types.Type{t("char")}, t("i32")),
	}}

	math := types.Module{Path: "std.math", Members: map[string]types.Type{
		"trunc_to_i64": pure([]types.Type{t("f64")}, t("i64")),
	}}

	timeMod := types.Module{Path: "std.time", Members: map[string]types.Type{
		"now":     effect(nil, t("i64")),
		"sleep":   effect([]types.Type{t("i64")}, t("void")),
		"elapsed": effect([]types.Type{t("i64")}, t("i64")),
	}}

	assertMod := types.Module{Path: "std.assert", Members: map[string]types.Type{
		"assert":    effect([]types.Type{t("bool")}, t("void")),
		"assert_eq": effect([]types.Type{types.TypeParam{Name: "T"}, types.TypeParam{Name: "T"}}, t("void")),
	}}

	return types.Module{Path: "std", Members: map[string]types.Type{
		"io": io, "list": list, "option": option, "result": result,
		"string": strModule, "fs": fs, "builder": builderMod, "map": mapMod,
		"char": char, "math": math, "time": timeMod, "assert": assertMod,
	}}
}
