// Package lang lexes, parses and evaluates CMF schema text.
//
// A schema is a sequence of ';'-terminated statements describing how the
// columns of a tabular dataset map to named variables:
//
//	# Johns Hopkins daily time series
//	aspects confirmed, deaths, recovered;
//	province = "Province/State";
//	country = "Country/Region" except { "Mainland China" = "China" };
//	region = key fit country, province;
//	date = * as { "%u/%u/%u", month(1), day(2), year(0) };
//	key date;
//
// # Grammar
//
// Alternatives are tried in order at each position; the first match wins.
//
//	Statement → Sum | Field | Aspects | Fit | Key | Helper | Assign | Literal | Variable
//	Sum       → 'sum' '(' Value ')'
//	Field     → Value 'as' ( '{' String ',' Symbols '}' | String )
//	Aspects   → 'aspects' Symbols [ '=' Symbol ]
//	Fit       → 'fit' Symbol ',' Symbol { ',' Symbol }
//	Key       → 'key' Statement
//	Helper    → 'helper' Statement
//	Assign    → Symbol '=' Statement
//	Literal   → ( Number | String | '*' ) [ Except ] | Symbol Except
//	Except    → 'except' '{' String '=' String { ',' String '=' String } '}'
//	Symbols   → Symbol [ '(' Number ')' ] { ',' Symbol [ '(' Number ')' ] }
//	Value     → Literal | Variable
//
// The parser memoizes matches by token position. Cached trees are cloned on
// store and on hit, so no two callers ever share a [Statement].
//
// # Evaluation
//
// [Program.Eval] applies each statement to a [Callbacks] implementation,
// which owns every variable created along the way and hands back opaque
// [Ref] handles. Package schema provides the implementation that builds a
// compiled context.
package lang
