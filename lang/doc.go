// Package lang implements the expression language of mapping
// specifications.
//
// # Expressions
//
// An expression is written in JSON. Scalars are constants and arrays are
// lists of expressions. An object holds exactly one operator key, prefixed
// with '@', whose value supplies the arguments: an array supplies one
// argument per element and any other value a single argument.
//
//	{"@plus": [1, 2.5]}                      // builtin call
//	{"@pi": []}                              // named constant
//	{"@var": "greeting"}                     // variable reference
//	{"@def": "assetId"}                      // definition reference
//	{"@xpath": "caex:InternalElement"}       // node-set query
//	{"@uaBrowsePath": ["Root", "Objects"]}   // OPC UA NodeId lookup
//	{"@uaChildren": ["Root", "Objects"]}     // OPC UA children lookup
//	{"@caexAttributeName": "Manufacturer"}   // CAEX attribute lookup
//	{"@expr": "plus(weight, 1) * 2"}         // expr-lang program
//
// A "default" key following the operator supplies a fallback used when the
// operator yields null or an empty list:
//
//	{"@xpath": "@Name", "default": "unnamed"}
//
// # Evaluation
//
// Expressions are evaluated against a [Context]: the current item, the
// definitions and variables in scope, and the source document [Provider].
// Definitions are evaluated at each reference against the referencing
// context, not the one they were declared in. Variables are evaluated once,
// when the context declaring them is built, and hold strings.
//
// Values are the dynamic values of package value. Arithmetic builtins
// return NaN instead of failing when an operand is not a number.
package lang
