// Package mapping loads mapping specifications and inflates them into
// output documents.
//
// A specification is a JSON object with an optional header and one root
// template:
//
//	{
//	  "@header": {
//	    "version": "1.0.0",
//	    "@namespaces": {"caex": "http://www.dke.de/CAEX"},
//	    "@parameters": {"assetId": "global asset ID"},
//	    "@definitions": {"name": {"@xpath": "@Name"}}
//	  },
//	  "aasEnvironmentMapping": {
//	    "submodels": [{
//	      "@foreach": {"@xpath": "//caex:InternalElement"},
//	      "@bind": {"idShort": {"@def": "name"}},
//	      "kind": "Instance"
//	    }]
//	  }
//	}
//
// Every object below the root is a [Template] of the type its property
// declares, or of the type a modelType member names. Besides the target
// type's properties, a template may hold the directives @foreach, @bind,
// @definitions and @variables, each holding expressions of package lang.
//
// [Inflate] expands a template: once per item of @foreach, or once for the
// current item without it. Each expansion evaluates @bind into a new
// instance and copies every remaining property, inflating nested templates
// and flattening the lists they yield.
package mapping
