package tracking

// Category tags an event for visual grouping in the trace viewer. It
// carries no behavior inside the engine beyond its wire string.
type Category uint8

const (
	// CategoryTU covers the whole translation unit.
	CategoryTU Category = iota
	// CategoryPreprocess marks a file inclusion span.
	CategoryPreprocess
	// CategoryFunction marks one parsed function.
	CategoryFunction
	// CategoryStruct marks a struct/class/union scope.
	CategoryStruct
	// CategoryNamespace marks a namespace scope.
	CategoryNamespace
	// CategoryGimplePass marks a GIMPLE optimization pass.
	CategoryGimplePass
	// CategoryRTLPass marks an RTL optimization pass.
	CategoryRTLPass
	// CategorySimpleIPAPass marks a simple interprocedural pass.
	CategorySimpleIPAPass
	// CategoryIPAPass marks a full interprocedural pass.
	CategoryIPAPass
	// CategoryUnknown is the fallback for unrecognized host data.
	CategoryUnknown
)

// String returns the wire string used in the trace artifact's "cat"
// field. The values are fixed for viewer compatibility.
func (c Category) String() string {
	switch c {
	case CategoryTU:
		return "TU"
	case CategoryPreprocess:
		return "PREPROCESS"
	case CategoryFunction:
		return "FUNCTION"
	case CategoryStruct:
		return "STRUCT"
	case CategoryNamespace:
		return "NAMESPACE"
	case CategoryGimplePass:
		return "GIMPLE_PASS"
	case CategoryRTLPass:
		return "RTL_PASS"
	case CategorySimpleIPAPass:
		return "SIMPLE_IPA_PASS"
	case CategoryIPAPass:
		return "IPA_PASS"
	default:
		return "UNKNOWN"
	}
}
