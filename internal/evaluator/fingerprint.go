package evaluator

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Fingerprint computes the hashable cache/memo key for a call to id with
// kwargs (§4.5). Scalar kwarg values (string, bool, any numeric kind, or
// nil) contribute their value; maps, slices, pointers, funcs and chans
// contribute their identity — the underlying data pointer, per spec.md's
// rationale that rich objects' structural equality is expensive or
// undefined. Values of any other kind (structs, arrays) get a key unique to
// that call, so they never match an earlier call. Kwargs are sorted by key for a fingerprint independent of call
// argument order, since the trailing-object-literal convention (§4.0 of
// SPEC_FULL.md) has no positional/keyword distinction once unpacked to Go.
func Fingerprint(id string, kwargs map[string]any) string {
	keys := make([]string, 0, len(kwargs))
	for k := range kwargs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(id)
	for _, k := range keys {
		b.WriteByte('|')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(fingerprintValue(kwargs[k]))
	}
	return b.String()
}

func fingerprintValue(v any) string {
	if v == nil {
		return "nil"
	}
	switch v.(type) {
	case bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return fmt.Sprintf("v:%T:%v", v, v)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Ptr, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return fmt.Sprintf("id:%s:%d", rv.Kind(), rv.Pointer())
	default:
		return fmt.Sprintf("id:%p", &v)
	}
}
