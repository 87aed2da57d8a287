package cookiejar

import "reflect"

// MapValues returns the values of the map m.
// The values will be in an indeterminate order.
func MapValues[M ~map[K]V, K comparable, V any](m M) []V {
	r := make([]V, 0, len(m))
	for _, v := range m {
		r = append(r, v)
	}
	return r
}

// Keys returns the storage keys of the cookies, nil cookies are skipped.
func Keys(cookies []*Cookie) []string {
	r := make([]string, 0, len(cookies))
	for _, c := range cookies {
		if c != nil {
			r = append(r, c.Key().String())
		}
	}
	return r
}

// isNil reports whether v is nil or holds a nil pointer.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Interface, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
