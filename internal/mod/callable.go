package mod

import "reflect"

// Callable is a function reference together with the object it is bound to.
// Target is nil for plain functions, closures and method expressions.
type Callable struct {
	Func   any
	Target any
}

// Method binds the method called name on target. Func is nil when target
// has no such method.
func Method(target any, name string) Callable {
	c := Callable{Target: target}
	if target == nil {
		return c
	}
	if m := reflect.ValueOf(target).MethodByName(name); m.IsValid() {
		c.Func = m.Interface()
	}
	return c
}

// Bound reports whether c is a non-nil function with a bound target.
func (c Callable) Bound() bool {
	if c.Target == nil || c.Func == nil {
		return false
	}
	v := reflect.ValueOf(c.Func)
	return v.Kind() == reflect.Func && !v.IsNil()
}
