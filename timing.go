package hxview

import "time"

// Timed runs fn and returns its result with the elapsed time. It never
// changes what fn returns.
func Timed[T any](fn func() T) (T, time.Duration) {
	start := time.Now()
	res := fn()
	return res, time.Since(start)
}
