//go:build !unix

package display

// watchResize is a no-op where SIGWINCH does not exist; geometry is still
// re-queried on every frame.
func watchResize(fn func()) (stop func()) {
	return func() {}
}
