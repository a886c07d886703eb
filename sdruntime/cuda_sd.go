//go:build sd && cgo && cuda && !stub

package sdruntime

func init() { cudaBuild = true }
