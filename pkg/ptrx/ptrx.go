// Package ptrx builds pointers to literals for optional JSON fields.
package ptrx

func Int(v int) *int { return &v }

func String(v string) *string { return &v }

// Deref returns *p, or fallback when p is nil.
func Deref[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}
