package units

// Number is the set of scalar types a Freq can be built over: integral
// sampling divisors and floating-point physical frequencies.
type Number interface {
	~int | ~int32 | ~int64 | ~float32 | ~float64
}

// Freq is a numeric frequency tagged by its unit at construction time.
type Freq[T Number] struct {
	hz T
}

// Hz constructs a Freq directly in Hertz.
func Hz[T Number](v T) Freq[T] {
	return Freq[T]{hz: v}
}

// KHz constructs a Freq from a value in kilohertz.
func KHz[T Number](v T) Freq[T] {
	return Freq[T]{hz: v * 1000}
}

// Hertz returns the frequency in Hertz.
func (f Freq[T]) Hertz() T {
	return f.hz
}
