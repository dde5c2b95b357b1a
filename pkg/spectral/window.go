package spectral

import "math"

// Hamming returns symmetric Hamming window coefficients of length n
func Hamming(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1.0
		return w
	}
	for i := range w {
		w[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return w
}

// DetrendAndWindow subtracts the mean from signal and multiplies by the
// window coefficients, in place. Caller owns the slice.
func DetrendAndWindow(signal, window []float64) {
	if len(signal) == 0 {
		return
	}

	var sum float64
	for _, v := range signal {
		sum += v
	}
	mean := sum / float64(len(signal))

	for i := range signal {
		signal[i] = (signal[i] - mean) * window[i]
	}
}
