package analysis

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Spectrum is the one-sided power spectrum of a uniformly sampled series.
type Spectrum struct {
	Frequencies []float64 // cycles per unit time
	Power       []float64
}

// PowerSpectrum transforms series, sampled every dt, after removing its mean.
// Any length works; the real FFT does not require a power of two.
func PowerSpectrum(series []float64, dt float64) Spectrum {
	n := len(series)
	if n < 2 || dt <= 0 {
		return Spectrum{}
	}

	centered := make([]float64, n)
	copy(centered, series)
	floats.AddConst(-stat.Mean(series, nil), centered)

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, centered)

	s := Spectrum{
		Frequencies: make([]float64, len(coeffs)),
		Power:       make([]float64, len(coeffs)),
	}
	for i, c := range coeffs {
		a := cmplx.Abs(c)
		s.Frequencies[i] = fft.Freq(i) / dt
		s.Power[i] = a * a / float64(n)
	}
	return s
}

// DominantFrequency returns the non-zero frequency carrying the most power,
// or 0 for a series too short or too flat to have one.
func DominantFrequency(series []float64, dt float64) float64 {
	s := PowerSpectrum(series, dt)
	if len(s.Power) < 2 {
		return 0
	}
	i := floats.MaxIdx(s.Power[1:]) + 1
	if s.Power[i] == 0 {
		return 0
	}
	return s.Frequencies[i]
}
