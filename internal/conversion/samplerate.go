package conversion

// Canonical target rates, one per clock family.
const (
	RateCD  = 44100
	RateDAT = 48000
)

// ResolveSampleRate maps a source rate to the base rate of its clock family.
// 44.1 kHz wins when a rate is a multiple of both.
func ResolveSampleRate(rate int) (int, error) {
	switch {
	case rate <= 0:
		return 0, &InvalidSampleRateError{Rate: rate}
	case rate%RateCD == 0:
		return RateCD, nil
	case rate%RateDAT == 0:
		return RateDAT, nil
	default:
		return 0, &InvalidSampleRateError{Rate: rate}
	}
}
