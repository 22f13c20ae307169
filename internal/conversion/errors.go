package conversion

import (
	"errors"
	"fmt"
	"strings"

	"downconv/internal/services"
)

var (
	// ErrLossyFileFound reports a lossy audio file inside the source tree.
	ErrLossyFileFound = errors.New("lossy file found")
	// ErrDestinationExists reports that the output folder is already present.
	// It is advisory: nothing has been written when it is returned.
	ErrDestinationExists = errors.New("destination already exists")
	// ErrInvalidSampleRate reports a rate outside the 44.1 kHz and 48 kHz families.
	ErrInvalidSampleRate = errors.New("invalid sample rate")
	// ErrEncoderFailed reports a nonzero encoder exit.
	ErrEncoderFailed = errors.New("encoder process failed")
)

// LossyFileFoundError names the first lossy file encountered.
type LossyFileFoundError struct {
	Path string
}

func (e *LossyFileFoundError) Error() string {
	return fmt.Sprintf("a lossy file was found in the folder (%s)", e.Path)
}

func (e *LossyFileFoundError) Is(target error) bool {
	return target == ErrLossyFileFound || target == services.ErrValidation
}

// DestinationExistsError names the output folder that blocked the run.
type DestinationExistsError struct {
	Path string
}

func (e *DestinationExistsError) Error() string {
	return fmt.Sprintf("%s already exists, please delete it to re-convert", e.Path)
}

func (e *DestinationExistsError) Is(target error) bool {
	return target == ErrDestinationExists || target == services.ErrConflict
}

// InvalidSampleRateError carries the offending rate and, when known, the file.
type InvalidSampleRateError struct {
	Rate int
	File string
}

func (e *InvalidSampleRateError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("invalid sample rate %d Hz for %s: not a multiple of 44100 or 48000", e.Rate, e.File)
	}
	return fmt.Sprintf("invalid sample rate %d Hz: not a multiple of 44100 or 48000", e.Rate)
}

func (e *InvalidSampleRateError) Is(target error) bool {
	return target == ErrInvalidSampleRate || target == services.ErrValidation
}

// EncoderError describes an encoder process that did not exit cleanly.
type EncoderError struct {
	Source   string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *EncoderError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "error downconverting %s", e.Source)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	} else {
		fmt.Fprintf(&b, ", error %d", e.ExitCode)
	}
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		b.WriteString(": ")
		b.WriteString(stderr)
	}
	return b.String()
}

func (e *EncoderError) Is(target error) bool {
	return target == ErrEncoderFailed || target == services.ErrExternalTool
}

func (e *EncoderError) Unwrap() error { return e.Err }

func filesystemError(op, msg string, err error) error {
	return services.Wrap(services.ErrFilesystem, "conversion", op, msg, err)
}
