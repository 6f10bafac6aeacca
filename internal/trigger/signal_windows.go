package trigger

import "errors"

// Windows has no SIGUSR1; the stdin source is the only option there.
func newSignalSource() (Source, error) {
	return nil, errors.New("signal trigger is not supported on windows")
}
