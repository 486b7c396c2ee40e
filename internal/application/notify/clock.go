package notify

import "time"

// Clock abstrae el reloj del despachador para poder testear el throttle
// de forma determinista con un reloj controlable.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// SystemClock implementación de Clock sobre el reloj real.
type SystemClock struct{}

func (SystemClock) Now() time.Time        { return time.Now() }
func (SystemClock) Sleep(d time.Duration) { time.Sleep(d) }
