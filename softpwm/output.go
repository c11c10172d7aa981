package softpwm

// Output drives the controlled digital line. Set may block briefly
// (bus-latency scale) but must not suspend indefinitely: it is called
// while the channel lock is held so writes stay ordered against a
// concurrent Disable.
type Output interface {
	Set(level bool)
}

// OutputFunc adapts a function to Output.
type OutputFunc func(level bool)

func (f OutputFunc) Set(level bool) { f(level) }
