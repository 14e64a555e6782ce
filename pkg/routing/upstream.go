package routing

import "fmt"

// Upstream is a backend HTTP server identified by host and port.
type Upstream struct {
	Host string
	Port int
}

// Identity returns the "host:port" string used both as the semaphore
// key in the connection-limit manager and as the metric label value.
func (u Upstream) Identity() string {
	return fmt.Sprintf("%s:%d", u.Host, u.Port)
}

func (u Upstream) String() string { return u.Identity() }
