package transport

import "time"

// Options configures transports (shared across TCP/WS)
type Options struct {
	OutBuffer    int           // client outgoing channel buffer size
	WriteTimeout time.Duration // per-block write deadline; 0 to disable
	RateLimit    float64       // inbound frames per second per session; 0 to disable
	RateBurst    int           // burst allowed above RateLimit
}
