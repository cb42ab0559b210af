package client

import (
	"errors"
	"fmt"

	"github.com/bnema/wlcsd"
)

// ErrMissingGlobal is returned when the compositor does not advertise a required
// interface, or only an older version of it.
var ErrMissingGlobal = errors.New("required global not advertised")

// registry is the part of wlcsd.Registry binding needs.
type registry interface {
	FindGlobal(iface string) (wlcsd.Global, bool)
	Bind(name uint32, iface string, version uint32, proxy wlcsd.Proxy) error
}

type requirement struct {
	iface    string
	min, max uint32
	proxy    wlcsd.Proxy
}

// bindGlobals binds every requirement at the highest version both sides support.
func bindGlobals(reg registry, reqs []requirement) error {
	for _, r := range reqs {
		g, ok := reg.FindGlobal(r.iface)
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingGlobal, r.iface)
		}
		if g.Version < r.min {
			return fmt.Errorf("%w: %s version %d, need %d", ErrMissingGlobal, r.iface, g.Version, r.min)
		}
		if err := reg.Bind(g.Name, r.iface, min(g.Version, r.max), r.proxy); err != nil {
			return fmt.Errorf("bind %s: %w", r.iface, err)
		}
	}
	return nil
}
