package bookings

import (
	"github.com/vaxxnz/vaxx-web/internal/availability"
	"github.com/vaxxnz/vaxx-web/internal/slotcache"
	"github.com/vaxxnz/vaxx-web/internal/slots"
)

// HostFetchers sends lookups to the proxy matching the request host and
// reads through the slot cache when one is configured.
type HostFetchers struct {
	Client  *availability.Client
	Proxies availability.Proxies
	Cache   *slotcache.Cache
}

func (h HostFetchers) FetcherFor(host string) slots.Fetcher {
	base := h.Proxies.BaseFor(host)
	return slotcache.Fetcher{
		Cache: h.Cache,
		Scope: base,
		Next:  availability.ProxyFetcher{Client: h.Client, Base: base},
	}
}
