package censys

import (
	"fmt"
	"net/netip"
)

// ExpandNetblock returns every address contained in a CIDR block, in
// ascending order. Network and broadcast addresses are included: the
// upstream API answers for those too.
func ExpandNetblock(cidr string) ([]string, error) {
	prefix, err := netip.ParsePrefix(cidr)
	if err != nil {
		return nil, fmt.Errorf("invalid netblock %q: %w", cidr, err)
	}
	prefix = prefix.Masked()

	var addrs []string
	for addr := prefix.Addr(); prefix.Contains(addr); addr = addr.Next() {
		addrs = append(addrs, addr.String())
	}
	return addrs, nil
}
