// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package stylemap

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/wp2tt/pkg/types"
)

// WriteSkeleton writes a style map holding every explicit entry of m
// followed, per realm, by commented pass-through lines for the source
// styles in used that m does not map yet. m may be nil.
func WriteSkeleton(w io.Writer, m *StyleMap, used map[types.Realm][]string) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "# wp2tt style map: source style = Group/Sub/Destination | attribute = value")
	for _, realm := range types.Realms {
		fmt.Fprintf(bw, "\n[%s]\n", realm)
		if m != nil {
			for _, e := range m.order {
				if e.Realm == realm {
					fmt.Fprintln(bw, formatEntry(e))
				}
			}
		}
		for _, source := range used[realm] {
			if source == "" && realm == types.RealmCharacter {
				continue
			}
			if m != nil && m.Mapped(realm, source) {
				continue
			}
			key := source
			dest := source
			if source == "" {
				key = UnstyledKey
				dest = NormalParagraphStyle
			}
			fmt.Fprintf(bw, "# %s = %s\n", key, dest)
		}
	}
	return bw.Flush()
}

func formatEntry(e Entry) string {
	key := e.Source
	if key == "" {
		key = UnstyledKey
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s = %s", key, e.Dest.Path())
	if e.Dest.Next != nil {
		fmt.Fprintf(&b, " | next = %s", e.Dest.Next.Path())
	}
	if e.Dest.BasedOn != nil {
		fmt.Fprintf(&b, " | based-on = %s", e.Dest.BasedOn.Path())
	}
	if e.Dest.Variable != "" {
		fmt.Fprintf(&b, " | variable = %s", e.Dest.Variable)
	}
	if e.Dest.Tags != "" {
		fmt.Fprintf(&b, " | tags = %s", e.Dest.Tags)
	}
	return b.String()
}
