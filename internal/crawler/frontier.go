package crawler

import (
	"fmt"
	"strings"
)

// Order is the frontier pop order.
type Order string

const (
	// OrderLIFO pops the most recently pushed entry first. The last link
	// found on a page is the next one fetched, which leans depth-first even
	// though depth is tracked per entry.
	OrderLIFO Order = "lifo"

	// OrderFIFO pops the oldest entry first, a true breadth-first traversal.
	OrderFIFO Order = "fifo"
)

// ParseOrder converts a configuration value to an Order.
func ParseOrder(s string) (Order, error) {
	switch Order(strings.ToLower(strings.TrimSpace(s))) {
	case OrderLIFO, "":
		return OrderLIFO, nil
	case OrderFIFO:
		return OrderFIFO, nil
	default:
		return "", fmt.Errorf("unknown frontier order %q (want lifo or fifo)", s)
	}
}

// Entry is a discovered URL waiting to be processed.
type Entry struct {
	URL   string
	Depth int
}

// frontier holds pending entries. It is not safe for concurrent use; the
// run guards it.
type frontier struct {
	order   Order
	entries []Entry
}

func newFrontier(order Order) *frontier {
	return &frontier{order: order, entries: make([]Entry, 0)}
}

func (f *frontier) push(e Entry) {
	f.entries = append(f.entries, e)
}

func (f *frontier) pop() (Entry, bool) {
	if len(f.entries) == 0 {
		return Entry{}, false
	}

	var e Entry
	if f.order == OrderFIFO {
		e = f.entries[0]
		f.entries[0] = Entry{}
		f.entries = f.entries[1:]
	} else {
		last := len(f.entries) - 1
		e = f.entries[last]
		f.entries = f.entries[:last]
	}
	return e, true
}

func (f *frontier) len() int {
	return len(f.entries)
}
