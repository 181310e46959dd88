package domain

import "sort"

// Availability is the seat occupancy of one session at the time it was read.
type Availability struct {
	SessionID     string
	Capacity      int
	OccupiedSeats []string
}

func (a Availability) AvailableCount() int {
	return a.Capacity - len(a.OccupiedSeats)
}

// NormalizeSeats removes duplicate labels and sorts the remainder so the
// same selection always produces the same seat set.
func NormalizeSeats(labels []string) []string {
	seen := make(map[string]struct{}, len(labels))
	seats := make([]string, 0, len(labels))

	for _, label := range labels {
		if _, ok := seen[label]; ok {
			continue
		}

		seen[label] = struct{}{}
		seats = append(seats, label)
	}

	SortSeats(seats)

	return seats
}

// SortSeats orders labels by row then by column, so "A2" comes before "A10".
// Labels that do not parse go last, in lexical order.
func SortSeats(labels []string) {
	sort.SliceStable(labels, func(i, j int) bool {
		ri, ci, erri := ParseSeatLabel(labels[i])
		rj, cj, errj := ParseSeatLabel(labels[j])

		validi, validj := erri == nil, errj == nil
		if validi != validj {
			return validi
		}
		if !validi {
			return labels[i] < labels[j]
		}

		if ri != rj {
			return ri < rj
		}

		return ci < cj
	})
}
