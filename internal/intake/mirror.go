package intake

import "github.com/eventfootprint/eventfootprint/internal/travel"

// MirrorSegments derives the return list from the outbound list: the order is
// reversed, origin and destination are swapped and ReturnTrip is cleared.
// Every other field is copied unchanged. The input is not modified.
func MirrorSegments(outbound []travel.Segment) []travel.Segment {
	out := make([]travel.Segment, len(outbound))
	for i, seg := range outbound {
		seg.Origin, seg.Destination = seg.Destination, seg.Origin
		seg.ReturnTrip = false
		out[len(outbound)-1-i] = seg
	}
	return out
}
