package domain

// BufferSlots is the number of quick-reply slots per group. The persisted
// slot array has one extra entry because slot numbering is 1-based and
// index 0 is never used.
const BufferSlots = 4

// ReplyBuffer is the per-group circular buffer of recent outside senders.
// Pointer always indexes the slot most recently written and cycles 1..4.
type ReplyBuffer struct {
	Index   int       `firestore:"idx"`
	Pointer int       `firestore:"cbp"`
	Slots   [5]string `firestore:"cb"`
}

// NewReplyBuffer returns an empty buffer for the given group with the
// pointer parked at 1.
func NewReplyBuffer(g Group) *ReplyBuffer {
	return &ReplyBuffer{Index: g.Index(), Pointer: 1}
}

// Advance moves the pointer to the next slot (1->2->3->4->1, never 0),
// records the sender's stored-form number there, and returns the new
// pointer so the broadcast body can carry a "+N to reply" hint.
func (b *ReplyBuffer) Advance(senderNumber string) int {
	b.Pointer = b.Pointer%BufferSlots + 1
	b.Slots[b.Pointer] = senderNumber
	return b.Pointer
}

// Slot returns the stored number for a 1-based quick-reply index, empty if
// the slot has not been written yet.
func (b *ReplyBuffer) Slot(n int) string {
	if n < 1 || n > BufferSlots {
		return ""
	}
	return b.Slots[n]
}
