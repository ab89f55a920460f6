package ws

// outbound computes the frame delivered to the sender's peers. Typing
// control events collapse to the canonical participant-typing shape carrying
// the sender's handle; everything else passes through byte-for-byte.
func outbound(evt Event, sender string) []byte {
	if evt.IsTyping() {
		return typingFrame(sender, evt.Type == typeTypingStart)
	}
	return evt.Raw
}

// fanout queues frame on every connection in peers except the sender.
// Delivery is best-effort per recipient: a stalled or already-failed peer
// drops the frame without affecting the rest or the sender.
func fanout(peers []*Conn, sender *Conn, frame []byte) {
	for _, p := range peers {
		if p == sender {
			continue
		}
		p.Send(frame)
	}
}
