package chat

// RoomKey derives the identifier of a two-party conversation from the
// participant ids: lexicographic sort, joined with "_". The key is identical
// for (a, b) and (b, a), so both clients of one conversation always open the
// same room.
func RoomKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "_" + b
}
