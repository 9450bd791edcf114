package message

// CanMutate reports whether requester may edit or delete the message.
// Only the original author qualifies.
func CanMutate(m Message, requester string) bool {
	return m.From == requester
}
