package domain

// RoomLabel names a broadcast group. Chat groups live in the
// "group_<id>" namespace so arbitrary labels from clients cannot
// collide with future system rooms.
type RoomLabel string

const groupPrefix = "group_"

func GroupRoom(groupID string) RoomLabel {
	return RoomLabel(groupPrefix + groupID)
}
