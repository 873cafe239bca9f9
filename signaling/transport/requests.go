package transport

// RoomStatusRequest reads the room id from the URL path
type RoomStatusRequest struct {
	// RoomID: 3-64 characters (letters, numbers, hyphens, underscores) - required
	RoomID string `uri:"roomId" binding:"required,roomid"`
}
