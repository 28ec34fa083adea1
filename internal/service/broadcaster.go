package service

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	BroadcastToMentors(msgType string, payload interface{})
	BroadcastToMentor(mentorID string, msgType string, payload interface{})
}
