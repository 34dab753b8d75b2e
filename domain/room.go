// Package domain contains core concepts of the community hub.
// This file defines the Room catalogue: a fixed, closed set of topic
// channels, immutable for the process lifetime.
package domain

type Room string

const (
	RoomEmergency Room = "Emergency"
	RoomFoodHelp  Room = "Food Help"
	RoomEducation Room = "Education"
	RoomHelp      Room = "Help"
	RoomGeneral   Room = "General"
)

// Rooms is the catalogue, in display order.
var Rooms = []Room{RoomEmergency, RoomFoodHelp, RoomEducation, RoomHelp, RoomGeneral}

var roomDescriptions = map[Room]string{
	RoomEmergency: "Urgent help and emergency situations",
	RoomFoodHelp:  "Food assistance and meal sharing",
	RoomEducation: "Learning resources and educational support",
	RoomHelp:      "General help and community assistance",
	RoomGeneral:   "Open discussion and community chat",
}

// ValidRoom reports whether room belongs to the catalogue.
func ValidRoom(room Room) bool {
	_, ok := roomDescriptions[room]
	return ok
}

func (r Room) Description() string {
	if desc, ok := roomDescriptions[r]; ok {
		return desc
	}
	return "Community discussion"
}
