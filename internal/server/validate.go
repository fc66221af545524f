package server

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type joinRequest struct {
	Username string `validate:"required,max=128"`
	RoomID   string `validate:"required,max=128"`
}

type roomQuery struct {
	RoomID string `validate:"required,max=128"`
}

// validateJoin checks a join request and returns the client-facing error
// message, or "" when the request is valid. Field order in joinRequest makes
// username problems win over room problems.
func validateJoin(username, roomID string) string {
	err := validate.Struct(joinRequest{Username: username, RoomID: roomID})
	if err == nil {
		return ""
	}
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return "Invalid message frame"
	}
	switch first := fieldErrors[0]; {
	case first.Field() == "Username" && first.Tag() == "required":
		return "Username is required"
	case first.Field() == "Username":
		return "Username must be at most 128 characters"
	case first.Tag() == "required":
		return "Room ID is required"
	default:
		return "Room ID must be at most 128 characters"
	}
}

func validateRoomQuery(roomID string) string {
	err := validate.Struct(roomQuery{RoomID: roomID})
	if err == nil {
		return ""
	}
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return "Invalid message frame"
	}
	if fieldErrors[0].Tag() == "required" {
		return "Room ID is required"
	}
	return "Room ID must be at most 128 characters"
}
