package validation

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var roomIDRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{3,64}$`)

func init() {
	MustRegisterGin("roomid", ValidateRoomID)
	MustRegisterGinAlias("username", "min=1,max=64")
}

// ValidateRoomID accepts 3-64 characters: letters, digits, hyphens and
// underscores (covers both client-chosen names and minted tokens).
func ValidateRoomID(fl validator.FieldLevel) bool {
	return roomIDRegex.MatchString(fl.Field().String())
}
