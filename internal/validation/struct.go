package validation

import "github.com/go-playground/validator/v10"

// std validates payloads that do not flow through gin binding, e.g.
// websocket event payloads. Custom tags are registered on both engines.
var std = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("roomid", ValidateRoomID); err != nil {
		panic(err)
	}
	v.RegisterAlias("username", "min=1,max=64")
	return v
}()

// Struct validates v with the shared standalone validator.
func Struct(v any) error {
	return std.Struct(v)
}
