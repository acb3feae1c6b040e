package domain

import "errors"

var (
	// ErrInvalidArgument is returned when a required input is missing.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrDecode marks a payload that could not be decoded into a Message.
	ErrDecode = errors.New("decode error")

	// ErrDelivery marks a failed send to one connected client.
	ErrDelivery = errors.New("delivery failure")

	// ErrPublication marks a failed publish to the cluster bus.
	ErrPublication = errors.New("publication failure")
)
