package config

import (
	"errors"
)

var (
	// ErrEmptyURL is returned when webserver.url is missing from the config.
	ErrEmptyURL = errors.New("toml config webserver.url can not be empty")

	// ErrWebServerPortCanNotBeZero is returned when webserver.port is missing or 0.
	ErrWebServerPortCanNotBeZero = errors.New("toml config webserver.port listening port can not be 0")
)
