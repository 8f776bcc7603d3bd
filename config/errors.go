package config

import "errors"

var errInputRequired = errors.New("config: one of InputPath or WatchDir must be set")
