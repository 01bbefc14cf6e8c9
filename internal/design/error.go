package design

import "errors"

var ErrDesignNotFound = errors.New("design not found")
