package domain

import "errors"

var (
	ErrShowtimeExists = errors.New("showtime already exists")
	ErrRecordNotFound = errors.New("record not found")
)
