package domain

import "errors"

var (
	ErrAuctionNotFound = errors.New("auction not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrUnauthorized    = errors.New("not allowed to manage this auction")
	ErrAuctionClosed   = errors.New("auction is not active or has ended")
)
