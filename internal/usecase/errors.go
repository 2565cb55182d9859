package usecase

import (
	"errors"

	"parttime-match/internal/domain/match"
	"parttime-match/internal/domain/matching"
)

var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	ErrInternal            = errors.New("internal error")
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("not found")
	ErrAlreadyExists       = errors.New("already exists")
	ErrPostClosed          = errors.New("post is closed")

	ErrForbidden         = match.ErrForbidden
	ErrInvalidTransition = match.ErrInvalidTransition
	ErrStorageConflict   = match.ErrStorageConflict
	ErrIncompleteProfile = matching.ErrIncompleteProfile
)
