package service

import (
	"errors"

	"restaurant_manager/repository"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrStorageConflict    = errors.New("storage conflict")
	ErrAwardFailure       = errors.New("award failure")
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrRewardUnavailable  = errors.New("reward unavailable")
	ErrInvalidInput       = errors.New("invalid input")
)

// notFound gộp repository.ErrNotFound về lỗi của tầng service
func notFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
