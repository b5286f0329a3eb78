package terrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrAlreadyExists   = errors.New("already exists")
	ErrInvalidPosition = errors.New("invalid position")
	ErrInvalidInput    = errors.New("invalid input")

	// Course errors
	ErrCourseNotFound      = fmt.Errorf("course %w", ErrNotFound)
	ErrCourseAlreadyExists = fmt.Errorf("course %w", ErrAlreadyExists)
	ErrNotCourseLecturer   = fmt.Errorf("lecturer for course %w", ErrNotFound)

	// User errors
	ErrUserNotFound = fmt.Errorf("user %w", ErrNotFound)
	ErrNotATutor    = fmt.Errorf("tutor %w", ErrNotFound)
	ErrNotALecturer = fmt.Errorf("lecturer %w", ErrNotFound)

	// Application errors
	ErrApplicationNotFound      = fmt.Errorf("tutor application %w", ErrNotFound)
	ErrApplicationAlreadyExists = fmt.Errorf("tutor application %w", ErrAlreadyExists)

	// Shortlist errors
	ErrNotShortlisted      = fmt.Errorf("shortlisted tutor %w", ErrNotFound)
	ErrAlreadyShortlisted  = fmt.Errorf("shortlisted tutor %w", ErrAlreadyExists)
	ErrTutorNotRanked      = fmt.Errorf("ranking entry %w", ErrNotFound)
	ErrEmptyRanking        = fmt.Errorf("ranking list is empty: %w", ErrInvalidPosition)
	ErrPositionOutOfBounds = fmt.Errorf("target outside ranking list: %w", ErrInvalidPosition)
)
