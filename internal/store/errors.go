package store

import "errors"

var (
	// ErrDuplicateEmail reports a write that would violate the users.email
	// uniqueness constraint.
	ErrDuplicateEmail = errors.New("email already in use")

	// ErrNotFound reports a lookup that matched no row.
	ErrNotFound = errors.New("not found")

	// ErrNotOwner reports an ownership-filtered mutation that affected no
	// rows. Absent and not-owned posts are deliberately indistinguishable.
	ErrNotOwner = errors.New("post not found or not owned")
)
