package matrix

import "errors"

var (
	// ErrNegativeSize is returned when a matrix is set up with fewer than 0 rows.
	ErrNegativeSize = errors.New("matrix: negative size")
	// ErrAlreadySetup is returned when Setup is called on a sized matrix.
	ErrAlreadySetup = errors.New("matrix: already set up")
	// ErrMatrixFull is returned when AddElement is called past the last element.
	ErrMatrixFull = errors.New("matrix: all elements already added")
	// ErrDiagonal is returned for (i, i) accesses; the diagonal is not stored.
	ErrDiagonal = errors.New("matrix: diagonal elements are not stored")
	// ErrOutOfRange is returned for row or column indices outside [0, N).
	ErrOutOfRange = errors.New("matrix: index out of range")
	// ErrIncomplete is returned when a matrix that has not been fully populated is persisted.
	ErrIncomplete = errors.New("matrix: not all elements have been added")
	// ErrFillStarted is returned when FillRows is used on a matrix already being filled by AddElement.
	ErrFillStarted = errors.New("matrix: sequential fill already started")
	// ErrBadFormat is returned when decoding data that is not a persisted matrix.
	ErrBadFormat = errors.New("matrix: invalid file format")
)
