package errors

import "errors"

// ErrLockNotObtained another writer holds the lock; retry later
var ErrLockNotObtained = errors.New("resource is busy, please retry")
