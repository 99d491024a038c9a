package output_test

import "errors"

var errWrite = errors.New("write failed")

// failingWriter rejects every write with errWrite.
type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errWrite }
