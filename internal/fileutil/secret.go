package fileutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
)

// MaxSecretSize bounds files read by ReadSecret.
const MaxSecretSize = 4096

// ErrSecretTooLarge indicates a key file larger than MaxSecretSize.
var ErrSecretTooLarge = errors.New("secret file too large")

// ReadSecret reads a small secret file such as a hex private key.
// exposed reports whether the file is readable by group or others; it is
// always false on Windows, where mode bits do not describe ACLs.
func ReadSecret(path string) (data []byte, exposed bool, err error) {
	if path == "" {
		return nil, false, ErrEmptyPath
	}

	f, err := os.Open(path) //nolint:gosec // G304: key file path is chosen by the user
	if err != nil {
		return nil, false, err
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, false, fmt.Errorf("stat secret file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, false, fmt.Errorf("%s: not a regular file", path)
	}
	if info.Size() > MaxSecretSize {
		return nil, false, ErrSecretTooLarge
	}

	data, err = io.ReadAll(io.LimitReader(f, MaxSecretSize+1))
	if err != nil {
		return nil, false, fmt.Errorf("reading secret file: %w", err)
	}
	if len(data) > MaxSecretSize {
		clear(data)
		return nil, false, ErrSecretTooLarge
	}

	exposed = runtime.GOOS != "windows" && info.Mode().Perm()&0o077 != 0
	return data, exposed, nil
}
