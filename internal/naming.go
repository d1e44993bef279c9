package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// CreateExclFile creates a new file for writing with the condition that the file did not exist prior to this call.
//
// If name already exists, a numeric suffix is inserted before the extension ("init.lua" becomes "init-1.lua", then
// "init-2.lua", and so on) until a new file can be created. See [os.O_EXCL]. Caller is responsible for closing the
// file upon a successful return.
func CreateExclFile(name string) (file *os.File, err error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	for i := 0; ; {
		switch file, err = os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0666); {
		case err == nil:
			return
		case errors.Is(err, os.ErrExist):
			i++
			name = stem + "-" + strconv.Itoa(i) + ext
		default:
			return nil, fmt.Errorf("create file error: %w", err)
		}
	}
}
