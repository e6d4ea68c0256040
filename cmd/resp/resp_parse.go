package resp

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Resp protocol's data types
const (
	RespStatus    = '+' // +<string>\r\n
	RespError     = '-' // -<string>\r\n
	RespString    = '$' // $<length>\r\n<bytes>\r\n
	RespInt       = ':' // :<number>\r\n
	RespNil       = '_' // _\r\n
	RespFloat     = ',' // ,<floating-point-number>\r\n (golang float)
	RespBool      = '#' // true: #t\r\n false: #f\r\n
	RespBlobError = '!' // !<length>\r\n<bytes>\r\n
	RespVerbatim  = '=' // =<length>\r\nFORMAT:<bytes>\r\n
	RespBigInt    = '(' // (<big number>\r\n
	RespArray     = '*' // *<len>\r\n... (same as resp2)
	RespMap       = '%' // %<len>\r\n(key)\r\n(value)\r\n... (golang map)
	RespSet       = '~' // ~<len>\r\n... (same as Array)
	RespAttr      = '|' // |<len>\r\n(key)\r\n(value)\r\n... + command reply
	RespPush      = '>' // ><len>\r\n... (same as Array)
)

// Limits on lengths announced by a peer, as in Redis.
const (
	MaxBulkLen      = 512 << 20
	MaxAggregateLen = 1 << 20

	preallocLen = 64
)

var ErrEmptyLine = errors.New("ERR protocol error: empty line")
var ErrInvalidLen = errors.New("ERR protocol error: invalid length")

// Read reads one RESP value. Lines that do not start with a type marker are
// returned as plain strings so inline commands can be handled by the caller.
func Read(r *bufio.Reader) (any, error) {
	l, err := r.ReadString('\n')
	if err != nil {
		return nil, err
	}

	line := strings.TrimRight(l, "\r\n")
	if len(line) == 0 {
		return nil, ErrEmptyLine
	}

	switch line[0] {
	case RespNil:
		return nil, nil
	case RespBool:
		return len(line) > 1 && line[1] == 't', nil
	case RespInt:
		return strconv.Atoi(line[1:])
	case RespStatus:
		return line[1:], nil
	case RespString:
		return readString(r, line)
	case RespError:
		return errors.New(line[1:]), nil
	case RespArray, RespSet, RespPush:
		return readSlice(r, line)
	case RespMap:
		return readMap(r, line)
	}

	return line, nil
}

func readString(r *bufio.Reader, line string) (any, error) {
	n, err := replyLen(line, MaxBulkLen)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, nil
	}

	// Grow with the data actually received rather than the announced length.
	var b bytes.Buffer
	if _, err := io.CopyN(&b, r, int64(n)+2); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}

	return string(b.Bytes()[:n]), nil
}

func readSlice(r *bufio.Reader, line string) (any, error) {
	n, err := replyLen(line, MaxAggregateLen)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, nil
	}

	arr := make([]any, 0, min(n, preallocLen))
	for i := 0; i < n; i++ {
		v, err := Read(r)
		if err != nil {
			return arr, err
		}

		arr = append(arr, v)
	}

	return arr, nil
}

// readMap decodes a map reply. Keys are stringified so that any scalar key
// can be used.
func readMap(r *bufio.Reader, line string) (any, error) {
	n, err := replyLen(line, MaxAggregateLen)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, nil
	}

	m := make(map[string]any, min(n, preallocLen))
	for i := 0; i < n; i++ {
		k, err := Read(r)
		if err != nil {
			return m, err
		}
		v, err := Read(r)
		if err != nil {
			return m, err
		}

		m[fmt.Sprint(k)] = v
	}

	return m, nil
}

// replyLen parses the length of a reply. -1 marks a nil value; anything
// below it or above limit is rejected.
func replyLen(line string, limit int) (int, error) {
	n, err := strconv.Atoi(line[1:])
	if err != nil || n < -1 || n > limit {
		return 0, ErrInvalidLen
	}

	return n, nil
}
