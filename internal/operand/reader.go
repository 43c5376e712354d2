// Package operand reads numeric operands and menu answers from a
// line-oriented input stream.
//
// Reads are token based: leading whitespace, line terminators included, is
// skipped and one whitespace-delimited token is consumed. A successful read
// leaves the rest of the line for the next read. A failed read discards
// everything up to and including the next line terminator so that one bad
// token cannot cascade into the following prompts.
package operand

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
)

var (
	// ErrMalformedNumber is returned when the next token is not a number of the requested kind,
	// or when the stream ended before a token was found.
	ErrMalformedNumber = errors.New("malformed number")
)

// Reader is a token reader over a line-oriented stream.
type Reader struct {
	r *bufio.Reader
	// pending is true while the line terminator of the last consumed token
	// has not been read yet.
	pending bool
}

// NewReader creates a Reader on top of r.
func NewReader(r io.Reader) *Reader {
	if br, ok := r.(*bufio.Reader); ok {
		return &Reader{r: br}
	}
	return &Reader{r: bufio.NewReader(r)}
}

// ReadReal reads one float64 token.
// Out-of-range magnitudes read as ±Inf, as strconv reports them.
func (r *Reader) ReadReal() (float64, error) {
	tok, err := r.token()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, r.fail(tok, err)
	}
	return v, nil
}

// ReadInteger reads one base-10 int64 token.
func (r *Reader) ReadInteger() (int64, error) {
	tok, err := r.token()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		return 0, r.fail(tok, err)
	}
	return v, nil
}

// ReadChoice discards the rest of the current line, reads the next line and
// returns its first character. An empty line yields 0.
func (r *Reader) ReadChoice() (byte, error) {
	if err := r.Resync(); err != nil {
		return 0, err
	}
	line, err := r.r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return 0, err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return 0, nil
	}
	return line[0], nil
}

// Resync discards unread characters up to and including the next line
// terminator. It is a no-op when the reader is already at a line boundary.
func (r *Reader) Resync() error {
	if !r.pending {
		return nil
	}
	r.pending = false
	return r.discardLine()
}

func (r *Reader) discardLine() error {
	for {
		b, err := r.r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if b == '\n' {
			return nil
		}
	}
}

// token skips whitespace and returns the next whitespace-delimited token.
func (r *Reader) token() (string, error) {
	var sb strings.Builder
	for {
		c, _, err := r.r.ReadRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				r.pending = false
				if sb.Len() > 0 {
					return sb.String(), nil
				}
				return "", fmt.Errorf("%w: %w", ErrMalformedNumber, io.EOF)
			}
			return "", err
		}
		if unicode.IsSpace(c) {
			if sb.Len() == 0 {
				continue
			}
			if err := r.r.UnreadRune(); err != nil {
				return "", err
			}
			r.pending = true
			return sb.String(), nil
		}
		sb.WriteRune(c)
	}
}

// fail resynchronizes the stream after a token that did not parse.
func (r *Reader) fail(tok string, cause error) error {
	r.pending = true
	if err := r.Resync(); err != nil {
		return err
	}
	return fmt.Errorf("%w: %q: %w", ErrMalformedNumber, tok, cause)
}
