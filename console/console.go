// Package console reads operator responses line by line.
//
// Every read consumes exactly one input line, whether the answer is free
// text or a number, so text and numeric prompts can be mixed freely without a
// stray line terminator being taken as the next answer.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Operator-facing messages.
const (
	InvalidNumber = "Valor inválido. Digite um número válido."
	PressEnter    = "Pressione Enter para continuar..."
)

// ErrInputClosed reports that the operator input ended before an answer was
// given.
var ErrInputClosed = errors.New("input closed")

// Reader prompts on out and reads answers from in.
type Reader struct {
	in  *bufio.Reader
	out io.Writer
}

// NewReader returns a Reader over in, writing prompts to out.
func NewReader(in io.Reader, out io.Writer) *Reader {
	return &Reader{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// line prints prompt, if any, and returns the next trimmed input line, of
// any length.
func (r *Reader) line(prompt string) (string, error) {
	if prompt != "" {
		fmt.Fprint(r.out, prompt)
	}
	s, err := r.in.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("input read error: %w", err)
		}
		// a final line without a terminator is still an answer
		if s == "" {
			return "", ErrInputClosed
		}
	}
	return strings.TrimSpace(s), nil
}

// ReadLine prompts for and returns one line of free text.
func (r *Reader) ReadLine(prompt string) (string, error) {
	return r.line(prompt)
}

// ReadInt prompts until the operator enters a whole number.
func (r *Reader) ReadInt(prompt string) (int, error) {
	for {
		s, err := r.line(prompt)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(s)
		if err == nil {
			return n, nil
		}
		fmt.Fprintln(r.out, InvalidNumber)
	}
}

// ReadFloat prompts until the operator enters a finite number.
func (r *Reader) ReadFloat(prompt string) (float64, error) {
	for {
		s, err := r.line(prompt)
		if err != nil {
			return 0, err
		}
		f, err := strconv.ParseFloat(s, 64)
		if err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return f, nil
		}
		fmt.Fprintln(r.out, InvalidNumber)
	}
}

// Pause waits for the operator to press Enter.
func (r *Reader) Pause() error {
	fmt.Fprintln(r.out, PressEnter)
	_, err := r.line("")
	return err
}
