package protocol

import (
	"bufio"
	"io"
	"strings"
)

// Item is one unit of the diagnostic stream: either a text line or a trace frame.
type Item struct {
	Line  string
	Event *Event
}

// Scanner splits the firmware's diagnostic stream into text lines and trace frames.
// Frames start with a non-ASCII signature byte so they cannot be confused with log text.
type Scanner struct {
	r    *bufio.Reader
	line strings.Builder
}

func NewScanner(r io.Reader) *Scanner {
	return &Scanner{r: bufio.NewReader(r)}
}

// Next returns the next item. A frame with a valid signature but bad content
// returns ErrBadFrame; the stream stays usable after it.
func (s *Scanner) Next() (Item, error) {
	s.line.Reset()
	for {
		b, err := s.r.ReadByte()
		if err != nil {
			if err == io.EOF && s.line.Len() > 0 {
				return Item{Line: s.line.String()}, nil
			}
			return Item{}, err
		}

		if b == SIGNATURE_0 {
			if s.line.Len() > 0 {
				_ = s.r.UnreadByte()
				return Item{Line: s.line.String()}, nil
			}
			return s.frame()
		}

		switch b {
		case '\n':
			return Item{Line: strings.TrimRight(s.line.String(), "\r")}, nil
		default:
			s.line.WriteByte(b)
		}
	}
}

func (s *Scanner) frame() (Item, error) {
	buf := make([]byte, FRAME_LENGTH)
	buf[0] = SIGNATURE_0
	if _, err := io.ReadFull(s.r, buf[1:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return Item{}, ErrBadFrame
		}
		return Item{}, err
	}
	e, err := Unmarshal(buf)
	if err != nil {
		return Item{}, err
	}
	return Item{Event: &e}, nil
}
