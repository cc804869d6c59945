package serialio

import (
	"bufio"
	"io"
	"sync"
)

// Line wraps a transport with the runtime-togglable line discipline: CR/LF
// handling on receive, CR append and echo on transmit, and a software flow
// control flag. The serial option parameters reach these switches through
// the engine, so a set takes effect on the very next line.
type Line struct {
	mu sync.Mutex
	r  *bufio.Reader
	w  io.Writer

	ignoreCR    bool
	ignoreLF    bool
	appendCR    bool
	echo        bool
	flowControl bool
}

func NewLine(rw io.ReadWriter) *Line {
	return &Line{r: bufio.NewReader(rw), w: rw}
}

func (l *Line) SetIgnoreCR(on bool)    { l.mu.Lock(); l.ignoreCR = on; l.mu.Unlock() }
func (l *Line) SetIgnoreLF(on bool)    { l.mu.Lock(); l.ignoreLF = on; l.mu.Unlock() }
func (l *Line) SetAppendCR(on bool)    { l.mu.Lock(); l.appendCR = on; l.mu.Unlock() }
func (l *Line) SetEcho(on bool)        { l.mu.Lock(); l.echo = on; l.mu.Unlock() }
func (l *Line) SetFlowControl(on bool) { l.mu.Lock(); l.flowControl = on; l.mu.Unlock() }

// ReadLine blocks for the next input line. A line ends at LF, or at CR when
// LF is ignored. Ignored terminator bytes are dropped from the payload.
func (l *Line) ReadLine() (string, error) {
	var buf []byte
	for {
		b, err := l.r.ReadByte()
		if err != nil {
			if err == io.EOF && len(buf) > 0 {
				return l.finish(buf), nil
			}
			return "", err
		}
		switch b {
		case '\r':
			l.mu.Lock()
			ignore := l.ignoreCR
			endsLine := l.ignoreLF // CR terminates when LF is not a terminator
			l.mu.Unlock()
			if ignore {
				continue
			}
			if endsLine {
				return l.finish(buf), nil
			}
			buf = append(buf, b)
		case '\n':
			l.mu.Lock()
			ignore := l.ignoreLF
			l.mu.Unlock()
			if ignore {
				continue
			}
			return l.finish(buf), nil
		default:
			buf = append(buf, b)
		}
	}
}

// finish strips a trailing CR left by CRLF input and echoes when enabled.
func (l *Line) finish(buf []byte) string {
	if n := len(buf); n > 0 && buf[n-1] == '\r' {
		buf = buf[:n-1]
	}
	line := string(buf)
	l.mu.Lock()
	echo := l.echo
	l.mu.Unlock()
	if echo {
		l.WriteLine(line)
	}
	return line
}

// WriteLine sends one response line, appending CR before LF when enabled.
func (l *Line) WriteLine(s string) error {
	l.mu.Lock()
	cr := l.appendCR
	l.mu.Unlock()

	out := make([]byte, 0, len(s)+2)
	out = append(out, s...)
	if cr {
		out = append(out, '\r')
	}
	out = append(out, '\n')
	_, err := l.w.Write(out)
	return err
}

// FlowControl reports whether XON/XOFF flow control is requested.
func (l *Line) FlowControl() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.flowControl
}
