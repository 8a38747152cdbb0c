package gateway

import "io"

// progressReader reports read progress as a 0-100 percentage. Reported
// values never decrease and never exceed 100 even if the source yields
// more bytes than the declared total.
type progressReader struct {
	r     io.Reader
	total int64
	read  int64
	last  float64
	cb    ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)

	if p.cb != nil && p.total > 0 && n > 0 {
		pct := float64(p.read) * 100 / float64(p.total)
		if pct > 100 {
			pct = 100
		}
		if pct > p.last {
			p.last = pct
			p.cb(pct)
		}
	}

	return n, err
}

// finish emits the terminal 100 if the reader never got there on its own
func (p *progressReader) finish() {
	if p.cb != nil && p.last < 100 {
		p.last = 100
		p.cb(100)
	}
}
