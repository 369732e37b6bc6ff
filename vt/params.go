// Copyright © 2025 Texelcore contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: vt/params.go
// Summary: Numeric parameter accumulation for CSI and DCS sequences.
// Usage: The parser feeds digit/separator bytes; executors read via Get.

package vt

// maxParams caps the parameter list; excess parameters are dropped.
const maxParams = 32

// Param is one parameter with its colon-separated subparameters, as used by
// SGR 38/48/58.
type Param struct {
	Value   int
	HasSub  bool
	Subs    []int
	present bool
}

// Params collects the parameter list of a control sequence together with its
// private marker and intermediate bytes.
type Params struct {
	list    []Param
	cur     Param
	curSet  bool
	Private byte // '?', '>', '=' or 0
	Inter   []byte
}

// Reset clears all accumulated state for the next sequence.
func (p *Params) Reset() {
	p.list = p.list[:0]
	p.cur = Param{}
	p.curSet = false
	p.Private = 0
	p.Inter = p.Inter[:0]
}

// Digit folds one decimal digit into the current parameter.
func (p *Params) Digit(b byte) {
	p.curSet = true
	p.cur.present = true
	if p.cur.HasSub {
		last := len(p.cur.Subs) - 1
		if v := p.cur.Subs[last]; v < 1<<24 {
			p.cur.Subs[last] = v*10 + int(b-'0')
		}
		return
	}
	if p.cur.Value < 1<<24 {
		p.cur.Value = p.cur.Value*10 + int(b-'0')
	}
}

// Separator handles ';' (next parameter) and ':' (next subparameter).
func (p *Params) Separator(b byte) {
	if b == ':' {
		p.curSet = true
		p.cur.HasSub = true
		p.cur.Subs = append(p.cur.Subs, 0)
		return
	}
	p.push()
}

func (p *Params) push() {
	if len(p.list) < maxParams {
		p.list = append(p.list, p.cur)
	}
	p.cur = Param{}
	p.curSet = false
}

// Finish closes the final parameter. An entirely empty sequence yields a
// single defaulted parameter.
func (p *Params) Finish() {
	if p.curSet || len(p.list) > 0 {
		p.push()
	}
	if len(p.list) == 0 {
		p.list = append(p.list, Param{})
	}
}

// Len reports the parameter count after Finish.
func (p *Params) Len() int { return len(p.list) }

// Get returns parameter i, substituting def when the parameter is absent or
// zero-valued-by-default.
func (p *Params) Get(i, def int) int {
	if i >= len(p.list) || !p.list[i].present {
		return def
	}
	if p.list[i].Value == 0 && def > 0 {
		return def
	}
	return p.list[i].Value
}

// GetRaw returns parameter i without default substitution.
func (p *Params) GetRaw(i int) int {
	if i >= len(p.list) {
		return 0
	}
	return p.list[i].Value
}

// Sub returns subparameter j of parameter i, or def.
func (p *Params) Sub(i, j, def int) int {
	if i >= len(p.list) || j >= len(p.list[i].Subs) {
		return def
	}
	return p.list[i].Subs[j]
}

// HasSubs reports whether parameter i carried colon subparameters.
func (p *Params) HasSubs(i int) bool {
	return i < len(p.list) && p.list[i].HasSub
}

// SubCount returns the number of subparameters on parameter i.
func (p *Params) SubCount(i int) int {
	if i >= len(p.list) {
		return 0
	}
	return len(p.list[i].Subs)
}
