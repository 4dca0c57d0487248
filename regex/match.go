package regex

// The simulator advances every live thread of a compiled program in parallel
// over the input, one byte per step, so matching never backtracks. Two
// instruction stacks drive it: cur holds the instructions to try against the
// current byte, nxt collects the ones to try against the following byte.
// Branch instructions and class-interior failures move within cur (they
// consume no input); everything else moves to nxt.

// machine is the per-call simulator state. origin[k] records the input index
// at which the thread currently occupying instruction k began, or -1 when no
// thread is there. A membership bit per stack keeps any instruction from
// being queued twice for the same input position, which bounds every step to
// one visit per instruction and rules out epsilon loops spinning forever.
type machine struct {
	prog   *program
	origin []int
	cur    []int
	nxt    []int
	inCur  []bool
	inNxt  []bool
}

func newMachine(p *program) *machine {
	n := p.size()
	m := &machine{
		prog:   p,
		origin: make([]int, n+1),
		cur:    make([]int, 0, n+1),
		nxt:    make([]int, 0, n+1),
		inCur:  make([]bool, n+1),
		inNxt:  make([]bool, n+1),
	}
	for k := range m.origin {
		m.origin[k] = exit
	}
	return m
}

// enqueue schedules instruction dest for a thread born at input index v,
// either on the current stack (epsilon moves) or the next one (a byte was
// consumed). It reports acceptance instead of queueing when dest is the
// accept index. A thread with an older origin than the one already recorded
// at dest is dropped; an equal or newer one takes the slot over.
func (m *machine) enqueue(dest, v int, epsilon bool) (accept bool) {
	if dest < 0 || v < m.origin[dest] {
		return false
	}
	if dest == m.prog.size() {
		return true
	}
	if epsilon {
		if !m.inCur[dest] {
			m.cur = append(m.cur, dest)
			m.inCur[dest] = true
		}
	} else {
		if !m.inNxt[dest] {
			m.nxt = append(m.nxt, dest)
			m.inNxt[dest] = true
		}
	}
	m.origin[dest] = v
	return false
}

// run simulates the program over s and reports the leftmost match as a
// half-open range, or (-1, 0) when there is none. The position one past the
// end of s is simulated with a zero byte so that negated constructs can
// observe end of input.
func (m *machine) run(s string) (start, end int) {
	p := m.prog
	m.origin[0] = 0
	m.cur = append(m.cur, 0)
	m.inCur[0] = true

	i := 0
	for {
		var c byte
		if i < len(s) {
			c = s[i]
		}
		for len(m.cur) > 0 {
			j := m.cur[len(m.cur)-1]
			m.cur = m.cur[:len(m.cur)-1]
			// The wiring already encodes what '?' and '|' mean, so at run
			// time every hoisted modifier is the same branch opcode.
			op := p.tok[j]
			if p.ji[j] != 1 && (op == '?' || op == '|') {
				op = '*'
			}
			v := m.origin[j]
			switch {
			case op == '*' && p.ji[j] == 0:
				// Pure branch: try both edges before this byte is consumed.
				if m.enqueue(p.js[j], v, true) || m.enqueue(p.jf[j], v, true) {
					return v, i
				}
			case c == op || (op == '.' && p.ji[j] == 0 && c != 0):
				if m.enqueue(p.js[j], v, false) {
					return v, i + 1
				}
			default:
				// Failed comparison. Interior class members retry the next
				// member against the same byte; everything else fails over
				// to the next position.
				if m.enqueue(p.jf[j], v, p.ji[j] == 1) {
					return v, i + 1
				}
			}
		}
		m.cur, m.nxt = m.nxt, m.cur
		m.inCur, m.inNxt = m.inNxt, m.inCur
		for k := range m.inNxt {
			m.inNxt[k] = false
		}
		if i >= len(s) || len(m.cur) == 0 {
			break
		}
		i++
	}
	return exit, 0
}
