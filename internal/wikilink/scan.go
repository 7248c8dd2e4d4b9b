package wikilink

// DefaultDivider separates the target from the alias in [[target|alias]].
const DefaultDivider = '|'

// Token is a wiki link recognised at the start of a line fragment.
type Token struct {
	Embed  bool
	Target string
	Alias  string
	// Length is the number of bytes the token spans, including markers.
	Length int
}

type state uint8

const (
	stStart state = iota
	stBang
	stOpen
	stTargetEmpty
	stTarget
	stAliasEmpty
	stAlias
	stClose
	stAccept
	stReject
	numStates
)

type class uint8

const (
	clBang class = iota
	clOpen
	clClose
	clDivider
	clSpace
	clLineEnding
	clOther
	clEOF
	numClasses
)

type action uint8

const (
	actEmbed action = 1 << iota
	actBeginTarget
	actEndTarget
	actBeginAlias
	actEndAlias
)

type transition struct {
	next state
	act  action
}

var reject = transition{next: stReject}

// table is the complete automaton. Rows not listed for a class reject.
var table = func() [numStates][numClasses]transition {
	var t [numStates][numClasses]transition
	for s := range t {
		for c := range t[s] {
			t[s][c] = reject
		}
	}

	t[stStart][clBang] = transition{stBang, actEmbed}
	t[stStart][clOpen] = transition{next: stOpen}
	t[stBang][clOpen] = transition{next: stOpen}
	t[stOpen][clOpen] = transition{stTargetEmpty, actBeginTarget}

	// A target needs one non-space byte before the divider or closing marker.
	t[stTargetEmpty][clSpace] = transition{next: stTargetEmpty}
	for _, c := range []class{clBang, clOpen, clOther} {
		t[stTargetEmpty][c] = transition{next: stTarget}
		t[stTarget][c] = transition{next: stTarget}
	}
	t[stTarget][clSpace] = transition{next: stTarget}
	t[stTarget][clDivider] = transition{stAliasEmpty, actEndTarget | actBeginAlias}
	t[stTarget][clClose] = transition{stClose, actEndTarget}

	t[stAliasEmpty][clSpace] = transition{next: stAliasEmpty}
	for _, c := range []class{clBang, clOpen, clDivider, clOther} {
		t[stAliasEmpty][c] = transition{next: stAlias}
		t[stAlias][c] = transition{next: stAlias}
	}
	t[stAlias][clSpace] = transition{next: stAlias}
	t[stAlias][clClose] = transition{stClose, actEndAlias}

	t[stClose][clClose] = transition{next: stAccept}
	return t
}()

func step(s state, c class) transition {
	return table[s][c]
}

func classify(b byte, divider byte) class {
	switch {
	case b == '\n' || b == '\r':
		return clLineEnding
	case b == ' ' || b == '\t':
		return clSpace
	case b == divider:
		return clDivider
	case b == '!':
		return clBang
	case b == '[':
		return clOpen
	case b == ']':
		return clClose
	}
	return clOther
}

// Scan recognises a wiki link at the start of line. Line endings inside the
// brackets reject the token, so line may extend past the current line.
func Scan(line []byte, divider byte) (Token, bool) {
	var tok Token
	var targetStart, targetEnd, aliasStart, aliasEnd int
	var hasAlias bool

	s := stStart
	for i := 0; i <= len(line); i++ {
		c := clEOF
		if i < len(line) {
			c = classify(line[i], divider)
		}
		tr := step(s, c)
		if tr.act&actEmbed != 0 {
			tok.Embed = true
		}
		if tr.act&actBeginTarget != 0 {
			targetStart = i + 1
		}
		if tr.act&actEndTarget != 0 {
			targetEnd = i
		}
		if tr.act&actBeginAlias != 0 {
			aliasStart = i + 1
			hasAlias = true
		}
		if tr.act&actEndAlias != 0 {
			aliasEnd = i
		}

		switch tr.next {
		case stReject:
			return Token{}, false
		case stAccept:
			tok.Target = string(line[targetStart:targetEnd])
			if hasAlias {
				tok.Alias = string(line[aliasStart:aliasEnd])
			}
			tok.Length = i + 1
			return tok, true
		}
		s = tr.next
	}
	return Token{}, false
}
