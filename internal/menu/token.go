// Package menu implements the button navigation of the bot: callback tokens,
// the screens they lead to and the router that ties them to the gate, the
// catalog and the user registry.
package menu

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrUnknownToken is returned for callback data outside the token grammar
	// or naming an unknown program or guide.
	ErrUnknownToken = errors.New("menu: unknown token")
	// ErrInvalidIndex is returned for a day index that is malformed or out of range.
	ErrInvalidIndex = errors.New("menu: invalid index")
)

// Kind enumerates the callback tokens.
type Kind int

const (
	KindCheckSub Kind = iota + 1
	KindPrograms
	KindBackMain
	KindProgram
	KindProgramShow
	KindDay
	KindGuides
	KindGuide
	KindPersonal
)

var kindNames = map[Kind]string{
	KindCheckSub:    "check_sub",
	KindPrograms:    "programs",
	KindBackMain:    "back",
	KindProgram:     "prog",
	KindProgramShow: "prog_show",
	KindDay:         "day",
	KindGuides:      "guides_menu",
	KindGuide:       "guide",
	KindPersonal:    "personal",
}

// String returns the token prefix, which doubles as a metric label.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Token is a parsed callback token. Key is the program or asset key and
// Index the zero-based day, when the kind has them.
type Token struct {
	Kind  Kind
	Key   string
	Index int
}

func CheckSub() Token              { return Token{Kind: KindCheckSub} }
func Programs() Token              { return Token{Kind: KindPrograms} }
func BackMain() Token              { return Token{Kind: KindBackMain} }
func Program(key string) Token     { return Token{Kind: KindProgram, Key: key} }
func ProgramShow(key string) Token { return Token{Kind: KindProgramShow, Key: key} }
func Day(key string, i int) Token  { return Token{Kind: KindDay, Key: key, Index: i} }
func Guides() Token                { return Token{Kind: KindGuides} }
func Guide(key string) Token       { return Token{Kind: KindGuide, Key: key} }
func Personal() Token              { return Token{Kind: KindPersonal} }

// String encodes the token as callback data. Parse(t.String()) == t for
// every valid token.
func (t Token) String() string {
	switch t.Kind {
	case KindCheckSub, KindPrograms, KindGuides, KindPersonal:
		return t.Kind.String()
	case KindBackMain:
		return "back:main"
	case KindProgram, KindProgramShow, KindGuide:
		return t.Kind.String() + ":" + t.Key
	case KindDay:
		return "day:" + t.Key + ":" + strconv.Itoa(t.Index)
	}
	return ""
}

// Parse decodes callback data. It checks syntax only; whether a key or index
// exists is decided by the router against the catalog.
func Parse(data string) (Token, error) {
	parts := strings.Split(strings.TrimSpace(data), ":")
	bad := func() (Token, error) {
		return Token{}, fmt.Errorf("%w: %q", ErrUnknownToken, data)
	}
	keyed := func(kind Kind) (Token, error) {
		if len(parts) != 2 || parts[1] == "" {
			return bad()
		}
		return Token{Kind: kind, Key: parts[1]}, nil
	}

	switch parts[0] {
	case "check_sub", "programs", "guides_menu", "personal":
		if len(parts) != 1 {
			return bad()
		}
		switch parts[0] {
		case "check_sub":
			return CheckSub(), nil
		case "programs":
			return Programs(), nil
		case "guides_menu":
			return Guides(), nil
		}
		return Personal(), nil
	case "back":
		if len(parts) != 2 || parts[1] != "main" {
			return bad()
		}
		return BackMain(), nil
	case "prog":
		return keyed(KindProgram)
	case "prog_show":
		return keyed(KindProgramShow)
	case "guide":
		return keyed(KindGuide)
	case "day":
		if len(parts) != 3 || parts[1] == "" {
			return bad()
		}
		i, err := strconv.Atoi(parts[2])
		if err != nil || i < 0 || strconv.Itoa(i) != parts[2] {
			return Token{}, fmt.Errorf("%w: %q", ErrInvalidIndex, data)
		}
		return Day(parts[1], i), nil
	}
	return bad()
}
