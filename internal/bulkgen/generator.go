package bulkgen

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// Row limits enforced before a single row is generated. AI editing pushes
// the whole sheet through a completion prompt, hence the much lower cap.
const (
	MaxBasicRows  = 50000
	MaxAIEditRows = 290
)

const (
	simpleCharset  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	complexCharset = simpleCharset + "!@#$%^&*"

	defaultPasswordLength = 10
)

var (
	// ErrRangeInvalid means start/end do not form an ascending range.
	ErrRangeInvalid = errors.New("bulkgen: start number must be less than end number")

	// ErrTooManyRows means the requested range exceeds the applicable cap.
	ErrTooManyRows = errors.New("bulkgen: requested range exceeds the row limit")
)

// Editor applies a free-text instruction to generated CSV data. The aigen
// client satisfies this.
type Editor interface {
	EditCSV(ctx context.Context, csvData, instruction string) (string, error)
}

// Params describes one ranged generation request. Identities are numbered
// Start..End inclusive; the number becomes both name and email local part.
type Params struct {
	Start       int
	End         int
	EmailDomain string // e.g. "@u.edu"
	Role        string
	Department  string
	// Instructions, when non-empty, routes the sheet through the AI editor.
	Instructions string
	// ComplexPasswords adds symbols to the generated passwords.
	ComplexPasswords bool
}

// Count returns the number of identities the range covers.
func (p Params) Count() int {
	return p.End - p.Start + 1
}

// Generator produces roster CSV sheets.
type Generator struct {
	editor Editor
}

// New creates a generator; editor may be nil when AI editing is not
// configured, in which case requests with instructions fail.
func New(editor Editor) *Generator {
	return &Generator{editor: editor}
}

// Generate validates the request, builds the sheet, and optionally pipes
// it through the AI editor. Limit violations reject the request before
// any row is generated.
func (g *Generator) Generate(ctx context.Context, p Params) (string, error) {
	if p.Start >= p.End {
		return "", ErrRangeInvalid
	}
	count := p.Count()
	if p.Instructions == "" && count > MaxBasicRows {
		return "", fmt.Errorf("%w: %d > %d for basic generation", ErrTooManyRows, count, MaxBasicRows)
	}
	if p.Instructions != "" && count > MaxAIEditRows {
		return "", fmt.Errorf("%w: %d > %d for AI editing", ErrTooManyRows, count, MaxAIEditRows)
	}
	if p.Instructions != "" && g.editor == nil {
		return "", errors.New("bulkgen: AI editing requested but no editor configured")
	}

	var b strings.Builder
	b.WriteString("name,email,password,role,department\n")
	for i := p.Start; i <= p.End; i++ {
		password, err := Password(defaultPasswordLength, p.ComplexPasswords)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "%d,%d%s,%s,%s,%s\n", i, i, p.EmailDomain, password, p.Role, p.Department)
	}
	sheet := strings.TrimRight(b.String(), "\n")

	if p.Instructions == "" {
		return sheet, nil
	}
	return g.editor.EditCSV(ctx, sheet, p.Instructions)
}

// Password generates a random password from the simple or complex charset
// using a secure random source.
func Password(length int, complexSet bool) (string, error) {
	if length <= 0 {
		length = defaultPasswordLength
	}
	charset := simpleCharset
	if complexSet {
		charset = complexCharset
	}
	out := make([]byte, length)
	max := big.NewInt(int64(len(charset)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = charset[n.Int64()]
	}
	return string(out), nil
}
