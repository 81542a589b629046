package preorder

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	preorderdata "github.com/code-payments/payproc-server/pkg/payproc/data/preorder"
)

// Symbols are chosen to stay distinguishable when a reference is typed by
// hand or read back via OCR. Only the leading 18 (letters) may start a
// reference.
const (
	refAlphabet      = "ABCDEGHJKLNRSTWXYZ0123456789"
	refFirstSymbols  = 18
	refOtherSymbols  = len(refAlphabet)
	refSeparator     = '-'
	refEncodedLength = preorderdata.RefLength + 3
)

// refKeyspace is the number of distinct reference prefixes
const refKeyspace = refFirstSymbols * refOtherSymbols * refOtherSymbols * refOtherSymbols * refOtherSymbols

var ErrInvalidRef = errors.New("invalid preorder reference")

// Ref is a preorder reference of the form AAAAA-NN. Only Prefix identifies
// the preorder. Suffix is derived from the same random draw and acts as a
// check on manually entered references.
type Ref struct {
	Prefix string
	Suffix uint8
}

// GenerateRef draws a new reference from r, which must be a cryptographically
// strong source such as crypto/rand.Reader.
func GenerateRef(r io.Reader) (Ref, error) {
	var prefix [preorderdata.RefLength]byte
	var draw [preorderdata.RefLength]byte

	for i := range prefix {
		size := refOtherSymbols
		if i == 0 {
			size = refFirstSymbols
		}

		b, err := uniformByte(r, size)
		if err != nil {
			return Ref{}, err
		}

		draw[i] = b
		prefix[i] = refAlphabet[int(b)%size]
	}

	n := uint32(draw[0])<<24 | uint32(draw[1])<<16 | uint32(draw[2])<<8 | uint32(draw[3])

	return Ref{
		Prefix: string(prefix[:]),
		Suffix: uint8(preorderdata.MinRefNN + n%(preorderdata.MaxRefNN-preorderdata.MinRefNN+1)),
	}, nil
}

// uniformByte reads bytes until one falls below the largest multiple of size,
// so that reducing it modulo size is unbiased.
func uniformByte(r io.Reader, size int) (byte, error) {
	limit := 256 - 256%size

	var buf [1]byte
	for {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, errors.Wrap(err, "error reading random bytes")
		}

		if int(buf[0]) < limit {
			return buf[0], nil
		}
	}
}

// ParseRef parses a reference of the form AAAAA-NN
func ParseRef(value string) (Ref, error) {
	if len(value) != refEncodedLength || value[preorderdata.RefLength] != refSeparator {
		return Ref{}, ErrInvalidRef
	}

	prefix := value[:preorderdata.RefLength]
	for i := 0; i < len(prefix); i++ {
		idx := strings.IndexByte(refAlphabet, prefix[i])
		if idx < 0 || (i == 0 && idx >= refFirstSymbols) {
			return Ref{}, ErrInvalidRef
		}
	}

	tens, ones := value[refEncodedLength-2], value[refEncodedLength-1]
	if tens < '1' || tens > '9' || ones < '0' || ones > '9' {
		return Ref{}, ErrInvalidRef
	}

	return Ref{
		Prefix: prefix,
		Suffix: (tens-'0')*10 + (ones - '0'),
	}, nil
}

// String returns the AAAAA-NN form of the reference
func (r Ref) String() string {
	return fmt.Sprintf("%s%c%02d", r.Prefix, refSeparator, r.Suffix)
}
