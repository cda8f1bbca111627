package embedding

import (
	"hash/fnv"
	"strings"
	"unicode"
)

// BERT special tokens and the vocabulary size word hashes are folded into.
const (
	clsToken  = 101
	sepToken  = 102
	vocabSize = 30000

	defaultMaxTokens = 256
)

// Encoding is the model input for one text: one row of each BERT input tensor.
type Encoding struct {
	InputIDs      []int64
	AttentionMask []int64
	TokenTypeIDs  []int64
}

// Tokenizer turns text into a fixed-length Encoding.
type Tokenizer interface {
	Encode(text string, maxTokens int) Encoding
}

// HashTokenizer maps each lower-cased word to a hashed vocabulary id. It stands in for
// a real WordPiece vocabulary, so it only suits models fine-tuned on the same scheme.
type HashTokenizer struct{}

// Encode returns [CLS] words... [SEP] padded with zeros to maxTokens. Words past the
// limit are dropped.
func (HashTokenizer) Encode(text string, maxTokens int) Encoding {
	if maxTokens <= 2 {
		maxTokens = defaultMaxTokens
	}
	enc := Encoding{
		InputIDs:      make([]int64, maxTokens),
		AttentionMask: make([]int64, maxTokens),
		TokenTypeIDs:  make([]int64, maxTokens),
	}
	put := func(pos int, id int64) {
		enc.InputIDs[pos] = id
		enc.AttentionMask[pos] = 1
	}

	put(0, clsToken)
	pos := 1
	for _, w := range Words(text) {
		if pos == maxTokens-1 {
			break
		}
		put(pos, int64(tokenHash(w)%vocabSize))
		pos++
	}
	put(pos, sepToken)
	return enc
}

// Words lower-cases text and splits it into runs of letters and digits.
func Words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func tokenHash(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}
