package termindex

import (
	"unicode"
	"unicode/utf8"

	"github.com/hazyhaar/termlink/pkg/content"
)

// OtherBucket holds terms whose canonical name does not start with A-Z.
const OtherBucket = "#"

// Bucket is one letter of the alphabetical browse index.
type Bucket struct {
	Letter  string   `json:"letter"`
	TermIDs []string `json:"term_ids"`
}

// BuildAlphabetIndex groups terms into 27 buckets: "#" first, then A to Z.
// Every bucket is present even when empty. The first character of the
// canonical name decides, case-insensitively and with accents folded.
// Terms keep their input order inside a bucket.
func BuildAlphabetIndex(terms []*content.Term) []Bucket {
	buckets := make([]Bucket, 27)
	buckets[0] = Bucket{Letter: OtherBucket, TermIDs: []string{}}
	for i := 0; i < 26; i++ {
		buckets[i+1] = Bucket{Letter: string(rune('A' + i)), TermIDs: []string{}}
	}
	for _, t := range terms {
		i := bucketOf(t.Name())
		buckets[i].TermIDs = append(buckets[i].TermIDs, t.ID)
	}
	return buckets
}

func bucketOf(name string) int {
	r, _ := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return 0
	}
	if r >= 0x80 {
		r, _ = utf8.DecodeRuneInString(foldAccents(string(r)))
	}
	r = unicode.ToUpper(r)
	if r >= 'A' && r <= 'Z' {
		return int(r-'A') + 1
	}
	return 0
}
