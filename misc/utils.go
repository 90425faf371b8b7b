package misc

import (
	"crypto/rand"
	"strings"
)

const StandardTimestamp = `20060102`

func CreateToken(ln int) []byte {
	b := make([]byte, ln)
	rand.Read(b)
	return b
}

func TrimEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func TrimStrings(ss []string) []string {
	out := ss[:0]
	for _, s := range ss {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func StringsIndexOf(ss []string, v string) int {
	for i, s := range ss {
		if s == v {
			return i
		}
	}
	return -1
}

func IsInList(ss []string, v string) bool {
	return StringsIndexOf(ss, v) > -1
}
