// util/text.go
// Copyright(c) 2025 viperops2miz contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"crypto/sha256"
	"encoding/hex"
	"iter"
	"strings"
)

// HashHex returns the hex-encoded SHA-256 hash of b, suitable for use as
// a cache file name.
func HashHex(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}

// NormalizeNewlines converts "\r\n" and lone "\r" line endings to "\n".
func NormalizeNewlines(s string) string {
	if !strings.ContainsRune(s, '\r') {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// SelectInTwoEdits appends the candidates from seq whose Levenshtein
// distance from str is one to dist1 and those at distance two to dist2.
// Exact matches are skipped.
func SelectInTwoEdits(str string, seq iter.Seq[string], dist1, dist2 []string) ([]string, []string) {
	var cur, prev []int
	n := len(str)
	for str2 := range seq {
		if str == str2 {
			continue
		}
		n2 := len(str2)
		if n2-n > 2 || n-n2 > 2 {
			continue
		}

		if n2+1 > len(cur) {
			cur = make([]int, n2+1)
			prev = make([]int, n2+1)
		}
		for x := range n2 + 1 {
			prev[x] = x
		}

		tooFar := false
		for y := 1; y <= n; y++ {
			cur[0] = y
			rowBest := y
			for x := 1; x <= n2; x++ {
				cost := 0
				if str[y-1] != str2[x-1] {
					cost = 1
				}
				cur[x] = min(prev[x-1]+cost, cur[x-1]+1, prev[x]+1)
				rowBest = min(rowBest, cur[x])
			}
			if rowBest > 2 {
				tooFar = true
				break
			}
			cur, prev = prev, cur
		}
		if tooFar {
			continue
		}

		switch prev[n2] {
		case 1:
			dist1 = append(dist1, str2)
		case 2:
			dist2 = append(dist2, str2)
		}
	}
	return dist1, dist2
}
