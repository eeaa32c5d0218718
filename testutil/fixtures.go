package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Well-formed permalinks shared across package tests.
const (
	KoreanTitle = "당근마켓-대한민국-1등-동네-앱"

	FullPermalink      = "https://www.daangn.com/kr/app/" + KoreanTitle + "-id1018769995/"
	IDOnlyPermalink    = "https://www.daangn.com/kr/app/id1018769995/"
	NormalizedKR       = "https://www.karrotmarket.com/kr/app/id1018769995/"
	CanonicalKR        = "https://www.daangn.com/kr/app/%EB%8B%B9%EA%B7%BC%EB%A7%88%EC%BC%93-%EB%8C%80%ED%95%9C%EB%AF%BC%EA%B5%AD-1%EB%93%B1-%EB%8F%99%EB%84%A4-%EC%95%B1-id1018769995/"
	ForeignURL         = "https://apps.apple.com/kr/app/%EB%8B%B9%EA%B7%BC%EB%A7%88%EC%BC%93/id1018769995"
	UnknownCountryURL  = "http://localhost/xx/app/id1018769995/"
	RelativeURL        = "invalid/kr/app/id1018769995/"
	USBikePermalink    = "https://us.karrotmarket.com/us/buy-sell/used-bike-0a1b2c3d4e/"
	USBikeNormalized   = "https://www.karrotmarket.com/us/buy-sell/0a1b2c3d4e/"
	USBikeCanonicalNew = "https://us.karrotmarket.com/us/buy-sell/red-bike-0a1b2c3d4e/"
)

// BatchLines joins lines into batch input text.
func BatchLines(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}

// WriteBatchFile writes lines to a batch file in a temp dir and returns its path.
func WriteBatchFile(t *testing.T, lines ...string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "urls.txt")
	if err := os.WriteFile(path, []byte(BatchLines(lines...)), 0644); err != nil {
		t.Fatalf("failed to write batch file: %v", err)
	}
	return path
}
