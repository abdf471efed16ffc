// Fingerprint tests.
//
// A fingerprint decides whether Save may skip a write, so it must be
// deterministic, fixed width, and sensitive to content: two different
// documents producing the same fingerprint would make Save drop an edit.
package shelf

import (
	"regexp"
	"testing"
)

var hexPattern = regexp.MustCompile(`^[0-9a-f]{16}$`)

func TestFingerprintFormat(t *testing.T) {
	for _, alg := range []int{AlgXXHash3, AlgFNV1a, AlgBlake2b} {
		got := fingerprint([]byte(validRecord), alg)
		if !hexPattern.MatchString(got) {
			t.Errorf("alg %d: fingerprint %q is not 16 hex chars", alg, got)
		}
	}
}

func TestFingerprintDeterministic(t *testing.T) {
	for _, alg := range []int{AlgXXHash3, AlgFNV1a, AlgBlake2b} {
		a := fingerprint([]byte(validRecord), alg)
		b := fingerprint([]byte(validRecord), alg)
		if a != b {
			t.Errorf("alg %d: %q != %q", alg, a, b)
		}
	}
}

func TestFingerprintContentSensitive(t *testing.T) {
	for _, alg := range []int{AlgXXHash3, AlgFNV1a, AlgBlake2b} {
		a := fingerprint([]byte("price = 45"), alg)
		b := fingerprint([]byte("price = 46"), alg)
		if a == b {
			t.Errorf("alg %d: different content, same fingerprint %q", alg, a)
		}
	}
}

func TestFingerprintAlgorithmsDiffer(t *testing.T) {
	x := fingerprint([]byte("test"), AlgXXHash3)
	f := fingerprint([]byte("test"), AlgFNV1a)
	b := fingerprint([]byte("test"), AlgBlake2b)
	if x == f || x == b || f == b {
		t.Errorf("algorithms collide: xxh3=%s fnv=%s blake2b=%s", x, f, b)
	}
}

// An unknown algorithm has no fingerprint. Open refuses such a config and
// Save never treats an empty fingerprint as unchanged content.
func TestFingerprintUnknownAlgorithm(t *testing.T) {
	if got := fingerprint([]byte("test"), 99); got != "" {
		t.Errorf("fingerprint with unknown alg = %q, want empty", got)
	}
}
