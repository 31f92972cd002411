package mnemonic

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/tyler-smith/go-bip39"
)

// bip39Vectors are the English vectors from the BIP-39 reference
// implementation (trezor/python-mnemonic vectors.json).
var bip39Vectors = []struct {
	entropy  string
	mnemonic string
}{
	{"00000000000000000000000000000000", "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"},
	{"7f7f7f7f7f7f7f7f7f7f7f7f7f7f7f7f", "legal winner thank year wave sausage worth useful legal winner thank yellow"},
	{"80808080808080808080808080808080", "letter advice cage absurd amount doctor acoustic avoid letter advice cage above"},
	{"ffffffffffffffffffffffffffffffff", "zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo wrong"},
	{"000000000000000000000000000000000000000000000000", "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon agent"},
	{"7f7f7f7f7f7f7f7f7f7f7f7f7f7f7f7f7f7f7f7f7f7f7f7f", "legal winner thank year wave sausage worth useful legal winner thank year wave sausage worth useful legal will"},
	{"808080808080808080808080808080808080808080808080", "letter advice cage absurd amount doctor acoustic avoid letter advice cage absurd amount doctor acoustic avoid letter always"},
	{"ffffffffffffffffffffffffffffffffffffffffffffffff", "zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo when"},
	{"0000000000000000000000000000000000000000000000000000000000000000", "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon art"},
	{"7f7f7f7f7f7f7f7f7f7f7f7f7f7f7f7f7f7f7f7f7f7f7f7f7f7f7f7f7f7f7f7f", "legal winner thank year wave sausage worth useful legal winner thank year wave sausage worth useful legal winner thank year wave sausage worth title"},
	{"8080808080808080808080808080808080808080808080808080808080808080", "letter advice cage absurd amount doctor acoustic avoid letter advice cage absurd amount doctor acoustic avoid letter advice cage absurd amount doctor acoustic bless"},
	{"ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff", "zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo vote"},
	{"9e885d952ad362caeb4efe34a8e91bd2", "ozone drill grab fiber curtain grace pudding thank cruise elder eight picnic"},
	{"6610b25967cdcca9d59875f5cb50b0ea75433311869e930b", "gravity machine north sort system female filter attitude volume fold club stay feature office ecology stable narrow fog"},
	{"68a79eaca2324873eacc50cb9c6eca8cc68ea5d936f98787c60c7ebc74e6ce7c", "hamster diagram private dutch cause delay private meat slide toddler razor book happy fancy gospel tennis maple dilemma loan word shrug inflict delay length"},
	{"c0ba5a8e914111210f2bd131f3d5e08d", "scheme spot photo card baby mountain device kick cradle pact join borrow"},
	{"6d9be1ee6ebd27a258115aad99b7317b9c8d28b6d76431c3", "horn tenant knee talent sponsor spell gate clip pulse soap slush warm silver nephew swap uncle crack brave"},
	{"9f6a2878b2520799a44ef18bc7df394e7061a224d2c33cd015b157d746869863", "panda eyebrow bullet gorilla call smoke muffin taste mesh discover soft ostrich alcohol speed nation flash devote level hobby quick inner drive ghost inside"},
	{"23db8160a31d3e0dca3688ed941adbf3", "cat swing flag economy stadium alone churn speed unique patch report train"},
	{"8197a4a47f0425faeaa69deebc05ca29c0a5b5cc76ceacc0", "light rule cinnamon wrap drastic word pride squirrel upgrade then income fatal apart sustain crack supply proud access"},
	{"066dca1a2bb7e8a1db2832148ce9933eea0f3ac9548d793112d9a95c9407efad", "all hour make first leader extend hole alien behind guard gospel lava path output census museum junior mass reopen famous sing advance salt reform"},
	{"f30f8c1da665478f49b001d94c5fc452", "vessel ladder alter error federal sibling chat ability sun glass valve picture"},
	{"c10ec20dc3cd9f652c7fac2f1230f7a3c828389a14392f05", "scissors invite lock maple supreme raw rapid void congress muscle digital elegant little brisk hair mango congress clump"},
	{"f585c11aec520db57dd353c69554b21a89b20fb0650966fa0a9d6f74fd989d8f", "void come effort suffer camp survey warrior heavy shoot primary clutch crush open amazing screen patrol group space point ten exist slush involve unfold"},
}

var validEntropyLens = []int{16, 20, 24, 28, 32}

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad hex %q: %v", s, err)
	}
	return b
}

func randomEntropy(t *testing.T, n int) []byte {
	t.Helper()
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		t.Fatalf("rand.Read() error: %v", err)
	}
	return b
}

func TestFromEntropy_Vectors(t *testing.T) {
	for _, v := range bip39Vectors {
		t.Run(v.entropy, func(t *testing.T) {
			m, err := FromEntropy(mustHex(t, v.entropy))
			if err != nil {
				t.Fatalf("FromEntropy() error: %v", err)
			}
			if got := m.String(); got != v.mnemonic {
				t.Errorf("FromEntropy() = %q, want %q", got, v.mnemonic)
			}
		})
	}
}

func TestParse_Vectors(t *testing.T) {
	for _, v := range bip39Vectors {
		t.Run(v.entropy, func(t *testing.T) {
			m, err := Parse(v.mnemonic)
			if err != nil {
				t.Fatalf("Parse() error: %v", err)
			}
			if got := m.String(); got != v.mnemonic {
				t.Errorf("String() = %q, want %q", got, v.mnemonic)
			}
			if got, want := m.Entropy(), mustHex(t, v.entropy); !bytes.Equal(got, want) {
				t.Errorf("Entropy() = %x, want %x", got, want)
			}
		})
	}
}

func TestRoundtrip_AllLengths(t *testing.T) {
	for _, n := range validEntropyLens {
		for i := 0; i < 20; i++ {
			entropy := randomEntropy(t, n)
			m, err := FromEntropy(entropy)
			if err != nil {
				t.Fatalf("FromEntropy(%d bytes) error: %v", n, err)
			}

			parsed, err := Parse(m.String())
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", m.String(), err)
			}
			if !parsed.Equal(m) {
				t.Errorf("roundtrip words = %v, want %v", parsed.Words(), m.Words())
			}
			if !bytes.Equal(parsed.Entropy(), entropy) {
				t.Errorf("roundtrip entropy = %x, want %x", parsed.Entropy(), entropy)
			}
		}
	}
}

func TestFromEntropy_Deterministic(t *testing.T) {
	zeros := make([]byte, 32)
	ones := bytes.Repeat([]byte{1}, 32)

	m1, err := FromEntropy(zeros)
	if err != nil {
		t.Fatalf("FromEntropy() error: %v", err)
	}
	m2, err := FromEntropy(zeros)
	if err != nil {
		t.Fatalf("FromEntropy() error: %v", err)
	}
	m3, err := FromEntropy(ones)
	if err != nil {
		t.Fatalf("FromEntropy() error: %v", err)
	}

	if m1.String() != m2.String() {
		t.Error("same entropy should produce the same mnemonic")
	}
	if m1.String() == m3.String() {
		t.Error("different entropy should produce different mnemonics")
	}
}

func TestFromEntropy_DoesNotAliasInput(t *testing.T) {
	entropy := bytes.Repeat([]byte{0x7f}, 16)
	m, err := FromEntropy(entropy)
	if err != nil {
		t.Fatalf("FromEntropy() error: %v", err)
	}
	before := m.String()
	entropy[0] = 0
	if m.String() != before {
		t.Error("mutating the input entropy changed the mnemonic")
	}
}

func TestFromEntropy_Lengths(t *testing.T) {
	for _, n := range validEntropyLens {
		if _, err := FromEntropy(make([]byte, n)); err != nil {
			t.Errorf("FromEntropy(%d bytes) error: %v", n, err)
		}
	}

	for _, n := range []int{0, 8, 12, 17, 18, 36, 40} {
		_, err := FromEntropy(make([]byte, n))
		if !errors.Is(err, ErrInvalidEntropyLength) {
			t.Errorf("FromEntropy(%d bytes) error = %v, want ErrInvalidEntropyLength", n, err)
		}
	}
}

func TestFromEntropy_WordCount(t *testing.T) {
	want := map[int]int{16: 12, 20: 15, 24: 18, 28: 21, 32: 24}
	for n, words := range want {
		m, err := FromEntropy(bytes.Repeat([]byte{1}, n))
		if err != nil {
			t.Fatalf("FromEntropy(%d bytes) error: %v", n, err)
		}
		if m.Len() != words {
			t.Errorf("FromEntropy(%d bytes) has %d words, want %d", n, m.Len(), words)
		}
		if _, err := Parse(m.String()); err != nil {
			t.Errorf("Parse() of %d-word mnemonic error: %v", words, err)
		}
	}
}

func TestParse_Errors(t *testing.T) {
	abandon11 := strings.Repeat("abandon ", 11)

	tests := []struct {
		name     string
		mnemonic string
		want     error
	}{
		{"empty", "", ErrInvalidWordCount},
		{"single word", "abandon", ErrInvalidWordCount},
		{"eleven words", strings.TrimSpace(abandon11), ErrInvalidWordCount},
		{"thirteen words", abandon11 + "abandon about", ErrInvalidWordCount},
		{"twenty seven words", strings.Repeat("abandon ", 26) + "abandon", ErrInvalidWordCount},
		{"trailing space", abandon11 + "about ", ErrInvalidWordCount},
		{"unknown last word", abandon11 + "notaword", ErrUnknownWord},
		{"uppercase word", abandon11 + "About", ErrUnknownWord},
		{"double space", strings.Repeat("abandon ", 10) + " about", ErrUnknownWord},
		{"bad checksum", abandon11 + "abandon", ErrChecksumMismatch},
		{"changed first word", "science abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about", ErrChecksumMismatch},
		{"changed last word", abandon11 + "zoo", ErrChecksumMismatch},
		{"changed second word", "void black effort suffer camp survey warrior heavy shoot primary clutch crush open amazing screen patrol group space point ten exist slush involve unfold", ErrChecksumMismatch},
		{"changed last of 24", "void come effort suffer camp survey warrior heavy shoot primary clutch crush open amazing screen patrol group space point ten exist slush involve holiday", ErrChecksumMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Parse(tt.mnemonic)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Parse() error = %v, want %v", err, tt.want)
			}
			if m != nil {
				t.Error("Parse() should not return a mnemonic on error")
			}
		})
	}
}

func TestParse_ErrorOrder(t *testing.T) {
	// Unknown words in a mnemonic of invalid length report the length.
	_, err := Parse("foo bar baz")
	if !errors.Is(err, ErrInvalidWordCount) {
		t.Errorf("Parse() error = %v, want ErrInvalidWordCount", err)
	}

	// An unknown word is reported before the (also broken) checksum.
	_, err = Parse("zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo notaword")
	if !errors.Is(err, ErrUnknownWord) {
		t.Errorf("Parse() error = %v, want ErrUnknownWord", err)
	}
}

func TestParse_UnknownWordPosition(t *testing.T) {
	_, err := Parse("abandon abandon abandon qwerty abandon abandon abandon abandon abandon abandon abandon xyz")

	var uwe *UnknownWordError
	if !errors.As(err, &uwe) {
		t.Fatalf("Parse() error = %v, want *UnknownWordError", err)
	}
	if uwe.Index != 3 || uwe.Word != "qwerty" {
		t.Errorf("UnknownWordError = {%d %q}, want {3 \"qwerty\"}", uwe.Index, uwe.Word)
	}
	if !strings.Contains(err.Error(), "qwerty") {
		t.Errorf("error %q should name the word", err)
	}
}

// Replacing the last word must be rejected unless the new word happens to
// carry the right checksum: exactly one of every 2^checksumBits candidates.
func TestParse_LastWordChecksumSensitivity(t *testing.T) {
	for _, n := range validEntropyLens {
		m, err := FromEntropy(randomEntropy(t, n))
		if err != nil {
			t.Fatalf("FromEntropy() error: %v", err)
		}
		words := m.Words()
		prefix := strings.Join(words[:len(words)-1], " ")

		valid := 0
		foundOriginal := false
		for i := 0; i < WordListSize; i++ {
			_, err := Parse(prefix + " " + Word(i))
			switch {
			case err == nil:
				valid++
				if Word(i) == words[len(words)-1] {
					foundOriginal = true
				}
			case !errors.Is(err, ErrChecksumMismatch):
				t.Fatalf("Parse() error = %v, want ErrChecksumMismatch", err)
			}
		}

		if want := WordListSize >> checksumBits(n); valid != want {
			t.Errorf("%d-byte entropy: %d valid last words, want %d", n, valid, want)
		}
		if !foundOriginal {
			t.Errorf("%d-byte entropy: original last word rejected", n)
		}
	}
}

func TestMnemonic_Accessors(t *testing.T) {
	m, err := Parse(bip39Vectors[0].mnemonic)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	words := m.Words()
	if len(words) != 12 || m.Len() != 12 {
		t.Fatalf("Len() = %d, len(Words()) = %d, want 12", m.Len(), len(words))
	}
	words[0] = "zoo"
	if m.Words()[0] != "abandon" {
		t.Error("Words() must return a copy")
	}

	other, _ := Parse(bip39Vectors[0].mnemonic)
	if !m.Equal(other) {
		t.Error("Equal() = false for identical mnemonics")
	}
	different, _ := Parse(bip39Vectors[3].mnemonic)
	if m.Equal(different) {
		t.Error("Equal() = true for different mnemonics")
	}
	if m.Equal(nil) {
		t.Error("Equal(nil) = true")
	}
}

func TestMnemonic_ZeroValue(t *testing.T) {
	for _, m := range []*Mnemonic{nil, {}} {
		if e := m.Entropy(); e != nil {
			t.Errorf("Entropy() of empty mnemonic = %x, want nil", e)
		}
		if m.Len() != 0 || m.String() != "" || len(m.Words()) != 0 {
			t.Errorf("empty mnemonic accessors: len=%d string=%q", m.Len(), m.String())
		}
	}
}

func TestCodec_MatchesGoBIP39(t *testing.T) {
	for _, n := range validEntropyLens {
		for i := 0; i < 10; i++ {
			entropy := randomEntropy(t, n)

			m, err := FromEntropy(entropy)
			if err != nil {
				t.Fatalf("FromEntropy() error: %v", err)
			}
			ref, err := bip39.NewMnemonic(entropy)
			if err != nil {
				t.Fatalf("bip39.NewMnemonic() error: %v", err)
			}
			if m.String() != ref {
				t.Errorf("FromEntropy() = %q, go-bip39 = %q", m.String(), ref)
			}

			refEntropy, err := bip39.EntropyFromMnemonic(ref)
			if err != nil {
				t.Fatalf("bip39.EntropyFromMnemonic() error: %v", err)
			}
			got, err := defaultCodec.EntropyFromMnemonic(ref)
			if err != nil {
				t.Fatalf("EntropyFromMnemonic() error: %v", err)
			}
			if !bytes.Equal(got, refEntropy) {
				t.Errorf("EntropyFromMnemonic() = %x, go-bip39 = %x", got, refEntropy)
			}
		}
	}
}

func TestCodec_Validate(t *testing.T) {
	c := NewCodec()
	if err := c.Validate(bip39Vectors[0].mnemonic); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
	if err := c.Validate("abandon"); !errors.Is(err, ErrInvalidWordCount) {
		t.Errorf("Validate() error = %v, want ErrInvalidWordCount", err)
	}
}

func TestCodec_EntropyFromMnemonic_Invalid(t *testing.T) {
	c := NewCodec()
	if _, err := c.EntropyFromMnemonic("zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo"); !errors.Is(err, ErrChecksumMismatch) {
		t.Errorf("EntropyFromMnemonic() error = %v, want ErrChecksumMismatch", err)
	}
}

func TestCodec_Blake3Roundtrip(t *testing.T) {
	c := NewCodec(WithChecksum(Blake3Checksum))
	for _, n := range validEntropyLens {
		entropy := randomEntropy(t, n)
		m, err := c.FromEntropy(entropy)
		if err != nil {
			t.Fatalf("FromEntropy() error: %v", err)
		}
		got, err := c.EntropyFromMnemonic(m.String())
		if err != nil {
			t.Fatalf("EntropyFromMnemonic() error: %v", err)
		}
		if !bytes.Equal(got, entropy) {
			t.Errorf("entropy = %x, want %x", got, entropy)
		}
	}
}

func TestCodec_CustomChecksumUsed(t *testing.T) {
	// A checksum of 0xff turns the last 4 bits of a 12-word mnemonic to ones.
	c := NewCodec(WithChecksum(func([]byte) byte { return 0xff }))
	m, err := c.FromEntropy(make([]byte, 16))
	if err != nil {
		t.Fatalf("FromEntropy() error: %v", err)
	}
	words := m.Words()
	if last := words[len(words)-1]; last != Word(0x0f) {
		t.Errorf("last word = %q, want %q", last, Word(0x0f))
	}
	if _, err := Parse(m.String()); !errors.Is(err, ErrChecksumMismatch) {
		t.Errorf("Parse() with SHA-256 error = %v, want ErrChecksumMismatch", err)
	}
}

func TestWithChecksum_NilKeepsDefault(t *testing.T) {
	c := NewCodec(WithChecksum(nil))
	if _, err := c.Parse(bip39Vectors[0].mnemonic); err != nil {
		t.Errorf("Parse() error: %v", err)
	}
}

func TestChecksumByName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"sha256", false},
		{"SHA256", false},
		{"", false},
		{"blake3", false},
		{" blake3 ", false},
		{"md5", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, err := ChecksumByName(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ChecksumByName(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if !tt.wantErr && fn == nil {
				t.Error("ChecksumByName() returned nil func")
			}
		})
	}
}

func TestCodec_Concurrent(t *testing.T) {
	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, v := range bip39Vectors {
				entropy, _ := hex.DecodeString(v.entropy)
				m, err := FromEntropy(entropy)
				if err != nil {
					errs <- err
					return
				}
				if _, err := Parse(m.String()); err != nil {
					errs <- err
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent roundtrip error: %v", err)
	}
}
