package entities

import "regexp"

var (
	phonePattern    = regexp.MustCompile(`\+?\d{7,15}`)
	emailPattern    = regexp.MustCompile(`[\w.-]+@[\w.-]+\.\w+`)
	urlPattern      = regexp.MustCompile(`https?://\S+`)
	ethereumPattern = regexp.MustCompile(`0x[a-fA-F0-9]{40}`)
	bitcoinPattern  = regexp.MustCompile(`[13][a-km-zA-HJ-NP-Z1-9]{25,34}`)

	ethereumExact = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)
	bitcoinExact  = regexp.MustCompile(`^[13][a-km-zA-HJ-NP-Z1-9]{25,34}$`)
)

// Set is the entity bundle stored on message records.
type Set struct {
	Phones          []string `json:"phones"`
	CryptoAddresses []string `json:"crypto_addresses"`
	URLs            []string `json:"urls"`
}

// FullSet extends Set with email addresses.
type FullSet struct {
	Phones          []string `json:"phones"`
	CryptoAddresses []string `json:"crypto_addresses"`
	Emails          []string `json:"emails"`
	URLs            []string `json:"urls"`
}

// Count returns the total number of entities in the set.
func (s Set) Count() int {
	return len(s.Phones) + len(s.CryptoAddresses) + len(s.URLs)
}

// Count returns the total number of entities in the set.
func (s FullSet) Count() int {
	return len(s.Phones) + len(s.CryptoAddresses) + len(s.Emails) + len(s.URLs)
}

// Extract returns phones, crypto addresses, and URLs found in text.
func Extract(text string) Set {
	return Set{
		Phones:          Phones(text),
		CryptoAddresses: CryptoAddresses(text),
		URLs:            URLs(text),
	}
}

// ExtractAll returns every supported entity type found in text.
func ExtractAll(text string) FullSet {
	return FullSet{
		Phones:          Phones(text),
		CryptoAddresses: CryptoAddresses(text),
		Emails:          Emails(text),
		URLs:            URLs(text),
	}
}

// Phones returns runs of 7 to 15 digits, optionally prefixed with +.
func Phones(text string) []string {
	return findUnique(phonePattern, text)
}

// Emails returns local@domain matches.
func Emails(text string) []string {
	return findUnique(emailPattern, text)
}

// URLs returns http and https URLs up to the next whitespace.
func URLs(text string) []string {
	return findUnique(urlPattern, text)
}

// CryptoAddresses returns Ethereum-style addresses followed by Bitcoin-style
// base58 addresses.
func CryptoAddresses(text string) []string {
	out := make([]string, 0)
	if text == "" {
		return out
	}
	seen := make(map[string]struct{})
	for _, pattern := range []*regexp.Regexp{ethereumPattern, bitcoinPattern} {
		for _, match := range pattern.FindAllString(text, -1) {
			if _, ok := seen[match]; ok {
				continue
			}
			seen[match] = struct{}{}
			out = append(out, match)
		}
	}
	return out
}

// ValidBitcoinAddress reports whether address has Bitcoin base58 shape.
// This is a format check, not a checksum validation.
func ValidBitcoinAddress(address string) bool {
	return address != "" && bitcoinExact.MatchString(address)
}

// ValidEthereumAddress reports whether address has Ethereum hex shape.
// EIP-55 checksums are not verified.
func ValidEthereumAddress(address string) bool {
	return address != "" && ethereumExact.MatchString(address)
}

func findUnique(pattern *regexp.Regexp, text string) []string {
	out := make([]string, 0)
	if text == "" {
		return out
	}
	seen := make(map[string]struct{})
	for _, match := range pattern.FindAllString(text, -1) {
		if _, ok := seen[match]; ok {
			continue
		}
		seen[match] = struct{}{}
		out = append(out, match)
	}
	return out
}
