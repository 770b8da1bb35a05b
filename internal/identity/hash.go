package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Customer is the raw identity an embedding page passes in.
type Customer struct {
	Email      string
	Phone      string
	ExternalID string
}

func (c Customer) IsEmpty() bool {
	return strings.TrimSpace(c.Email) == "" &&
		strings.TrimSpace(c.Phone) == "" &&
		strings.TrimSpace(c.ExternalID) == ""
}

// Hashed holds the match-quality fields. All three are always present in
// the outgoing JSON, empty when unknown.
type Hashed struct {
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	ExternalID  string `json:"external_id"`
}

func (h Hashed) IsEmpty() bool {
	return h.Email == "" && h.PhoneNumber == "" && h.ExternalID == ""
}

// Hasher hashes identity fields independently; a failure on one field is
// logged and leaves that field empty.
type Hasher struct {
	logger *zap.Logger
}

func NewHasher(logger *zap.Logger) *Hasher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hasher{logger: logger.Named("identity")}
}

func (h *Hasher) Hash(c Customer) Hashed {
	var out Hashed

	if e := NormalizeEmail(c.Email); e != "" {
		out.Email = h.safeHash("email", e)
	}
	if p := FormatPhoneToE164(c.Phone); p != "" {
		out.PhoneNumber = h.safeHash("phone_number", strings.TrimPrefix(p, "+"))
	}
	if id := strings.TrimSpace(c.ExternalID); id != "" {
		out.ExternalID = h.safeHash("external_id", id)
	}

	return out
}

func (h *Hasher) safeHash(field, value string) (digest string) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Warn("identity hashing failed",
				zap.String("field", field),
				zap.Error(fmt.Errorf("%v", r)),
			)
			digest = ""
		}
	}()
	return SHA256Hex(value)
}

// SHA256Hex returns the lower-case hex SHA-256 digest of s.
func SHA256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
