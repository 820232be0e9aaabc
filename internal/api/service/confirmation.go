package service

import (
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"reviewhub/internal/api/models"

	"golang.org/x/crypto/blake2b"
)

// CodeGenerator mints and checks the confirmation codes e-mailed at signup.
//
// A code is "<timestamp base36>-<keyed MAC>". The MAC covers the user's id
// plus a state fingerprint (username, email, role, last login), so a code
// stops verifying after any of those fields change. Logging in moves
// last_login, which kills every code issued before it.
type CodeGenerator struct {
	key [32]byte
	ttl time.Duration
	now func() time.Time
}

func NewCodeGenerator(secret string, ttl time.Duration) *CodeGenerator {
	return &CodeGenerator{
		key: blake2b.Sum256([]byte(secret)),
		ttl: ttl,
		now: time.Now,
	}
}

func (g *CodeGenerator) Generate(user *models.User) string {
	ts := g.now().Unix()
	return strconv.FormatInt(ts, 36) + "-" + g.mac(user, ts)
}

// Check reports whether code is a live, untampered code for user.
func (g *CodeGenerator) Check(user *models.User, code string) bool {
	tsPart, _, found := strings.Cut(code, "-")
	if !found {
		return false
	}
	ts, err := strconv.ParseInt(tsPart, 36, 64)
	if err != nil || ts <= 0 {
		return false
	}

	want := strconv.FormatInt(ts, 36) + "-" + g.mac(user, ts)
	if subtle.ConstantTimeCompare([]byte(code), []byte(want)) != 1 {
		return false
	}
	return g.now().Unix()-ts <= int64(g.ttl.Seconds())
}

func (g *CodeGenerator) mac(user *models.User, ts int64) string {
	lastLogin := ""
	if user.LastLogin != nil {
		lastLogin = user.LastLogin.UTC().Format(time.RFC3339Nano)
	}

	h, _ := blake2b.New256(g.key[:])
	fmt.Fprintf(h, "%s|%s|%s|%s|%s|%d", user.ID, user.Username, user.Email, user.Role, lastLogin, ts)
	return hex.EncodeToString(h.Sum(nil))[:32]
}
