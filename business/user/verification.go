package user

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pobyzaarif/goshortcute"
)

const verificationTTL = 5 * time.Minute

// verifier issues and checks email verification codes. A code is
// "email|unix-expiry" encrypted with AES-CBC and base64 encoded.
type verifier struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func (v verifier) issue(email string) (string, error) {
	plain := email + "|" + strconv.FormatInt(v.now().Add(v.ttl).Unix(), 10)
	sealed, err := goshortcute.AESCBCEncrypt([]byte(plain), v.key)
	if err != nil {
		return "", fmt.Errorf("failed to seal verification code: %w", err)
	}
	return goshortcute.StringtoBase64Encode(sealed), nil
}

// open returns the email a code was issued for. Any malformed, foreign or
// expired code yields ErrInvalidVerifyLink.
func (v verifier) open(code string) (email string, err error) {
	defer func() {
		if r := recover(); r != nil {
			email, err = "", ErrInvalidVerifyLink
		}
	}()

	sealed := goshortcute.StringtoBase64Decode(code)
	if sealed == "" {
		return "", ErrInvalidVerifyLink
	}

	plain, err := goshortcute.AESCBCDecrypt([]byte(sealed), v.key)
	if err != nil {
		return "", ErrInvalidVerifyLink
	}

	addr, expiry, ok := strings.Cut(plain, "|")
	if !ok || addr == "" {
		return "", ErrInvalidVerifyLink
	}
	ts, err := strconv.ParseInt(expiry, 10, 64)
	if err != nil || v.now().After(time.Unix(ts, 0)) {
		return "", ErrInvalidVerifyLink
	}

	return addr, nil
}
